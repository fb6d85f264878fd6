package model

import (
	"time"
)

// RevokedToken records a logged out token id until the token would have expired anyway.
type RevokedToken struct {
	TokenId   string    `json:"token_id" gorm:"column:token_id;primaryKey;size:64"`
	UserId    string    `json:"user_id" gorm:"column:user_id;size:64"`
	ExpiresAt time.Time `json:"expires_at" gorm:"column:expires_at;index"`
}

func (RevokedToken) TableName() string {
	return "revoked_token"
}
