package model

import (
	"time"
)

// Profile is created and deleted together with its User.
type Profile struct {
	Id          uint      `json:"id" gorm:"primarykey"`
	UserId      string    `json:"user_id" gorm:"column:user_id;uniqueIndex;size:64;not null"`
	DisplayName string    `json:"display_name" gorm:"column:display_name"`
	Language    string    `json:"language" gorm:"column:language;size:10;default:en"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profile"
}
