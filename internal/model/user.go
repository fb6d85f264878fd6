package model

import (
	"time"
)

type User struct {
	Id          uint      `json:"id" gorm:"primarykey"`
	UserId      string    `json:"user_id" gorm:"column:user_id;uniqueIndex;size:64;not null"`
	Username    string    `json:"username" gorm:"column:username;uniqueIndex;size:64;not null"`
	Email       string    `json:"email" gorm:"column:email;size:255;not null"`
	Password    string    `json:"-" gorm:"column:password;not null"`
	IsSuperuser bool      `json:"is_superuser" gorm:"column:is_superuser;not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
