package db

import "gorm.io/gorm"

// User 定义了用户模型。Name 同时作为登录名使用。
type User struct {
	gorm.Model
	Name     string `gorm:"unique;not null"`
	Email    string `gorm:"unique;not null"`
	Password string `gorm:"not null"`
}
