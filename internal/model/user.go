package model

import (
	"time"
)

// User 食堂顾客，Token 是访问凭证（链接里携带），不是会话
type User struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Phone     string    `gorm:"size:20;uniqueIndex;not null" json:"phone"`
	Token     string    `gorm:"size:64;uniqueIndex;not null" json:"token"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
