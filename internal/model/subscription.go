package model

import (
	"time"
)

// 套餐档位，空字符串表示未启用分档
const (
	PlanNone    = ""
	PlanBasic   = "basic"
	PlanPremium = "premium"
)

type Subscription struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	UserID     int64     `gorm:"not null;index" json:"user_id"`
	StartDate  string    `gorm:"size:10;not null" json:"start_date"`
	EndDate    string    `gorm:"size:10;not null;index" json:"end_date"` // StartDate + 25 天，创建后不再变更
	Plan       string    `gorm:"size:20" json:"plan,omitempty"`
	TotalMeals int       `gorm:"not null" json:"total_meals"`
	CreatedAt  time.Time `json:"created_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// ActiveOn 判断订阅在某天（YYYY-MM-DD）是否有效
func (s *Subscription) ActiveOn(date string) bool {
	return s.EndDate >= date
}
