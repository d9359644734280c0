package model

import (
	"strings"
	"time"
)

// ChoiceSeparator 用于把所选菜品拼接成一个字符串保存
const ChoiceSeparator = ", "

// Vote 某用户对某一天的用餐登记，(user_id, service_date) 唯一
type Vote struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	UserID      int64     `gorm:"not null;uniqueIndex:idx_votes_user_date" json:"user_id"`
	ServiceDate string    `gorm:"size:10;not null;uniqueIndex:idx_votes_user_date;index" json:"service_date"`
	WillEat     bool      `gorm:"not null;default:false" json:"will_eat"`
	Choice      string    `gorm:"size:500" json:"choice"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// 计入配额的订阅，一旦写入不再撤销（没有退餐）
	ChargedSubscriptionID *int64 `gorm:"index" json:"charged_subscription_id,omitempty"`

	// 关联
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Vote) TableName() string {
	return "votes"
}

// Charged 是否已经扣过一餐
func (v *Vote) Charged() bool {
	return v.ChargedSubscriptionID != nil
}

// JoinChoice 拼接菜品列表
func JoinChoice(items []string) string {
	return strings.Join(items, ChoiceSeparator)
}

// Items 拆分已保存的菜品字符串
func (v *Vote) Items() []string {
	if strings.TrimSpace(v.Choice) == "" {
		return nil
	}

	parts := strings.Split(v.Choice, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}
