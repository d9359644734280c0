package model

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"
)

// StringArray 用于 JSON 数组字段
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (s *StringArray) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*s = []string{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return nil
	}
	return json.Unmarshal(data, s)
}

// Menu 某天供应的菜品
type Menu struct {
	ID        int64       `gorm:"primaryKey" json:"id"`
	Date      string      `gorm:"size:10;uniqueIndex;not null" json:"date"`
	Items     StringArray `gorm:"type:json" json:"items"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (Menu) TableName() string {
	return "menus"
}

// Offers 菜单是否包含某菜品（忽略大小写）
func (m *Menu) Offers(item string) bool {
	for _, it := range m.Items {
		if strings.EqualFold(strings.TrimSpace(it), strings.TrimSpace(item)) {
			return true
		}
	}
	return false
}
