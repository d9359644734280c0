package model

import (
	"time"
)

type Holiday struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Date      string    `gorm:"size:10;uniqueIndex;not null" json:"date"`
	Reason    string    `gorm:"size:200" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

func (Holiday) TableName() string {
	return "holidays"
}
