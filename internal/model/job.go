package model

import (
	"time"
)

const (
	ReportStatusQueued     = "queued"
	ReportStatusProcessing = "processing"
	ReportStatusCompleted  = "completed"
	ReportStatusFailed     = "failed"
)

// ReportJob 厨房报表生成任务
type ReportJob struct {
	ID             int64      `gorm:"primaryKey" json:"id"`
	ServiceDate    string     `gorm:"size:10;not null;index" json:"service_date"`
	Status         string     `gorm:"size:20;default:queued;index" json:"status"`
	RequestedBy    string     `gorm:"size:50" json:"requested_by"` // admin, cron
	FileURL        string     `gorm:"size:500" json:"file_url,omitempty"`
	ErrorMessage   string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	ElapsedSeconds int        `json:"elapsed_seconds,omitempty"`
}

func (ReportJob) TableName() string {
	return "report_jobs"
}
