package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs3c/rollbowl_go_server/internal/model"
)

type ReportJobRepository struct {
	db *gorm.DB
}

func NewReportJobRepository(db *gorm.DB) *ReportJobRepository {
	return &ReportJobRepository{db: db}
}

func (r *ReportJobRepository) Create(ctx context.Context, job *model.ReportJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *ReportJobRepository) GetByID(ctx context.Context, id int64) (*model.ReportJob, error) {
	var job model.ReportJob
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *ReportJobRepository) Update(ctx context.Context, job *model.ReportJob) error {
	return r.db.WithContext(ctx).Save(job).Error
}

func (r *ReportJobRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).Model(&model.ReportJob{}).Where("id = ?", id).Update("status", status).Error
}

// GetPendingJobs 获取待处理的任务
func (r *ReportJobRepository) GetPendingJobs(ctx context.Context, limit int) ([]*model.ReportJob, error) {
	var jobs []*model.ReportJob
	err := r.db.WithContext(ctx).Where("status = ?", model.ReportStatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

// ExistsActiveForDate 某天是否已有排队中或处理中的任务
func (r *ReportJobRepository) ExistsActiveForDate(ctx context.Context, date string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ReportJob{}).
		Where("service_date = ? AND status IN ?", date, []string{model.ReportStatusQueued, model.ReportStatusProcessing}).
		Count(&count).Error
	return count > 0, err
}

// ListLocalReports 已完成但仍存放在本地目录的报表
func (r *ReportJobRepository) ListLocalReports(ctx context.Context) ([]*model.ReportJob, error) {
	var jobs []*model.ReportJob
	err := r.db.WithContext(ctx).
		Where("status = ? AND file_url LIKE ?", model.ReportStatusCompleted, "local://%").
		Order("id ASC").
		Find(&jobs).Error
	return jobs, err
}
