package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs3c/rollbowl_go_server/internal/model"
)

type HolidayRepository struct {
	db *gorm.DB
}

func NewHolidayRepository(db *gorm.DB) *HolidayRepository {
	return &HolidayRepository{db: db}
}

func (r *HolidayRepository) Create(ctx context.Context, holiday *model.Holiday) error {
	return r.db.WithContext(ctx).Create(holiday).Error
}

func (r *HolidayRepository) ExistsOn(ctx context.Context, date string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Holiday{}).Where("date = ?", date).Count(&count).Error
	return count > 0, err
}

// ListFrom 列出 from 之后（含）的节假日
func (r *HolidayRepository) ListFrom(ctx context.Context, from string) ([]*model.Holiday, error) {
	var holidays []*model.Holiday
	err := r.db.WithContext(ctx).
		Where("date >= ?", from).
		Order("date ASC").
		Find(&holidays).Error
	return holidays, err
}

func (r *HolidayRepository) DeleteByDate(ctx context.Context, date string) (bool, error) {
	result := r.db.WithContext(ctx).Where("date = ?", date).Delete(&model.Holiday{})
	return result.RowsAffected > 0, result.Error
}
