package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/rollbowl_go_server/internal/model"
)

type MenuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// Upsert 同一天只保留一份菜单，重复发布时覆盖菜品
func (r *MenuRepository) Upsert(ctx context.Context, menu *model.Menu) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"items", "updated_at"}),
	}).Create(menu).Error
}

func (r *MenuRepository) GetByDate(ctx context.Context, date string) (*model.Menu, error) {
	var menu model.Menu
	err := r.db.WithContext(ctx).Where("date = ?", date).First(&menu).Error
	if err != nil {
		return nil, err
	}
	return &menu, nil
}
