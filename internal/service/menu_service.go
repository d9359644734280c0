package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/rollbowl_go_server/internal/model"
	"github.com/qs3c/rollbowl_go_server/internal/model/dto"
	"github.com/qs3c/rollbowl_go_server/internal/repository"
)

var ErrMenuNotFound = errors.New("当天没有发布菜单")

type MenuService struct {
	menuRepo *repository.MenuRepository
	gate     *CutoffGate
}

func NewMenuService(menuRepo *repository.MenuRepository, gate *CutoffGate) *MenuService {
	return &MenuService{menuRepo: menuRepo, gate: gate}
}

// Upsert 发布或覆盖某天菜单
func (s *MenuService) Upsert(ctx context.Context, req *dto.UpsertMenuRequest) (*dto.MenuInfo, error) {
	date, err := model.ParseDate(req.Date, s.gate.Location())
	if err != nil {
		return nil, ErrInvalidDate
	}

	items := make([]string, 0, len(req.Items))
	for _, it := range req.Items {
		if it = strings.TrimSpace(it); it == "" {
			continue
		}
		if err := checkItemLabel(it); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		return nil, invalidSelection("menu needs at least one item")
	}

	menu := &model.Menu{Date: model.DateKey(date), Items: items}
	if err := s.menuRepo.Upsert(ctx, menu); err != nil {
		return nil, err
	}
	return &dto.MenuInfo{Date: menu.Date, Items: items}, nil
}

// GetByDate 某天菜单
func (s *MenuService) GetByDate(ctx context.Context, date string) (*dto.MenuInfo, error) {
	if _, err := model.ParseDate(date, s.gate.Location()); err != nil {
		return nil, ErrInvalidDate
	}

	menu, err := s.menuRepo.GetByDate(ctx, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMenuNotFound
		}
		return nil, err
	}
	return &dto.MenuInfo{Date: menu.Date, Items: menu.Items}, nil
}

// Today 今日菜单
func (s *MenuService) Today(ctx context.Context, now time.Time) (*dto.MenuInfo, error) {
	return s.GetByDate(ctx, s.gate.Today(now))
}
