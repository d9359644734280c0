package service

import (
	"context"
	"strings"
	"time"

	"github.com/qs3c/rollbowl_go_server/internal/model"
	"github.com/qs3c/rollbowl_go_server/internal/model/dto"
	"github.com/qs3c/rollbowl_go_server/internal/repository"
)

// HolidayService 维护不供餐的节假日
type HolidayService struct {
	holidayRepo *repository.HolidayRepository
	gate        *CutoffGate
}

func NewHolidayService(holidayRepo *repository.HolidayRepository, gate *CutoffGate) *HolidayService {
	return &HolidayService{holidayRepo: holidayRepo, gate: gate}
}

func (s *HolidayService) Create(ctx context.Context, req *dto.CreateHolidayRequest) (*dto.HolidayInfo, error) {
	date, err := model.ParseDate(req.Date, s.gate.Location())
	if err != nil {
		return nil, ErrInvalidDate
	}
	key := model.DateKey(date)

	exists, err := s.holidayRepo.ExistsOn(ctx, key)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrHolidayExists
	}

	holiday := &model.Holiday{Date: key, Reason: strings.TrimSpace(req.Reason)}
	if err := s.holidayRepo.Create(ctx, holiday); err != nil {
		return nil, err
	}
	return &dto.HolidayInfo{Date: holiday.Date, Reason: holiday.Reason}, nil
}

// Upcoming 今天及以后的节假日
func (s *HolidayService) Upcoming(ctx context.Context, now time.Time) ([]*dto.HolidayInfo, error) {
	holidays, err := s.holidayRepo.ListFrom(ctx, s.gate.Today(now))
	if err != nil {
		return nil, err
	}

	items := make([]*dto.HolidayInfo, 0, len(holidays))
	for _, h := range holidays {
		items = append(items, &dto.HolidayInfo{Date: h.Date, Reason: h.Reason})
	}
	return items, nil
}

func (s *HolidayService) Delete(ctx context.Context, date string) error {
	if _, err := model.ParseDate(date, s.gate.Location()); err != nil {
		return ErrInvalidDate
	}

	deleted, err := s.holidayRepo.DeleteByDate(ctx, date)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrHolidayNotFound
	}
	return nil
}
