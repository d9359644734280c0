package service

import (
	"context"
	"fmt"
	"time"

	"github.com/qs3c/rollbowl_go_server/internal/model"
)

// HolidayChecker 节假日查询
type HolidayChecker interface {
	ExistsOn(ctx context.Context, date string) (bool, error)
}

// CalendarService 判断某天是否供餐：休息日和节假日不供餐
type CalendarService struct {
	holidays HolidayChecker
	weekend  map[time.Weekday]bool
	loc      *time.Location
}

func NewCalendarService(holidays HolidayChecker, weekend map[time.Weekday]bool, loc *time.Location) *CalendarService {
	if loc == nil {
		loc = time.Local
	}
	return &CalendarService{
		holidays: holidays,
		weekend:  weekend,
		loc:      loc,
	}
}

// IsServiceable 每次调用都查询节假日表，后台新增节假日立即生效
func (s *CalendarService) IsServiceable(ctx context.Context, date time.Time) (bool, error) {
	date = date.In(s.loc)
	if s.weekend[date.Weekday()] {
		return false, nil
	}

	holiday, err := s.holidays.ExistsOn(ctx, model.DateKey(date))
	if err != nil {
		return false, fmt.Errorf("check holiday: %w", err)
	}
	return !holiday, nil
}
