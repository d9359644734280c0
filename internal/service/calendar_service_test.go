package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fixtures "github.com/qs3c/rollbowl_go_server/internal/testutil"
)

type failingHolidays struct{}

func (failingHolidays) ExistsOn(context.Context, string) (bool, error) {
	return false, errors.New("db down")
}

func TestCalendarService_IsServiceable(t *testing.T) {
	e := newTestEnv(t)
	fixtures.TestHoliday(t, e.db, day("2026-10-21"), "Festival")
	ctx := context.Background()

	tests := []struct {
		date string
		want bool
	}{
		{"2026-10-19", true},  // 周一
		{"2026-10-20", true},  // 周二
		{"2026-10-21", false}, // 节假日
		{"2026-10-23", true},  // 周五
		{"2026-10-24", false}, // 周六
		{"2026-10-25", false}, // 周日
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			ok, err := e.calendar.IsServiceable(ctx, day(tt.date))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestCalendarService_HolidayTakesEffectImmediately(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	ok, err := e.calendar.IsServiceable(ctx, day("2026-10-22"))
	require.NoError(t, err)
	assert.True(t, ok)

	fixtures.TestHoliday(t, e.db, day("2026-10-22"), "Closed")

	ok, err = e.calendar.IsServiceable(ctx, day("2026-10-22"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCalendarService_CustomWeekend(t *testing.T) {
	e := newTestEnv(t)
	cal := NewCalendarService(e.holidayRepo, map[time.Weekday]bool{time.Friday: true}, ist)

	ok, err := cal.IsServiceable(context.Background(), day("2026-10-23"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = cal.IsServiceable(context.Background(), day("2026-10-24"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCalendarService_ConvertsToCanteenZone(t *testing.T) {
	e := newTestEnv(t)

	// 周五 20:00 UTC 已是印度时间周六凌晨
	ok, err := e.calendar.IsServiceable(context.Background(), time.Date(2026, 10, 23, 20, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCalendarService_StorageError(t *testing.T) {
	cal := NewCalendarService(failingHolidays{}, nil, ist)

	_, err := cal.IsServiceable(context.Background(), day("2026-10-20"))
	assert.Error(t, err)
}
