package service

import (
	"time"

	"github.com/qs3c/rollbowl_go_server/config"
	"github.com/qs3c/rollbowl_go_server/internal/model"
)

// CutoffGate 每晚截止时间之前才能登记次日
type CutoffGate struct {
	loc    *time.Location
	hour   int
	minute int
}

func NewCutoffGate(loc *time.Location, hour, minute int) *CutoffGate {
	if loc == nil {
		loc = time.Local
	}
	return &CutoffGate{loc: loc, hour: hour, minute: minute}
}

// NewCutoffGateFromConfig 按食堂时区和截止时间构建
func NewCutoffGateFromConfig(cfg config.CanteenConfig) (*CutoffGate, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	hour, minute, err := cfg.CutoffClock()
	if err != nil {
		return nil, err
	}
	return NewCutoffGate(loc, hour, minute), nil
}

func (g *CutoffGate) Location() *time.Location {
	return g.loc
}

// Cutoff 返回 now 所在当天的截止时刻
func (g *CutoffGate) Cutoff(now time.Time) time.Time {
	local := now.In(g.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), g.hour, g.minute, 0, 0, g.loc)
}

// IsWithinWindow now 严格早于当天截止时刻
func (g *CutoffGate) IsWithinWindow(now time.Time) bool {
	return now.Before(g.Cutoff(now))
}

// NextCutoff 下一个截止时刻，正好处于截止时刻时返回次日的
func (g *CutoffGate) NextCutoff(now time.Time) time.Time {
	cutoff := g.Cutoff(now)
	if now.Before(cutoff) {
		return cutoff
	}
	return cutoff.AddDate(0, 0, 1)
}

// TargetDate 次日零点（食堂时区）
func (g *CutoffGate) TargetDate(now time.Time) time.Time {
	local := now.In(g.loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, g.loc)
}

// Today 当天日期键
func (g *CutoffGate) Today(now time.Time) string {
	return model.DateKey(now.In(g.loc))
}

// Tomorrow 次日日期键
func (g *CutoffGate) Tomorrow(now time.Time) string {
	return model.DateKey(g.TargetDate(now))
}
