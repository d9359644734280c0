package cron

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/qs3c/rollbowl_go_server/internal/model/dto"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/clock"
)

// ReportScheduler 在截止时刻为次日排报表
type ReportScheduler interface {
	EnqueueTomorrow(ctx context.Context, now time.Time) (*dto.ReportJobInfo, error)
}

// CutoffSource 计算下一个登记截止时刻
type CutoffSource interface {
	NextCutoff(now time.Time) time.Time
}

type Service struct {
	reports     ReportScheduler
	cutoff      CutoffSource
	clock       clock.Clock
	reportDir   string
	expireHours int
	stopChan    chan struct{}
}

// NewService reports 为 nil 时只做清理
func NewService(reports ReportScheduler, cutoff CutoffSource, clk clock.Clock, reportDir string, expireHours int) *Service {
	if clk == nil {
		clk = clock.System()
	}
	return &Service{
		reports:     reports,
		cutoff:      cutoff,
		clock:       clk,
		reportDir:   reportDir,
		expireHours: expireHours,
		stopChan:    make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	if s.reports != nil && s.cutoff != nil {
		go s.runDailyReport()
	}
	go s.runCleanup()
	log.Info().Msg("cron service started (cutoff report + report cleanup)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Info().Msg("cron service stopped")
}

// runDailyReport 每晚截止时刻生成次日厨房报表
func (s *Service) runDailyReport() {
	for {
		now := s.clock.Now()
		timer := time.NewTimer(s.cutoff.NextCutoff(now).Sub(now))

		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.enqueueTomorrow()
		}
	}
}

func (s *Service) enqueueTomorrow() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	job, err := s.reports.EnqueueTomorrow(ctx, s.clock.Now())
	if err != nil {
		log.Error().Err(err).Msg("auto enqueue kitchen report failed")
		return
	}
	if job == nil {
		log.Info().Msg("tomorrow is not a service day, no kitchen report")
		return
	}
	log.Info().Int64("job_id", job.ID).Str("service_date", job.ServiceDate).Msg("kitchen report scheduled")
}

// runCleanup 每小时清理一次
func (s *Service) runCleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			if n := s.CleanupReports(); n > 0 {
				log.Info().Int("removed", n).Msg("expired local reports cleaned")
			}
		}
	}
}

// CleanupReports 删除本地目录中过期的报表文件，返回删除数量
func (s *Service) CleanupReports() int {
	if s.reportDir == "" {
		return 0
	}

	expireHours := s.expireHours
	if expireHours <= 0 {
		expireHours = 1
	}
	expire := time.Duration(expireHours) * time.Hour

	entries, err := os.ReadDir(s.reportDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("dir", s.reportDir).Msg("read report dir failed")
		}
		return 0
	}

	now := s.clock.Now()
	cleaned := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".xlsx") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if now.Sub(info.ModTime()) > expire {
			p := filepath.Join(s.reportDir, entry.Name())
			if err := os.Remove(p); err != nil {
				log.Warn().Err(err).Str("file", p).Msg("remove expired report failed")
			} else {
				cleaned++
			}
		}
	}
	return cleaned
}

// RunNow 立即为次日排报表（手动触发）
func (s *Service) RunNow() {
	if s.reports != nil {
		s.enqueueTomorrow()
	}
}
