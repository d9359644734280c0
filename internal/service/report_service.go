package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/qs3c/rollbowl_go_server/internal/model"
	"github.com/qs3c/rollbowl_go_server/internal/model/dto"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/queue"
	"github.com/qs3c/rollbowl_go_server/internal/repository"
)

// ReportQueue 报表任务队列
type ReportQueue interface {
	Push(ctx context.Context, msg *queue.ReportMessage) error
}

// ReportService 厨房报表任务的创建与查询，生成由 worker 完成
type ReportService struct {
	jobRepo  *repository.ReportJobRepository
	queue    ReportQueue
	gate     *CutoffGate
	calendar *CalendarService
}

func NewReportService(jobRepo *repository.ReportJobRepository, q ReportQueue, gate *CutoffGate, calendar *CalendarService) *ReportService {
	return &ReportService{
		jobRepo:  jobRepo,
		queue:    q,
		gate:     gate,
		calendar: calendar,
	}
}

// Enqueue 为某天创建报表任务，date 为空时取明天；同一天已有未完成任务时拒绝
func (s *ReportService) Enqueue(ctx context.Context, date, requestedBy string, now time.Time) (*dto.ReportJobInfo, error) {
	if date == "" {
		date = s.gate.Tomorrow(now)
	} else if _, err := model.ParseDate(date, s.gate.Location()); err != nil {
		return nil, ErrInvalidDate
	}

	active, err := s.jobRepo.ExistsActiveForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrReportInProgress
	}

	job := &model.ReportJob{
		ServiceDate: date,
		Status:      model.ReportStatusQueued,
		RequestedBy: requestedBy,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create report job: %w", err)
	}

	msg := &queue.ReportMessage{JobID: job.ID, ServiceDate: date, RequestedBy: requestedBy}
	if err := s.queue.Push(ctx, msg); err != nil {
		job.Status = model.ReportStatusFailed
		job.ErrorMessage = "enqueue failed: " + err.Error()
		if uerr := s.jobRepo.Update(ctx, job); uerr != nil {
			log.Error().Err(uerr).Int64("job_id", job.ID).Msg("mark report job failed")
		}
		return nil, fmt.Errorf("push report job: %w", err)
	}

	log.Info().Int64("job_id", job.ID).Str("service_date", date).Str("requested_by", requestedBy).Msg("report job queued")
	return buildReportJobInfo(job), nil
}

// EnqueueTomorrow 截止时刻自动生成次日报表，次日不供餐时跳过并返回 nil
func (s *ReportService) EnqueueTomorrow(ctx context.Context, now time.Time) (*dto.ReportJobInfo, error) {
	ok, err := s.calendar.IsServiceable(ctx, s.gate.TargetDate(now))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return s.Enqueue(ctx, s.gate.Tomorrow(now), "cron", now)
}

func (s *ReportService) Get(ctx context.Context, id int64) (*dto.ReportJobInfo, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return buildReportJobInfo(job), nil
}

func buildReportJobInfo(job *model.ReportJob) *dto.ReportJobInfo {
	info := &dto.ReportJobInfo{
		ID:           job.ID,
		ServiceDate:  job.ServiceDate,
		Status:       job.Status,
		RequestedBy:  job.RequestedBy,
		FileURL:      job.FileURL,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt.Format(time.RFC3339),
	}
	if job.CompletedAt != nil {
		completed := job.CompletedAt.Format(time.RFC3339)
		info.CompletedAt = &completed
		elapsed := job.ElapsedSeconds
		info.ElapsedSeconds = &elapsed
	}
	return info
}
