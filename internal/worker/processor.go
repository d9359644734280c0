package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/qs3c/rollbowl_go_server/internal/model"
	"github.com/qs3c/rollbowl_go_server/internal/model/dto"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/metrics"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/pubsub"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/queue"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/report"
	"github.com/qs3c/rollbowl_go_server/internal/repository"
)

// ReportSource 报表需要的汇总和用餐名单
type ReportSource interface {
	KitchenSummary(ctx context.Context, date string) (*dto.KitchenSummary, error)
	Diners(ctx context.Context, date string) ([]dto.DinerInfo, error)
}

// ProgressPublisher 推送报表进度
type ProgressPublisher interface {
	PublishReportProgress(ctx context.Context, evt *pubsub.Event) error
}

// Processor 厨房报表任务处理器
type Processor struct {
	jobRepo   *repository.ReportJobRepository
	source    ReportSource
	storage   ReportStorage
	publisher ProgressPublisher
	now       func() time.Time
}

// NewProcessor publisher 可为 nil
func NewProcessor(
	jobRepo *repository.ReportJobRepository,
	source ReportSource,
	storage ReportStorage,
	publisher ProgressPublisher,
) *Processor {
	return &Processor{
		jobRepo:   jobRepo,
		source:    source,
		storage:   storage,
		publisher: publisher,
		now:       time.Now,
	}
}

// Process 处理一个报表任务
func (p *Processor) Process(ctx context.Context, msg *queue.ReportMessage) error {
	job, err := p.jobRepo.GetByID(ctx, msg.JobID)
	if err != nil {
		return fmt.Errorf("failed to get report job: %w", err)
	}
	logger := log.With().Int64("job_id", job.ID).Str("service_date", job.ServiceDate).Logger()

	// 更新状态为处理中
	startedAt := p.now()
	job.Status = model.ReportStatusProcessing
	job.StartedAt = &startedAt
	if err := p.jobRepo.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to mark job processing: %w", err)
	}

	publishProgress := func(step, status, errMsg string) {
		if p.publisher == nil {
			return
		}
		if err := p.publisher.PublishReportProgress(ctx, &pubsub.Event{
			ServiceDate: job.ServiceDate,
			JobID:       job.ID,
			Status:      status,
			Step:        step,
			Error:       errMsg,
		}); err != nil {
			logger.Warn().Err(err).Str("step", step).Msg("publish report progress failed")
		}
	}

	finish := func(status string) {
		completedAt := p.now()
		job.Status = status
		job.CompletedAt = &completedAt
		job.ElapsedSeconds = int(completedAt.Sub(startedAt).Seconds())
		if err := p.jobRepo.Update(ctx, job); err != nil {
			logger.Error().Err(err).Msg("update report job failed")
		}
		metrics.ReportJobs.WithLabelValues(status).Inc()
	}

	handleError := func(step string, err error) error {
		job.ErrorMessage = err.Error()
		finish(model.ReportStatusFailed)
		publishProgress(step, model.ReportStatusFailed, job.ErrorMessage)
		logger.Error().Err(err).Str("step", step).Msg("kitchen report failed")
		return err
	}

	// Step 1: 汇总
	publishProgress(pubsub.StepSummarizing, model.ReportStatusProcessing, "")
	summary, err := p.source.KitchenSummary(ctx, job.ServiceDate)
	if err != nil {
		return handleError(pubsub.StepSummarizing, fmt.Errorf("summarize failed: %w", err))
	}
	diners, err := p.source.Diners(ctx, job.ServiceDate)
	if err != nil {
		return handleError(pubsub.StepSummarizing, fmt.Errorf("list diners failed: %w", err))
	}

	// Step 2: 生成表格
	publishProgress(pubsub.StepRendering, model.ReportStatusProcessing, "")
	data, err := report.BuildKitchenReport(summary, diners)
	if err != nil {
		return handleError(pubsub.StepRendering, fmt.Errorf("render failed: %w", err))
	}

	// Step 3: 保存
	publishProgress(pubsub.StepUploading, model.ReportStatusProcessing, "")
	fileURL, err := p.storage.Save(ctx, job.ServiceDate, data)
	if err != nil {
		return handleError(pubsub.StepUploading, fmt.Errorf("save failed: %w", err))
	}

	job.FileURL = fileURL
	job.ErrorMessage = ""
	finish(model.ReportStatusCompleted)
	publishProgress(pubsub.StepDone, model.ReportStatusCompleted, "")

	logger.Info().
		Int("diners", summary.Total).
		Int("items", len(summary.Items)).
		Int("elapsed_seconds", job.ElapsedSeconds).
		Msg("kitchen report completed")
	return nil
}
