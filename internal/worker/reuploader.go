package worker

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/qs3c/rollbowl_go_server/internal/model"
	"github.com/qs3c/rollbowl_go_server/internal/repository"
)

const reuploadInterval = 5 * time.Minute

// ReportUploader 把报表重新上传到 OSS
type ReportUploader interface {
	UploadReportWithRetry(serviceDate string, data []byte, maxRetries int) (string, error)
}

// Reuploader 后台把本地报表迁移到 OSS
type Reuploader struct {
	jobRepo  *repository.ReportJobRepository
	uploader ReportUploader
	dir      string
}

func NewReuploader(jobRepo *repository.ReportJobRepository, uploader ReportUploader, dir string) *Reuploader {
	return &Reuploader{
		jobRepo:  jobRepo,
		uploader: uploader,
		dir:      dir,
	}
}

// Start 启动后台重传循环
func (r *Reuploader) Start(ctx context.Context) {
	// 启动后先执行一次
	r.Run(ctx)

	ticker := time.NewTicker(reuploadInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("reuploader stopped")
			return
		case <-ticker.C:
			r.Run(ctx)
		}
	}
}

// Run 执行一轮迁移，返回成功数量
func (r *Reuploader) Run(ctx context.Context) int {
	jobs, err := r.jobRepo.ListLocalReports(ctx)
	if err != nil {
		log.Error().Err(err).Msg("reuploader: query local reports failed")
		return 0
	}
	if len(jobs) == 0 {
		return 0
	}

	log.Info().Int("count", len(jobs)).Msg("reuploader: local reports found")

	moved := 0
	for _, job := range jobs {
		if r.reupload(ctx, job) {
			moved++
		}
	}
	return moved
}

func (r *Reuploader) reupload(ctx context.Context, job *model.ReportJob) bool {
	logger := log.With().Int64("job_id", job.ID).Logger()

	localPath, ok := LocalPath(r.dir, job.FileURL)
	if !ok {
		return false
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		logger.Warn().Err(err).Str("file", localPath).Msg("reuploader: read local report failed")
		return false
	}

	url, err := r.uploader.UploadReportWithRetry(job.ServiceDate, data, 3)
	if err != nil {
		logger.Warn().Err(err).Msg("reuploader: upload failed")
		return false
	}

	job.FileURL = url
	if err := r.jobRepo.Update(ctx, job); err != nil {
		logger.Error().Err(err).Msg("reuploader: update job failed")
		return false
	}

	if err := os.Remove(localPath); err != nil {
		logger.Warn().Err(err).Str("file", localPath).Msg("reuploader: remove local report failed")
	}
	logger.Info().Str("url", url).Msg("reuploader: report moved to OSS")
	return true
}
