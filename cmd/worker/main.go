package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/qs3c/rollbowl_go_server/config"
	"github.com/qs3c/rollbowl_go_server/internal/database"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/logger"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/oss"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/pubsub"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/queue"
	"github.com/qs3c/rollbowl_go_server/internal/repository"
	"github.com/qs3c/rollbowl_go_server/internal/service"
	"github.com/qs3c/rollbowl_go_server/internal/worker"
)

func main() {
	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Log)

	// 初始化数据库
	db, err := database.Open(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	log.Info().Msg("database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}
	log.Info().Msg("redis connected")

	gate, err := service.NewCutoffGateFromConfig(cfg.Canteen)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid canteen config")
	}

	// 初始化 OSS（可选）
	var ossClient *oss.Client
	if oss.Enabled(&cfg.OSS) {
		ossClient, err = oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Warn().Err(err).Msg("failed to init OSS client, reports will be stored locally")
			ossClient = nil
		} else {
			log.Info().Msg("OSS client initialized")
		}
	}

	// 初始化 Queue 和 Pub/Sub
	reportQueue := queue.NewQueue(rdb, cfg.Queue.ReportQueue)
	publisher := pubsub.NewPublisher(rdb)

	jobRepo := repository.NewReportJobRepository(db)
	summary := service.NewSummaryService(repository.NewVoteRepository(db), gate)
	processor := worker.NewProcessor(jobRepo, summary, worker.NewStorage(ossClient, cfg.Report.TempDir), publisher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	// OSS 恢复后把之前落本地的报表补传上去
	if ossClient != nil {
		go worker.NewReuploader(jobRepo, ossClient, cfg.Report.TempDir).Start(ctx)
	}

	maxWorkers := cfg.Queue.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	log.Info().Int("max_workers", maxWorkers).Str("queue", cfg.Queue.ReportQueue).Msg("worker started")

	var wg sync.WaitGroup
	for i := 0; i < maxWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			runWorker(ctx, workerID, reportQueue, processor)
		}(i)
	}

	wg.Wait()
	log.Info().Msg("worker shutdown complete")
}

func runWorker(ctx context.Context, workerID int, q *queue.Queue, processor *worker.Processor) {
	wlog := log.With().Int("worker", workerID).Logger()
	for {
		select {
		case <-ctx.Done():
			wlog.Info().Msg("worker shutting down")
			return
		default:
		}

		msg, err := q.Pop(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, queue.ErrMalformedMessage) {
				wlog.Warn().Str("dead_letter", q.DeadLetterKey()).Msg("malformed report job moved to dead letter")
				continue
			}
			wlog.Error().Err(err).Msg("failed to pop report job")
			continue
		}
		if msg == nil {
			continue // 超时，继续等待
		}

		wlog.Info().Int64("job_id", msg.JobID).Str("service_date", msg.ServiceDate).Msg("processing report job")
		if err := processor.Process(ctx, msg); err != nil {
			wlog.Error().Err(err).Int64("job_id", msg.JobID).Msg("report job failed")
		}
	}
}
