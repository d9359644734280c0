package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/qs3c/rollbowl_go_server/config"
	"github.com/qs3c/rollbowl_go_server/internal/api"
	"github.com/qs3c/rollbowl_go_server/internal/api/handler"
	"github.com/qs3c/rollbowl_go_server/internal/database"
	"github.com/qs3c/rollbowl_go_server/internal/live"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/clock"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/cron"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/logger"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/oss"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/pubsub"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/queue"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/ws"
	"github.com/qs3c/rollbowl_go_server/internal/repository"
	"github.com/qs3c/rollbowl_go_server/internal/service"
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
	log.Info().Str("driver", cfg.Database.Driver).Msg("database connected")

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
	weekend, err := cfg.Canteen.Weekend()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid canteen config")
	}
	clk := clock.System()

	// 初始化 Queue 和 Pub/Sub
	reportQueue := queue.NewQueue(rdb, cfg.Queue.ReportQueue)
	publisher := pubsub.NewPublisher(rdb)

	// 初始化 OSS（可选），只用于签发报表下载地址
	var signer handler.URLSigner
	if oss.Enabled(&cfg.OSS) {
		ossClient, err := oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Warn().Err(err).Msg("failed to init OSS client, report downloads use plain URLs")
		} else {
			signer = ossClient
		}
	}

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	holidayRepo := repository.NewHolidayRepository(db)
	jobRepo := repository.NewReportJobRepository(db)

	txRunner := repository.NewTxRunner(db)

	// 初始化 Service
	calendar := service.NewCalendarService(holidayRepo, weekend, gate.Location())
	quota := service.NewQuotaService(voteRepo)
	commitment := service.NewCommitmentService(userRepo, subRepo, menuRepo, txRunner,
		calendar, gate, service.NewPlanValidator(), quota)
	commitment.SetEvents(publisher)
	summary := service.NewSummaryService(voteRepo, gate)
	customers := service.NewCustomerService(userRepo, subRepo, voteRepo, menuRepo, quota, gate, calendar)
	subscriptions := service.NewSubscriptionService(subRepo, userRepo, txRunner, quota, gate, cfg.Canteen)
	menus := service.NewMenuService(menuRepo, gate)
	holidays := service.NewHolidayService(holidayRepo, gate)
	reports := service.NewReportService(jobRepo, reportQueue, gate, calendar)
	admin := service.NewAdminService(cfg.Admin, cfg.JWT)

	// 厨房看板：事件经 Redis 转发到 websocket，多实例部署时每个实例都能收到
	wsHub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go live.NewBoard(wsHub, summary).Run(ctx, pubsub.NewSubscriber(rdb))

	// 定时任务
	var scheduler cron.ReportScheduler
	if cfg.Report.AutoEnqueue {
		scheduler = reports
	}
	cronService := cron.NewService(scheduler, gate, clk, cfg.Report.TempDir, cfg.Report.ExpireHours)
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Handler 和 Router
	router := api.NewRouter(api.Handlers{
		Customer:  handler.NewCustomerHandler(customers, clk),
		Vote:      handler.NewVoteHandler(commitment, clk),
		Menu:      handler.NewMenuHandler(menus, clk),
		Admin:     handler.NewAdminHandler(admin, customers, subscriptions, clk),
		Holiday:   handler.NewHolidayHandler(holidays, clk),
		Kitchen:   handler.NewKitchenHandler(summary, gate, clk),
		Report:    handler.NewReportHandler(reports, cfg.Report.TempDir, signer, clk),
		WebSocket: handler.NewWebSocketHandler(wsHub, admin),
	}, admin, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Str("cutoff", cfg.Canteen.Cutoff).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutdown signal received")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("server stopped")
}
