package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qs3c/rollbowl_go_server/config"
	"github.com/qs3c/rollbowl_go_server/internal/api/handler"
	"github.com/qs3c/rollbowl_go_server/internal/api/middleware"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/metrics"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/response"
)

// Handlers 路由需要的全部 handler
type Handlers struct {
	Customer  *handler.CustomerHandler
	Vote      *handler.VoteHandler
	Menu      *handler.MenuHandler
	Admin     *handler.AdminHandler
	Holiday   *handler.HolidayHandler
	Kitchen   *handler.KitchenHandler
	Report    *handler.ReportHandler
	WebSocket *handler.WebSocketHandler
}

type Router struct {
	handlers Handlers
	verifier middleware.TokenVerifier
	cfg      *config.Config
}

func NewRouter(handlers Handlers, verifier middleware.TokenVerifier, cfg *config.Config) *Router {
	return &Router{
		handlers: handlers,
		verifier: verifier,
		cfg:      cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger())
	engine.Use(middleware.CORS(r.cfg.CORS))

	engine.GET("/health", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok"})
	})
	if r.cfg.Metrics.Enabled {
		engine.Use(metrics.Middleware())
		engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	h := r.handlers
	api := engine.Group("/api/v1")
	{
		// 顾客，凭链接里的 token 识别
		api.POST("/customer/login", h.Customer.Login)
		api.GET("/u/:token", h.Customer.Dashboard)
		api.POST("/vote", h.Vote.Submit)

		menu := api.Group("/menu")
		{
			menu.GET("/today", h.Menu.Today)
			menu.GET("/:date", h.Menu.Get)
		}

		api.POST("/admin/login", h.Admin.Login)
		// 浏览器 websocket 无法带 header，token 在 handler 内校验
		api.GET("/admin/ws", h.WebSocket.Handle)

		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuth(r.verifier))
		{
			admin.POST("/users", h.Admin.CreateUser)
			admin.GET("/users", h.Admin.ListUsers)
			admin.GET("/users/:id/subscriptions", h.Admin.ListSubscriptions)
			admin.POST("/subscriptions", h.Admin.CreateSubscription)

			admin.PUT("/menu", h.Menu.Upsert)

			admin.POST("/holidays", h.Holiday.Create)
			admin.GET("/holidays", h.Holiday.List)
			admin.DELETE("/holidays/:date", h.Holiday.Delete)

			admin.GET("/tomorrow-count", h.Kitchen.TomorrowCount)
			admin.GET("/tomorrow-users", h.Kitchen.TomorrowUsers)
			admin.GET("/kitchen-summary", h.Kitchen.Summary)

			admin.POST("/reports", h.Report.Create)
			admin.GET("/reports/:id", h.Report.Get)
			admin.GET("/reports/:id/download", h.Report.Download)
		}
	}

	return engine
}
