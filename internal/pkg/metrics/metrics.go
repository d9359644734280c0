package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VoteDecisions 每次登记请求的判定结果
	VoteDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rollbowl_vote_decisions_total",
		Help: "Vote submissions by decision outcome.",
	}, []string{"outcome"})

	// MealsConsumed 实际扣减的餐数
	MealsConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rollbowl_meals_consumed_total",
		Help: "Meals charged against subscriptions.",
	})

	// ReportJobs 报表任务结果
	ReportJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rollbowl_report_jobs_total",
		Help: "Kitchen report jobs by final status.",
	}, []string{"status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rollbowl_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Middleware 记录 HTTP 请求耗时，route 使用注册的路由模板避免基数爆炸
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
