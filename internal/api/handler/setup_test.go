package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/rollbowl_go_server/config"
	"github.com/qs3c/rollbowl_go_server/internal/api/middleware"
	"github.com/qs3c/rollbowl_go_server/internal/model/dto"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/clock"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/queue"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/response"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/ws"
	"github.com/qs3c/rollbowl_go_server/internal/repository"
	"github.com/qs3c/rollbowl_go_server/internal/service"
	"github.com/qs3c/rollbowl_go_server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	testAdminKey  = "kitchen-key"
	testJWTSecret = "test-secret-key-for-handlers"
)

// 2026-10-19 是周一
var ist = time.FixedZone("IST", 5*3600+30*60)

func at(date string, hour, minute int) time.Time {
	d, err := time.ParseInLocation("2006-01-02", date, ist)
	if err != nil {
		panic(err)
	}
	return d.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

type recordingQueue struct {
	mu   sync.Mutex
	msgs []*queue.ReportMessage
}

func (q *recordingQueue) Push(_ context.Context, msg *queue.ReportMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.msgs = append(q.msgs, msg)
	return nil
}

// testServer 用真实 service 和 sqlite 内存库组装的接口
type testServer struct {
	DB        *gorm.DB
	Clock     *clock.Fixed
	Admin     *service.AdminService
	Queue     *recordingQueue
	Reports   *service.ReportService
	ReportDir string
	Engine    *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	userRepo := repository.NewUserRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	holidayRepo := repository.NewHolidayRepository(db)
	jobRepo := repository.NewReportJobRepository(db)

	gate := service.NewCutoffGate(ist, 22, 30)
	calendar := service.NewCalendarService(holidayRepo, map[time.Weekday]bool{time.Saturday: true, time.Sunday: true}, ist)
	quota := service.NewQuotaService(voteRepo)
	engine := service.NewCommitmentService(userRepo, subRepo, menuRepo, repository.NewTxRunner(db),
		calendar, gate, service.NewPlanValidator(), quota)
	summary := service.NewSummaryService(voteRepo, gate)
	customers := service.NewCustomerService(userRepo, subRepo, voteRepo, menuRepo, quota, gate, calendar)
	subs := service.NewSubscriptionService(subRepo, userRepo, repository.NewTxRunner(db), quota, gate, config.CanteenConfig{
		ValidityDays:      25,
		DefaultTotalMeals: 20,
	})
	q := &recordingQueue{}
	reports := service.NewReportService(jobRepo, q, gate, calendar)
	admin := service.NewAdminService(
		config.AdminConfig{Key: testAdminKey},
		config.JWTConfig{Secret: testJWTSecret, ExpireHours: 1},
	)

	s := &testServer{
		DB:        db,
		Clock:     clock.NewFixed(at("2026-10-20", 18, 0)),
		Admin:     admin,
		Queue:     q,
		Reports:   reports,
		ReportDir: t.TempDir(),
	}

	customerHandler := NewCustomerHandler(customers, s.Clock)
	voteHandler := NewVoteHandler(engine, s.Clock)
	menuHandler := NewMenuHandler(service.NewMenuService(menuRepo, gate), s.Clock)
	adminHandler := NewAdminHandler(admin, customers, subs, s.Clock)
	holidayHandler := NewHolidayHandler(service.NewHolidayService(holidayRepo, gate), s.Clock)
	kitchenHandler := NewKitchenHandler(summary, gate, s.Clock)
	reportHandler := NewReportHandler(reports, s.ReportDir, nil, s.Clock)
	wsHandler := NewWebSocketHandler(ws.NewHub(), admin)

	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/customer/login", customerHandler.Login)
	api.GET("/u/:token", customerHandler.Dashboard)
	api.POST("/vote", voteHandler.Submit)
	api.GET("/menu/today", menuHandler.Today)
	api.GET("/menu/:date", menuHandler.Get)
	api.POST("/admin/login", adminHandler.Login)
	api.GET("/admin/ws", wsHandler.Handle)

	adm := api.Group("/admin")
	adm.Use(middleware.AdminAuth(admin))
	adm.POST("/users", adminHandler.CreateUser)
	adm.GET("/users", adminHandler.ListUsers)
	adm.GET("/users/:id/subscriptions", adminHandler.ListSubscriptions)
	adm.POST("/subscriptions", adminHandler.CreateSubscription)
	adm.PUT("/menu", menuHandler.Upsert)
	adm.POST("/holidays", holidayHandler.Create)
	adm.GET("/holidays", holidayHandler.List)
	adm.DELETE("/holidays/:date", holidayHandler.Delete)
	adm.GET("/tomorrow-count", kitchenHandler.TomorrowCount)
	adm.GET("/tomorrow-users", kitchenHandler.TomorrowUsers)
	adm.GET("/kitchen-summary", kitchenHandler.Summary)
	adm.POST("/reports", reportHandler.Create)
	adm.GET("/reports/:id", reportHandler.Get)
	adm.GET("/reports/:id/download", reportHandler.Download)

	s.Engine = r
	return s
}

// adminToken 用管理员密钥登录拿到的 token
func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	resp, err := s.Admin.Login(&dto.AdminLoginRequest{AdminKey: testAdminKey})
	require.NoError(t, err)
	return resp.Token
}

func (s *testServer) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	return performRequestWithToken(s.Engine, method, path, body, token)
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	return performRequestWithToken(r, method, path, body, "")
}

func performRequestWithToken(r http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

func dataMap(t *testing.T, resp response.Response) map[string]interface{} {
	t.Helper()
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data should be an object, got %T", resp.Data)
	return data
}
