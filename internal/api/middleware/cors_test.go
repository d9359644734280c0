package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/qs3c/rollbowl_go_server/config"
)

// 顾客登记页和后厨看板部署在不同域名
var canteenCORS = config.CORSConfig{
	AllowedOrigins: []string{"https://order.rollbowl.in", "https://kitchen.rollbowl.in"},
	AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
	AllowedHeaders: []string{"Authorization", "Content-Type"},
}

func corsRouter(cfg config.CORSConfig) *gin.Engine {
	router := gin.New()
	router.Use(CORS(cfg))
	router.POST("/api/v1/vote", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 0})
	})
	router.GET("/api/v1/admin/kitchen-summary", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 0})
	})
	return router
}

func TestCORS_Origins(t *testing.T) {
	router := corsRouter(canteenCORS)

	tests := []struct {
		name       string
		method     string
		path       string
		origin     string
		wantOrigin string
	}{
		{"order page votes", "POST", "/api/v1/vote", "https://order.rollbowl.in", "https://order.rollbowl.in"},
		{"kitchen board reads summary", "GET", "/api/v1/admin/kitchen-summary", "https://kitchen.rollbowl.in", "https://kitchen.rollbowl.in"},
		{"unknown site", "POST", "/api/v1/vote", "https://rollbowl.example.net", ""},
		{"same origin request", "GET", "/api/v1/admin/kitchen-summary", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "GET, POST, PUT, DELETE", w.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, "Authorization, Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
			assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
			assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
		})
	}
}

func TestCORS_PreflightForAdminToken(t *testing.T) {
	router := corsRouter(canteenCORS)

	req := httptest.NewRequest("OPTIONS", "/api/v1/admin/kitchen-summary", nil)
	req.Header.Set("Origin", "https://kitchen.rollbowl.in")
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// 预检请求由中间件直接应答，不进入路由
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://kitchen.rollbowl.in", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestCORS_EmptyConfig(t *testing.T) {
	router := corsRouter(config.CORSConfig{})

	req := httptest.NewRequest("POST", "/api/v1/vote", nil)
	req.Header.Set("Origin", "https://order.rollbowl.in")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Methods"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Headers"))
}

func TestCORS_Wildcard(t *testing.T) {
	router := corsRouter(config.CORSConfig{AllowedOrigins: []string{"*"}, AllowedMethods: []string{"GET"}})

	req := httptest.NewRequest("GET", "/api/v1/admin/kitchen-summary", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
