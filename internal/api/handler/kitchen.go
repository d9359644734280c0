package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/rollbowl_go_server/internal/pkg/clock"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/response"
	"github.com/qs3c/rollbowl_go_server/internal/service"
)

// KitchenHandler 厨房备餐用的次日统计
type KitchenHandler struct {
	summaryService *service.SummaryService
	gate           *service.CutoffGate
	clock          clock.Clock
}

func NewKitchenHandler(summaryService *service.SummaryService, gate *service.CutoffGate, clk clock.Clock) *KitchenHandler {
	return &KitchenHandler{
		summaryService: summaryService,
		gate:           gate,
		clock:          clk,
	}
}

// date 参数优先，否则取明天
func (h *KitchenHandler) date(c *gin.Context) string {
	if d := c.Query("date"); d != "" {
		return d
	}
	return h.gate.Tomorrow(h.clock.Now())
}

// TomorrowCount GET /api/v1/admin/tomorrow-count
func (h *KitchenHandler) TomorrowCount(c *gin.Context) {
	resp, err := h.summaryService.Count(c.Request.Context(), h.date(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, resp)
}

// TomorrowUsers GET /api/v1/admin/tomorrow-users
func (h *KitchenHandler) TomorrowUsers(c *gin.Context) {
	diners, err := h.summaryService.Diners(c.Request.Context(), h.date(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, diners)
}

// Summary 每个菜品的份数
// GET /api/v1/admin/kitchen-summary
func (h *KitchenHandler) Summary(c *gin.Context) {
	summary, err := h.summaryService.KitchenSummary(c.Request.Context(), h.date(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, summary)
}
