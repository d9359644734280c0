package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/rollbowl_go_server/internal/model/dto"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/clock"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/response"
	"github.com/qs3c/rollbowl_go_server/internal/service"
)

type HolidayHandler struct {
	holidayService *service.HolidayService
	clock          clock.Clock
}

func NewHolidayHandler(holidayService *service.HolidayService, clk clock.Clock) *HolidayHandler {
	return &HolidayHandler{
		holidayService: holidayService,
		clock:          clk,
	}
}

// Create POST /api/v1/admin/holidays
func (h *HolidayHandler) Create(c *gin.Context) {
	var req dto.CreateHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	info, err := h.holidayService.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已添加", info)
}

// List 今天及以后的节假日
// GET /api/v1/admin/holidays
func (h *HolidayHandler) List(c *gin.Context) {
	items, err := h.holidayService.Upcoming(c.Request.Context(), h.clock.Now())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, items)
}

// Delete DELETE /api/v1/admin/holidays/:date
func (h *HolidayHandler) Delete(c *gin.Context) {
	if err := h.holidayService.Delete(c.Request.Context(), c.Param("date")); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已删除", nil)
}
