package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/rollbowl_go_server/internal/model/dto"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/clock"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/response"
	"github.com/qs3c/rollbowl_go_server/internal/service"
)

type MenuHandler struct {
	menuService *service.MenuService
	clock       clock.Clock
}

func NewMenuHandler(menuService *service.MenuService, clk clock.Clock) *MenuHandler {
	return &MenuHandler{
		menuService: menuService,
		clock:       clk,
	}
}

// Today 今日菜单
// GET /api/v1/menu/today
func (h *MenuHandler) Today(c *gin.Context) {
	menu, err := h.menuService.Today(c.Request.Context(), h.clock.Now())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, menu)
}

// Get 指定日期菜单
// GET /api/v1/menu/:date
func (h *MenuHandler) Get(c *gin.Context) {
	menu, err := h.menuService.GetByDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, menu)
}

// Upsert 发布或覆盖某天菜单
// PUT /api/v1/admin/menu
func (h *MenuHandler) Upsert(c *gin.Context) {
	var req dto.UpsertMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	menu, err := h.menuService.Upsert(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "菜单已发布", menu)
}
