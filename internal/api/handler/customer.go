package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/rollbowl_go_server/internal/model/dto"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/clock"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/response"
	"github.com/qs3c/rollbowl_go_server/internal/service"
)

type CustomerHandler struct {
	customerService *service.CustomerService
	clock           clock.Clock
}

func NewCustomerHandler(customerService *service.CustomerService, clk clock.Clock) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		clock:           clk,
	}
}

// Login 顾客登录，手机号不存在时自动注册
// POST /api/v1/customer/login
func (h *CustomerHandler) Login(c *gin.Context) {
	var req dto.CustomerLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	info, err := h.customerService.Login(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "登录成功", info)
}

// Dashboard 顾客首页
// GET /api/v1/u/:token
func (h *CustomerHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.customerService.Dashboard(c.Request.Context(), c.Param("token"), h.clock.Now())
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, dashboard)
}
