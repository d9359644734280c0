package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/rollbowl_go_server/internal/model/dto"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/clock"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/response"
	"github.com/qs3c/rollbowl_go_server/internal/service"
)

type AdminHandler struct {
	adminService        *service.AdminService
	customerService     *service.CustomerService
	subscriptionService *service.SubscriptionService
	clock               clock.Clock
}

func NewAdminHandler(
	adminService *service.AdminService,
	customerService *service.CustomerService,
	subscriptionService *service.SubscriptionService,
	clk clock.Clock,
) *AdminHandler {
	return &AdminHandler{
		adminService:        adminService,
		customerService:     customerService,
		subscriptionService: subscriptionService,
		clock:               clk,
	}
}

// Login 管理员密钥登录
// POST /api/v1/admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.adminService.Login(&req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "登录成功", resp)
}

// CreateUser 新增顾客
// POST /api/v1/admin/users
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	info, err := h.customerService.CreateUser(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "创建成功", info)
}

// ListUsers 顾客列表
// GET /api/v1/admin/users?page=1&page_size=20
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	items, total, err := h.customerService.List(c.Request.Context(), page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// CreateSubscription 开通订阅
// POST /api/v1/admin/subscriptions
func (h *AdminHandler) CreateSubscription(c *gin.Context) {
	var req dto.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	info, err := h.subscriptionService.Create(c.Request.Context(), &req, h.clock.Now())
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "订阅已开通", info)
}

// ListSubscriptions 某个顾客的订阅记录
// GET /api/v1/admin/users/:id/subscriptions
func (h *AdminHandler) ListSubscriptions(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的用户ID")
		return
	}

	items, err := h.subscriptionService.ListByUser(c.Request.Context(), userID, h.clock.Now())
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, items)
}
