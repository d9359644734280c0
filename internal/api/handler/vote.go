package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/rollbowl_go_server/internal/model/dto"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/clock"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/response"
	"github.com/qs3c/rollbowl_go_server/internal/service"
)

type VoteHandler struct {
	commitmentService *service.CommitmentService
	clock             clock.Clock
}

func NewVoteHandler(commitmentService *service.CommitmentService, clk clock.Clock) *VoteHandler {
	return &VoteHandler{
		commitmentService: commitmentService,
		clock:             clk,
	}
}

// Submit 登记明日是否用餐
// POST /api/v1/vote
func (h *VoteHandler) Submit(c *gin.Context) {
	var req dto.SubmitVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	receipt, err := h.commitmentService.SubmitVote(c.Request.Context(), &req, h.clock.Now())
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "登记成功", receipt.Response())
}
