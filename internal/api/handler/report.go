package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/rollbowl_go_server/internal/model"
	"github.com/qs3c/rollbowl_go_server/internal/model/dto"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/clock"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/response"
	"github.com/qs3c/rollbowl_go_server/internal/service"
	"github.com/qs3c/rollbowl_go_server/internal/worker"
)

const downloadURLExpireSeconds = 600

// URLSigner 私有 bucket 的下载地址签名
type URLSigner interface {
	ExtractObjectKey(url string) string
	GetSignedURL(objectKey string, expireSeconds int64) (string, error)
}

type ReportHandler struct {
	reportService *service.ReportService
	reportDir     string
	signer        URLSigner
	clock         clock.Clock
}

// NewReportHandler signer 为 nil 时直接跳转到报表地址
func NewReportHandler(reportService *service.ReportService, reportDir string, signer URLSigner, clk clock.Clock) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		reportDir:     reportDir,
		signer:        signer,
		clock:         clk,
	}
}

// Create 生成厨房报表
// POST /api/v1/admin/reports
func (h *ReportHandler) Create(c *gin.Context) {
	var req dto.CreateReportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ParamError(c, err.Error())
			return
		}
	}

	job, err := h.reportService.Enqueue(c.Request.Context(), req.Date, "admin", h.clock.Now())
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "报表任务已创建", job)
}

// Get GET /api/v1/admin/reports/:id
func (h *ReportHandler) Get(c *gin.Context) {
	id, ok := h.jobID(c)
	if !ok {
		return
	}

	job, err := h.reportService.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, job)
}

// Download 下载已完成的报表
// GET /api/v1/admin/reports/:id/download
func (h *ReportHandler) Download(c *gin.Context) {
	id, ok := h.jobID(c)
	if !ok {
		return
	}

	job, err := h.reportService.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if job.Status != model.ReportStatusCompleted || job.FileURL == "" {
		response.ConflictError(c, "报表尚未生成")
		return
	}

	if path, isLocal := worker.LocalPath(h.reportDir, job.FileURL); isLocal {
		if _, err := os.Stat(path); err != nil {
			response.NotFoundError(c, "报表文件已过期")
			return
		}
		c.FileAttachment(path, "kitchen_"+job.ServiceDate+filepath.Ext(path))
		return
	}

	url := job.FileURL
	if h.signer != nil {
		signed, err := h.signer.GetSignedURL(h.signer.ExtractObjectKey(url), downloadURLExpireSeconds)
		if err != nil {
			writeError(c, err)
			return
		}
		url = signed
	}
	c.Redirect(http.StatusFound, url)
}

func (h *ReportHandler) jobID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的任务ID")
		return 0, false
	}
	return id, true
}
