package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 错误码定义，HTTP 状态码统一为 200，业务结果看 code
const (
	CodeSuccess          = 0
	CodeParamError       = 1000
	CodeAuthFailed       = 1001
	CodePermissionDenied = 1002
	CodeResourceNotFound = 1003
	CodeQuotaExhausted   = 1004
	CodeConflict         = 1005
	CodeServerError      = 5000

	// 登记判定结果
	CodeWindowClosed      = 1101
	CodeNonServiceableDay = 1102
	CodeNoSubscription    = 1103
	CodeInvalidSelection  = 1104
)

var codeMessages = map[int]string{
	CodeSuccess:           "success",
	CodeParamError:        "参数错误",
	CodeAuthFailed:        "认证失败",
	CodePermissionDenied:  "权限不足",
	CodeResourceNotFound:  "资源不存在",
	CodeQuotaExhausted:    "套餐餐数已用完",
	CodeConflict:          "状态冲突",
	CodeServerError:       "服务器内部错误",
	CodeWindowClosed:      "已过登记截止时间",
	CodeNonServiceableDay: "次日不供餐",
	CodeNoSubscription:    "没有有效套餐",
	CodeInvalidSelection:  "菜品选择不合法",
}

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// PageData 分页数据结构
type PageData struct {
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Items    interface{} `json:"items"`
}

// DefaultMessage 返回错误码的默认提示，未知错误码返回空串
func DefaultMessage(code int) string {
	return codeMessages[code]
}

func Success(c *gin.Context, data interface{}) {
	SuccessWithMessage(c, codeMessages[CodeSuccess], data)
}

func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: CodeSuccess, Message: message, Data: data})
}

// SuccessPage 分页成功响应
func SuccessPage(c *gin.Context, total int64, page, pageSize int, items interface{}) {
	Success(c, PageData{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Items:    items,
	})
}

// Error 错误响应，message 为空时使用错误码默认消息
func Error(c *gin.Context, code int, message string) {
	ErrorWithData(c, code, message, nil)
}

// ErrorWithData 带附加数据的错误响应，例如额度耗尽时回带额度信息
func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	if message == "" {
		message = codeMessages[code]
	}
	c.JSON(http.StatusOK, Response{Code: code, Message: message, Data: data})
}

func ParamError(c *gin.Context, message string) { Error(c, CodeParamError, message) }

func AuthError(c *gin.Context, message string) { Error(c, CodeAuthFailed, message) }

func PermissionError(c *gin.Context, message string) { Error(c, CodePermissionDenied, message) }

func NotFoundError(c *gin.Context, message string) { Error(c, CodeResourceNotFound, message) }

func ConflictError(c *gin.Context, message string) { Error(c, CodeConflict, message) }

func ServerError(c *gin.Context, message string) { Error(c, CodeServerError, message) }
