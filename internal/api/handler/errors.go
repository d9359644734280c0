package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/qs3c/rollbowl_go_server/internal/pkg/response"
	"github.com/qs3c/rollbowl_go_server/internal/service"
)

// writeError 把业务错误翻译成响应码，未知错误记日志后统一返回 5000
func writeError(c *gin.Context, err error) {
	var selErr *service.SelectionError
	switch {
	case errors.As(err, &selErr):
		response.Error(c, response.CodeInvalidSelection, selErr.Error())
	case errors.Is(err, service.ErrInvalidSelection):
		response.Error(c, response.CodeInvalidSelection, "")
	case errors.Is(err, service.ErrWindowClosed):
		response.Error(c, response.CodeWindowClosed, err.Error())
	case errors.Is(err, service.ErrNonServiceableDay):
		response.Error(c, response.CodeNonServiceableDay, err.Error())
	case errors.Is(err, service.ErrNoActiveSubscription):
		response.Error(c, response.CodeNoSubscription, err.Error())
	case errors.Is(err, service.ErrQuotaExhausted):
		response.ErrorWithData(c, response.CodeQuotaExhausted, err.Error(), gin.H{"meals_remaining": 0})

	case errors.Is(err, service.ErrUnknownUser),
		errors.Is(err, service.ErrMenuNotFound),
		errors.Is(err, service.ErrHolidayNotFound),
		errors.Is(err, service.ErrReportNotFound):
		response.NotFoundError(c, err.Error())

	case errors.Is(err, service.ErrHolidayExists),
		errors.Is(err, service.ErrReportInProgress):
		response.ConflictError(c, err.Error())

	case errors.Is(err, service.ErrSubscriptionActive),
		errors.Is(err, service.ErrPhoneTaken),
		errors.Is(err, service.ErrInvalidDate):
		response.ParamError(c, err.Error())

	case errors.Is(err, service.ErrInvalidAdminKey):
		response.AuthError(c, err.Error())

	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		response.ServerError(c, "")
	}
}
