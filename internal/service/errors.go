package service

import (
	"errors"
	"fmt"
)

// 登记判定的拒绝原因
var (
	ErrUnknownUser          = errors.New("用户不存在或链接已失效")
	ErrWindowClosed         = errors.New("已过今晚登记截止时间")
	ErrNonServiceableDay    = errors.New("次日为休息日或节假日，不供餐")
	ErrNoActiveSubscription = errors.New("没有有效的订阅")
	ErrInvalidSelection     = errors.New("菜品选择不合法")
	ErrQuotaExhausted       = errors.New("套餐餐数已用完")
)

var (
	ErrSubscriptionActive = errors.New("用户已有未到期的订阅")
	ErrPhoneTaken         = errors.New("手机号已被使用")
	ErrInvalidDate        = errors.New("日期格式应为 YYYY-MM-DD")
	ErrInvalidAdminKey    = errors.New("管理员密钥错误")
	ErrHolidayExists      = errors.New("该日期已是节假日")
	ErrHolidayNotFound    = errors.New("节假日不存在")
	ErrReportNotFound     = errors.New("报表任务不存在")
	ErrReportInProgress   = errors.New("该日期的报表正在生成")
)

// SelectionError 带具体原因的选择错误，errors.Is(err, ErrInvalidSelection) 成立
type SelectionError struct {
	Reason string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidSelection.Error(), e.Reason)
}

func (e *SelectionError) Unwrap() error {
	return ErrInvalidSelection
}

func invalidSelection(format string, args ...interface{}) error {
	return &SelectionError{Reason: fmt.Sprintf(format, args...)}
}
