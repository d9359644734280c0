package dto

// CreateSubscriptionRequest 开通订阅
type CreateSubscriptionRequest struct {
	UserID     int64  `json:"user_id" binding:"required"`
	StartDate  string `json:"start_date" binding:"required"`
	Plan       string `json:"plan" binding:"omitempty,oneof=basic premium"`
	TotalMeals int    `json:"total_meals" binding:"omitempty,min=1,max=100"`
}

// UpsertMenuRequest 发布某天菜单
type UpsertMenuRequest struct {
	Date  string   `json:"date" binding:"required"`
	Items []string `json:"items" binding:"required,min=1"`
}

// CreateHolidayRequest 新增节假日
type CreateHolidayRequest struct {
	Date   string `json:"date" binding:"required"`
	Reason string `json:"reason" binding:"max=200"`
}

// TomorrowCountResponse 明日用餐人数
type TomorrowCountResponse struct {
	Date         string `json:"date"`
	WillEatCount int64  `json:"will_eat_count"`
}

// DinerInfo 明日用餐名单中的一行
type DinerInfo struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Choice string `json:"choice"`
}

// KitchenSummary 厨房汇总
type KitchenSummary struct {
	Date  string         `json:"date"`
	Total int            `json:"total"`
	Items map[string]int `json:"items"`
}

// CreateReportRequest 生成厨房报表，Date 为空时取明天
type CreateReportRequest struct {
	Date string `json:"date"`
}

// ReportJobInfo 报表任务状态
type ReportJobInfo struct {
	ID             int64   `json:"id"`
	ServiceDate    string  `json:"service_date"`
	Status         string  `json:"status"`
	RequestedBy    string  `json:"requested_by"`
	FileURL        string  `json:"file_url,omitempty"`
	ErrorMessage   string  `json:"error_message,omitempty"`
	CreatedAt      string  `json:"created_at"`
	CompletedAt    *string `json:"completed_at,omitempty"`
	ElapsedSeconds *int    `json:"elapsed_seconds,omitempty"`
}

// HolidayInfo 节假日
type HolidayInfo struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}
