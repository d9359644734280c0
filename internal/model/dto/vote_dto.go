package dto

// SubmitVoteRequest 提交明日用餐登记
type SubmitVoteRequest struct {
	Token   string   `json:"token" binding:"required"`
	WillEat *bool    `json:"will_eat" binding:"required"`
	Choice  []string `json:"choice"`
}

// VoteInfo 登记结果
type VoteInfo struct {
	ID          int64    `json:"id"`
	ServiceDate string   `json:"service_date"`
	WillEat     bool     `json:"will_eat"`
	Choice      []string `json:"choice"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// QuotaInfo 配额信息
type QuotaInfo struct {
	TotalMeals     int `json:"total_meals"`
	MealsConsumed  int `json:"meals_consumed"`
	MealsRemaining int `json:"meals_remaining"`
}

// SubscriptionInfo 订阅信息
type SubscriptionInfo struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	StartDate     string     `json:"start_date"`
	EndDate       string     `json:"end_date"`
	Plan          string     `json:"plan,omitempty"`
	RemainingDays int        `json:"remaining_days"`
	Quota         *QuotaInfo `json:"quota,omitempty"`
}

// MenuInfo 菜单
type MenuInfo struct {
	Date  string   `json:"date"`
	Items []string `json:"items"`
}

// DashboardResponse 顾客首页
type DashboardResponse struct {
	Customer     *CustomerInfo     `json:"customer"`
	Subscription *SubscriptionInfo `json:"subscription,omitempty"`
	TodayMenu    *MenuInfo         `json:"today_menu,omitempty"`
	TomorrowDate string            `json:"tomorrow_date"`
	TomorrowVote *VoteInfo         `json:"tomorrow_vote,omitempty"`
	WindowOpen   bool              `json:"window_open"`
}

// SubmitVoteResponse 登记成功后的回执
type SubmitVoteResponse struct {
	Vote           *VoteInfo `json:"vote"`
	MealCharged    bool      `json:"meal_charged"`
	MealsRemaining int       `json:"meals_remaining"`
}
