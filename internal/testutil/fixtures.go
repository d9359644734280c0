package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/qs3c/rollbowl_go_server/internal/model"
)

var phoneSeq int64

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := atomic.AddInt64(&phoneSeq, 1)
	user := &model.User{
		Name:  fmt.Sprintf("Customer %d", n),
		Phone: fmt.Sprintf("98%08d", n),
		Token: uuid.NewString(),
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithName 设置姓名
func WithName(name string) func(*model.User) {
	return func(u *model.User) {
		u.Name = name
	}
}

// WithPhone 设置手机号
func WithPhone(phone string) func(*model.User) {
	return func(u *model.User) {
		u.Phone = phone
	}
}

// WithToken 设置访问凭证
func WithToken(token string) func(*model.User) {
	return func(u *model.User) {
		u.Token = token
	}
}

// TestSubscription 创建测试订阅，默认从 start 开始 25 天、20 餐
func TestSubscription(t *testing.T, db *gorm.DB, userID int64, start time.Time, opts ...func(*model.Subscription)) *model.Subscription {
	t.Helper()

	sub := &model.Subscription{
		UserID:     userID,
		StartDate:  model.DateKey(start),
		EndDate:    model.DateKey(start.AddDate(0, 0, 25)),
		TotalMeals: 20,
	}

	for _, opt := range opts {
		opt(sub)
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}

	return sub
}

// WithPlan 设置套餐档位
func WithPlan(plan string) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.Plan = plan
	}
}

// WithTotalMeals 设置总餐数
func WithTotalMeals(total int) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.TotalMeals = total
	}
}

// WithEndDate 设置到期日
func WithEndDate(end time.Time) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.EndDate = model.DateKey(end)
	}
}

// TestVote 直接写入一条登记记录
func TestVote(t *testing.T, db *gorm.DB, userID int64, date time.Time, willEat bool, items ...string) *model.Vote {
	t.Helper()

	vote := &model.Vote{
		UserID:      userID,
		ServiceDate: model.DateKey(date),
		WillEat:     willEat,
		Choice:      model.JoinChoice(items),
	}

	if err := db.Create(vote).Error; err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	return vote
}

// ChargeVote 把登记记录计入某个订阅的配额
func ChargeVote(t *testing.T, db *gorm.DB, vote *model.Vote, subscriptionID int64) {
	t.Helper()

	if err := db.Model(vote).Update("charged_subscription_id", subscriptionID).Error; err != nil {
		t.Fatalf("Failed to charge test vote: %v", err)
	}
	vote.ChargedSubscriptionID = &subscriptionID
}

// TestHoliday 创建节假日
func TestHoliday(t *testing.T, db *gorm.DB, date time.Time, reason string) *model.Holiday {
	t.Helper()

	holiday := &model.Holiday{
		Date:   model.DateKey(date),
		Reason: reason,
	}

	if err := db.Create(holiday).Error; err != nil {
		t.Fatalf("Failed to create test holiday: %v", err)
	}

	return holiday
}

// TestMenu 发布某天菜单
func TestMenu(t *testing.T, db *gorm.DB, date time.Time, items ...string) *model.Menu {
	t.Helper()

	menu := &model.Menu{
		Date:  model.DateKey(date),
		Items: items,
	}

	if err := db.Create(menu).Error; err != nil {
		t.Fatalf("Failed to create test menu: %v", err)
	}

	return menu
}

// TestReportJob 创建报表任务
func TestReportJob(t *testing.T, db *gorm.DB, date string, status string) *model.ReportJob {
	t.Helper()

	job := &model.ReportJob{
		ServiceDate: date,
		Status:      status,
		RequestedBy: "admin",
	}

	if err := db.Create(job).Error; err != nil {
		t.Fatalf("Failed to create test report job: %v", err)
	}

	return job
}
