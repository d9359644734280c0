package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/qs3c/rollbowl_go_server/internal/model"
	"github.com/qs3c/rollbowl_go_server/internal/model/dto"
	"github.com/qs3c/rollbowl_go_server/internal/repository"
)

// CustomerService 顾客身份与首页
type CustomerService struct {
	userRepo *repository.UserRepository
	subRepo  *repository.SubscriptionRepository
	voteRepo *repository.VoteRepository
	menuRepo *repository.MenuRepository
	quota    *QuotaService
	gate     *CutoffGate
	calendar *CalendarService
}

func NewCustomerService(
	userRepo *repository.UserRepository,
	subRepo *repository.SubscriptionRepository,
	voteRepo *repository.VoteRepository,
	menuRepo *repository.MenuRepository,
	quota *QuotaService,
	gate *CutoffGate,
	calendar *CalendarService,
) *CustomerService {
	return &CustomerService{
		userRepo: userRepo,
		subRepo:  subRepo,
		voteRepo: voteRepo,
		menuRepo: menuRepo,
		quota:    quota,
		gate:     gate,
		calendar: calendar,
	}
}

// Login 按手机号登录，首次登录自动注册并分配访问凭证
func (s *CustomerService) Login(ctx context.Context, req *dto.CustomerLoginRequest) (*dto.CustomerInfo, error) {
	phone := strings.TrimSpace(req.Phone)
	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err == nil {
		return buildCustomerInfo(user), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	// 同一手机号并发首次登录时只有一个写入成功，其余拿到同一条记录
	user, _, err = s.userRepo.FirstOrCreateByPhone(ctx, &model.User{
		Name:  strings.TrimSpace(req.Name),
		Phone: phone,
		Token: uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return buildCustomerInfo(user), nil
}

// CreateUser 管理端新增顾客，手机号不能重复
func (s *CustomerService) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.CustomerInfo, error) {
	phone := strings.TrimSpace(req.Phone)
	exists, err := s.userRepo.ExistsByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrPhoneTaken
	}

	user, created, err := s.userRepo.FirstOrCreateByPhone(ctx, &model.User{
		Name:  strings.TrimSpace(req.Name),
		Phone: phone,
		Token: uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if !created {
		return nil, ErrPhoneTaken
	}
	return buildCustomerInfo(user), nil
}

// List 顾客列表
func (s *CustomerService) List(ctx context.Context, page, pageSize int) ([]*dto.CustomerInfo, int64, error) {
	users, total, err := s.userRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.CustomerInfo, 0, len(users))
	for _, u := range users {
		items = append(items, buildCustomerInfo(u))
	}
	return items, total, nil
}

// Dashboard 顾客首页：订阅、剩余天数和餐数、今日菜单、明日登记
func (s *CustomerService) Dashboard(ctx context.Context, token string, now time.Time) (*dto.DashboardResponse, error) {
	user, err := s.userRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	today := s.gate.Today(now)
	tomorrow := s.gate.Tomorrow(now)
	resp := &dto.DashboardResponse{
		Customer:     buildCustomerInfo(user),
		TomorrowDate: tomorrow,
		WindowOpen:   s.gate.IsWithinWindow(now),
	}

	if resp.WindowOpen {
		ok, err := s.calendar.IsServiceable(ctx, s.gate.TargetDate(now))
		if err != nil {
			return nil, err
		}
		resp.WindowOpen = ok
	}

	sub, err := s.subRepo.GetActive(ctx, user.ID, today)
	switch {
	case err == nil:
		info, err := s.subscriptionInfo(ctx, sub, now)
		if err != nil {
			return nil, err
		}
		resp.Subscription = info
	case errors.Is(err, gorm.ErrRecordNotFound):
		resp.WindowOpen = false
	default:
		return nil, err
	}

	menu, err := s.menuRepo.GetByDate(ctx, today)
	if err == nil {
		resp.TodayMenu = &dto.MenuInfo{Date: menu.Date, Items: menu.Items}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	vote, err := s.voteRepo.GetByUserAndDate(ctx, user.ID, tomorrow)
	if err == nil {
		resp.TomorrowVote = buildVoteInfo(vote)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return resp, nil
}

func (s *CustomerService) subscriptionInfo(ctx context.Context, sub *model.Subscription, now time.Time) (*dto.SubscriptionInfo, error) {
	quota, err := s.quota.Info(ctx, sub)
	if err != nil {
		return nil, err
	}
	return buildSubscriptionInfo(sub, remainingDays(sub, now, s.gate.Location()), quota), nil
}

// remainingDays 今天到到期日的天数，已过期为 0
func remainingDays(sub *model.Subscription, now time.Time, loc *time.Location) int {
	end, err := model.ParseDate(sub.EndDate, loc)
	if err != nil {
		return 0
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	days := int(end.Sub(today).Hours()/24 + 0.5)
	if days < 0 {
		return 0
	}
	return days
}

func buildCustomerInfo(user *model.User) *dto.CustomerInfo {
	return &dto.CustomerInfo{
		ID:        user.ID,
		Name:      user.Name,
		Phone:     user.Phone,
		Token:     user.Token,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func buildSubscriptionInfo(sub *model.Subscription, days int, quota *dto.QuotaInfo) *dto.SubscriptionInfo {
	return &dto.SubscriptionInfo{
		ID:            sub.ID,
		UserID:        sub.UserID,
		StartDate:     sub.StartDate,
		EndDate:       sub.EndDate,
		Plan:          sub.Plan,
		RemainingDays: days,
		Quota:         quota,
	}
}

func buildVoteInfo(v *model.Vote) *dto.VoteInfo {
	return &dto.VoteInfo{
		ID:          v.ID,
		ServiceDate: v.ServiceDate,
		WillEat:     v.WillEat,
		Choice:      v.Items(),
		UpdatedAt:   v.UpdatedAt.Format(time.RFC3339),
	}
}
