package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/rollbowl_go_server/config"
	"github.com/qs3c/rollbowl_go_server/internal/model"
	"github.com/qs3c/rollbowl_go_server/internal/model/dto"
	"github.com/qs3c/rollbowl_go_server/internal/repository"
)

// SubscriptionService 订阅开通与查询
type SubscriptionService struct {
	subRepo      *repository.SubscriptionRepository
	userRepo     *repository.UserRepository
	tx           *repository.TxRunner
	quota        *QuotaService
	gate         *CutoffGate
	validityDays int
	defaultMeals int
}

func NewSubscriptionService(
	subRepo *repository.SubscriptionRepository,
	userRepo *repository.UserRepository,
	tx *repository.TxRunner,
	quota *QuotaService,
	gate *CutoffGate,
	cfg config.CanteenConfig,
) *SubscriptionService {
	s := &SubscriptionService{
		subRepo:      subRepo,
		userRepo:     userRepo,
		tx:           tx,
		quota:        quota,
		gate:         gate,
		validityDays: cfg.ValidityDays,
		defaultMeals: cfg.DefaultTotalMeals,
	}
	if s.validityDays <= 0 {
		s.validityDays = config.DefaultValidityDays
	}
	if s.defaultMeals <= 0 {
		s.defaultMeals = config.DefaultTotalMeals
	}
	return s
}

// Create 开通订阅，到期日 = 开始日 + 有效天数，创建后不再变更
func (s *SubscriptionService) Create(ctx context.Context, req *dto.CreateSubscriptionRequest, now time.Time) (*dto.SubscriptionInfo, error) {
	start, err := model.ParseDate(req.StartDate, s.gate.Location())
	if err != nil {
		return nil, ErrInvalidDate
	}

	total := req.TotalMeals
	if total <= 0 {
		total = s.defaultMeals
	}

	sub := &model.Subscription{
		UserID:     req.UserID,
		StartDate:  model.DateKey(start),
		EndDate:    model.DateKey(start.AddDate(0, 0, s.validityDays)),
		Plan:       req.Plan,
		TotalMeals: total,
	}

	// 锁住用户行，同一用户并发开通时检查和写入串行
	err = s.tx.Run(ctx, func(repos *repository.TxRepos) error {
		if _, err := repos.Users.LockByID(ctx, req.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownUser
			}
			return err
		}

		_, err := repos.Subscriptions.GetActive(ctx, req.UserID, s.gate.Today(now))
		if err == nil {
			return ErrSubscriptionActive
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lookup subscription: %w", err)
		}

		if err := repos.Subscriptions.Create(ctx, sub); err != nil {
			return fmt.Errorf("create subscription: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return buildSubscriptionInfo(sub, remainingDays(sub, now, s.gate.Location()), &dto.QuotaInfo{
		TotalMeals:     total,
		MealsRemaining: total,
	}), nil
}

// ListByUser 用户的订阅历史，带额度信息
func (s *SubscriptionService) ListByUser(ctx context.Context, userID int64, now time.Time) ([]*dto.SubscriptionInfo, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	subs, err := s.subRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.SubscriptionInfo, 0, len(subs))
	for _, sub := range subs {
		quota, err := s.quota.Info(ctx, sub)
		if err != nil {
			return nil, err
		}
		items = append(items, buildSubscriptionInfo(sub, remainingDays(sub, now, s.gate.Location()), quota))
	}
	return items, nil
}
