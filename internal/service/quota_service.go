package service

import (
	"context"
	"fmt"

	"github.com/qs3c/rollbowl_go_server/internal/model"
	"github.com/qs3c/rollbowl_go_server/internal/model/dto"
)

// MealLedger 订阅已消耗餐数的来源：计入该订阅的登记记录
type MealLedger interface {
	CountCharged(ctx context.Context, subscriptionID int64) (int64, error)
	Charge(ctx context.Context, voteID, subscriptionID int64) (bool, error)
}

// QuotaService 订阅餐数额度，已消耗数从登记记录推导，没有单独的计数器
type QuotaService struct {
	ledger MealLedger
}

func NewQuotaService(ledger MealLedger) *QuotaService {
	return &QuotaService{ledger: ledger}
}

// In 返回绑定到另一个账本（通常是事务内仓储）的副本
func (s *QuotaService) In(ledger MealLedger) *QuotaService {
	return &QuotaService{ledger: ledger}
}

// Consumed 已消耗餐数
func (s *QuotaService) Consumed(ctx context.Context, sub *model.Subscription) (int, error) {
	n, err := s.ledger.CountCharged(ctx, sub.ID)
	if err != nil {
		return 0, fmt.Errorf("count consumed meals: %w", err)
	}
	return int(n), nil
}

// Remaining 剩余餐数，不会小于 0
func (s *QuotaService) Remaining(ctx context.Context, sub *model.Subscription) (int, error) {
	consumed, err := s.Consumed(ctx, sub)
	if err != nil {
		return 0, err
	}
	return remaining(sub.TotalMeals, consumed), nil
}

// CanAdmit 是否还能再登记一餐
func (s *QuotaService) CanAdmit(ctx context.Context, sub *model.Subscription) (bool, error) {
	left, err := s.Remaining(ctx, sub)
	if err != nil {
		return false, err
	}
	return left > 0, nil
}

// Consume 把登记计入订阅，已计入过的返回 false，不会重复扣减
func (s *QuotaService) Consume(ctx context.Context, vote *model.Vote, sub *model.Subscription) (bool, error) {
	charged, err := s.ledger.Charge(ctx, vote.ID, sub.ID)
	if err != nil {
		return false, fmt.Errorf("consume meal: %w", err)
	}
	if charged {
		id := sub.ID
		vote.ChargedSubscriptionID = &id
	}
	return charged, nil
}

// Info 额度概要
func (s *QuotaService) Info(ctx context.Context, sub *model.Subscription) (*dto.QuotaInfo, error) {
	consumed, err := s.Consumed(ctx, sub)
	if err != nil {
		return nil, err
	}
	return &dto.QuotaInfo{
		TotalMeals:     sub.TotalMeals,
		MealsConsumed:  consumed,
		MealsRemaining: remaining(sub.TotalMeals, consumed),
	}, nil
}

func remaining(total, consumed int) int {
	if consumed >= total {
		return 0
	}
	return total - consumed
}
