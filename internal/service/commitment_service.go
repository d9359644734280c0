package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/qs3c/rollbowl_go_server/internal/model"
	"github.com/qs3c/rollbowl_go_server/internal/model/dto"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/metrics"
	"github.com/qs3c/rollbowl_go_server/internal/repository"
)

// VoteEvents 登记成功后的通知，失败只记日志
type VoteEvents interface {
	PublishVote(ctx context.Context, serviceDate string, userID int64, willEat bool, choice string) error
}

// VoteReceipt 一次成功登记的结果
type VoteReceipt struct {
	Vote           *model.Vote
	Subscription   *model.Subscription
	MealCharged    bool
	MealsRemaining int
}

// Response 转成接口返回结构
func (r *VoteReceipt) Response() *dto.SubmitVoteResponse {
	return &dto.SubmitVoteResponse{
		Vote:           buildVoteInfo(r.Vote),
		MealCharged:    r.MealCharged,
		MealsRemaining: r.MealsRemaining,
	}
}

// CommitmentService 次日用餐登记的判定引擎
type CommitmentService struct {
	userRepo  *repository.UserRepository
	subRepo   *repository.SubscriptionRepository
	menuRepo  *repository.MenuRepository
	tx        *repository.TxRunner
	calendar  *CalendarService
	gate      *CutoffGate
	validator *PlanValidator
	quota     *QuotaService
	events    VoteEvents
}

func NewCommitmentService(
	userRepo *repository.UserRepository,
	subRepo *repository.SubscriptionRepository,
	menuRepo *repository.MenuRepository,
	tx *repository.TxRunner,
	calendar *CalendarService,
	gate *CutoffGate,
	validator *PlanValidator,
	quota *QuotaService,
) *CommitmentService {
	return &CommitmentService{
		userRepo:  userRepo,
		subRepo:   subRepo,
		menuRepo:  menuRepo,
		tx:        tx,
		calendar:  calendar,
		gate:      gate,
		validator: validator,
		quota:     quota,
	}
}

// SetEvents 设置登记事件发布者
func (s *CommitmentService) SetEvents(events VoteEvents) {
	s.events = events
}

// SubmitVote 登记次日是否用餐及所选菜品。
// 所有拒绝都发生在写入之前；额度检查、写入登记、扣减额度在同一事务内完成。
func (s *CommitmentService) SubmitVote(ctx context.Context, req *dto.SubmitVoteRequest, now time.Time) (*VoteReceipt, error) {
	receipt, err := s.submit(ctx, req, now)
	metrics.VoteDecisions.WithLabelValues(outcomeLabel(err)).Inc()
	if err != nil {
		return nil, err
	}
	if receipt.MealCharged {
		metrics.MealsConsumed.Inc()
	}

	if s.events != nil {
		v := receipt.Vote
		if err := s.events.PublishVote(ctx, v.ServiceDate, v.UserID, v.WillEat, v.Choice); err != nil {
			log.Warn().Err(err).Int64("vote_id", v.ID).Msg("publish vote event failed")
		}
	}
	return receipt, nil
}

func (s *CommitmentService) submit(ctx context.Context, req *dto.SubmitVoteRequest, now time.Time) (*VoteReceipt, error) {
	user, err := s.userRepo.GetByToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !s.gate.IsWithinWindow(now) {
		return nil, ErrWindowClosed
	}

	target := s.gate.TargetDate(now)
	serviceDate := model.DateKey(target)

	ok, err := s.calendar.IsServiceable(ctx, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNonServiceableDay
	}

	sub, err := s.subRepo.GetActive(ctx, user.ID, s.gate.Today(now))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveSubscription
		}
		return nil, fmt.Errorf("lookup subscription: %w", err)
	}

	willEat := req.WillEat != nil && *req.WillEat
	var choice string
	if willEat {
		items, err := s.checkSelection(ctx, sub.Plan, serviceDate, req.Choice)
		if err != nil {
			return nil, err
		}
		choice = model.JoinChoice(items)
	}

	receipt := &VoteReceipt{Subscription: sub}
	err = s.tx.Run(ctx, func(repos *repository.TxRepos) error {
		locked, err := repos.Subscriptions.LockByID(ctx, sub.ID)
		if err != nil {
			return fmt.Errorf("lock subscription: %w", err)
		}
		quota := s.quota.In(repos.Votes)

		// prior 与写入在同一行锁下取得
		vote, prior, err := repos.Votes.Upsert(ctx, user.ID, serviceDate, willEat, choice)
		if err != nil {
			return fmt.Errorf("upsert vote: %w", err)
		}

		// 已经扣过一餐的登记再修改不占用新额度；额度不足时返回错误，整个事务回滚，登记不落库
		if willEat && (prior == nil || !prior.Charged()) {
			admit, err := quota.CanAdmit(ctx, locked)
			if err != nil {
				return err
			}
			if !admit {
				return ErrQuotaExhausted
			}
		}

		if willEat && (prior == nil || !prior.WillEat) {
			charged, err := quota.Consume(ctx, vote, locked)
			if err != nil {
				return err
			}
			receipt.MealCharged = charged
		}

		left, err := quota.Remaining(ctx, locked)
		if err != nil {
			return err
		}
		receipt.Vote = vote
		receipt.MealsRemaining = left
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("user_id", user.ID).
		Str("service_date", serviceDate).
		Bool("will_eat", willEat).
		Bool("charged", receipt.MealCharged).
		Int("meals_remaining", receipt.MealsRemaining).
		Msg("vote committed")
	return receipt, nil
}

// checkSelection 档位规则校验，当天已发布菜单时所选菜品必须在菜单上
func (s *CommitmentService) checkSelection(ctx context.Context, plan, serviceDate string, choice []string) ([]string, error) {
	items, err := s.validator.Normalize(choice)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(plan, items); err != nil {
		return nil, err
	}

	menu, err := s.menuRepo.GetByDate(ctx, serviceDate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return items, nil
		}
		return nil, fmt.Errorf("lookup menu: %w", err)
	}
	for _, it := range items {
		if !menu.Offers(it) {
			return nil, invalidSelection("%q is not on the menu for %s", it, serviceDate)
		}
	}
	return items, nil
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "committed"
	case errors.Is(err, ErrUnknownUser):
		return "unknown_user"
	case errors.Is(err, ErrWindowClosed):
		return "window_closed"
	case errors.Is(err, ErrNonServiceableDay):
		return "non_serviceable_day"
	case errors.Is(err, ErrNoActiveSubscription):
		return "no_active_subscription"
	case errors.Is(err, ErrInvalidSelection):
		return "invalid_selection"
	case errors.Is(err, ErrQuotaExhausted):
		return "quota_exhausted"
	default:
		return "error"
	}
}
