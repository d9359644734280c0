package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/rollbowl_go_server/internal/model"
	"github.com/qs3c/rollbowl_go_server/internal/model/dto"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/metrics"
	fixtures "github.com/qs3c/rollbowl_go_server/internal/testutil"
)

func voteReq(token string, willEat bool, items ...string) *dto.SubmitVoteRequest {
	return &dto.SubmitVoteRequest{Token: token, WillEat: boolPtr(willEat), Choice: items}
}

// subscribedUser 周一开通 25 天订阅的顾客
func subscribedUser(t *testing.T, e *testEnv, opts ...func(*model.Subscription)) (*model.User, *model.Subscription) {
	t.Helper()
	user := fixtures.TestUser(t, e.db)
	sub := fixtures.TestSubscription(t, e.db, user.ID, day("2026-10-19"), opts...)
	return user, sub
}

func TestCommitmentService_SubmitVote_Committed(t *testing.T) {
	e := newTestEnv(t)
	user, sub := subscribedUser(t, e)
	ctx := context.Background()

	receipt, err := e.engine.SubmitVote(ctx, voteReq(user.Token, true, "Paneer Roll"), at("2026-10-20", 18, 0))
	require.NoError(t, err)

	assert.Equal(t, "2026-10-21", receipt.Vote.ServiceDate)
	assert.True(t, receipt.Vote.WillEat)
	assert.Equal(t, "Paneer Roll", receipt.Vote.Choice)
	assert.True(t, receipt.MealCharged)
	assert.Equal(t, 19, receipt.MealsRemaining)
	require.NotNil(t, receipt.Vote.ChargedSubscriptionID)
	assert.Equal(t, sub.ID, *receipt.Vote.ChargedSubscriptionID)

	left, err := e.quota.Remaining(ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, 19, left)

	require.Equal(t, 1, e.events.count())
	assert.Equal(t, publishedVote{"2026-10-21", user.ID, true, "Paneer Roll"}, e.events.votes[0])
}

func TestCommitmentService_SubmitVote_ResubmitDoesNotConsumeAgain(t *testing.T) {
	e := newTestEnv(t)
	user, sub := subscribedUser(t, e)
	ctx := context.Background()
	now := at("2026-10-20", 18, 0)

	_, err := e.engine.SubmitVote(ctx, voteReq(user.Token, true, "Paneer Roll"), now)
	require.NoError(t, err)

	receipt, err := e.engine.SubmitVote(ctx, voteReq(user.Token, true, "Veg Bowl"), now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.False(t, receipt.MealCharged)
	assert.Equal(t, 19, receipt.MealsRemaining)
	assert.Equal(t, "Veg Bowl", receipt.Vote.Choice)

	n, err := e.voteRepo.CountByUserAndDate(ctx, user.ID, "2026-10-21")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	stored, err := e.voteRepo.GetByUserAndDate(ctx, user.ID, "2026-10-21")
	require.NoError(t, err)
	assert.Equal(t, "Veg Bowl", stored.Choice)
	require.NotNil(t, stored.ChargedSubscriptionID)
	assert.Equal(t, sub.ID, *stored.ChargedSubscriptionID)
}

func TestCommitmentService_SubmitVote_QuotaExhausted(t *testing.T) {
	e := newTestEnv(t)
	user, sub := subscribedUser(t, e, fixtures.WithTotalMeals(1))
	ctx := context.Background()

	used := fixtures.TestVote(t, e.db, user.ID, day("2026-10-20"), true, "Paneer Roll")
	fixtures.ChargeVote(t, e.db, used, sub.ID)

	before := testutil.ToFloat64(metrics.VoteDecisions.WithLabelValues("quota_exhausted"))

	_, err := e.engine.SubmitVote(ctx, voteReq(user.Token, true, "Veg Bowl"), at("2026-10-20", 18, 0))
	assert.ErrorIs(t, err, ErrQuotaExhausted)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.VoteDecisions.WithLabelValues("quota_exhausted")))

	n, err := e.voteRepo.CountByUserAndDate(ctx, user.ID, "2026-10-21")
	require.NoError(t, err)
	assert.Zero(t, n, "rejected vote must not be written")
	assert.Zero(t, e.events.count())
}

func TestCommitmentService_SubmitVote_SkipAllowedWithoutQuota(t *testing.T) {
	e := newTestEnv(t)
	user, sub := subscribedUser(t, e, fixtures.WithTotalMeals(1))
	ctx := context.Background()

	used := fixtures.TestVote(t, e.db, user.ID, day("2026-10-20"), true, "Paneer Roll")
	fixtures.ChargeVote(t, e.db, used, sub.ID)

	receipt, err := e.engine.SubmitVote(ctx, voteReq(user.Token, false), at("2026-10-20", 18, 0))
	require.NoError(t, err)
	assert.False(t, receipt.Vote.WillEat)
	assert.Zero(t, receipt.MealsRemaining)
}

func TestCommitmentService_SubmitVote_PremiumNeedsRollAndBowl(t *testing.T) {
	e := newTestEnv(t)
	user, _ := subscribedUser(t, e, fixtures.WithPlan(model.PlanPremium))
	ctx := context.Background()

	_, err := e.engine.SubmitVote(ctx, voteReq(user.Token, true, "Paneer Roll", "Aloo Roll"), at("2026-10-20", 18, 0))
	require.ErrorIs(t, err, ErrInvalidSelection)

	var selErr *SelectionError
	require.True(t, errors.As(err, &selErr))
	assert.Contains(t, selErr.Reason, "roll")

	_, err = e.engine.SubmitVote(ctx, voteReq(user.Token, true, "Paneer Roll", "Veg Bowl"), at("2026-10-20", 18, 0))
	assert.NoError(t, err)
}

func TestCommitmentService_SubmitVote_Window(t *testing.T) {
	e := newTestEnv(t)
	user, _ := subscribedUser(t, e)
	ctx := context.Background()

	_, err := e.engine.SubmitVote(ctx, voteReq(user.Token, true, "Paneer Roll"), at("2026-10-20", 22, 30))
	assert.ErrorIs(t, err, ErrWindowClosed)

	_, err = e.engine.SubmitVote(ctx, voteReq(user.Token, true, "Paneer Roll"), at("2026-10-20", 23, 59))
	assert.ErrorIs(t, err, ErrWindowClosed)

	_, err = e.engine.SubmitVote(ctx, voteReq(user.Token, true, "Paneer Roll"), at("2026-10-20", 22, 29))
	assert.NoError(t, err)
}

func TestCommitmentService_SubmitVote_NonServiceableDay(t *testing.T) {
	e := newTestEnv(t)
	user, _ := subscribedUser(t, e)
	fixtures.TestHoliday(t, e.db, day("2026-10-22"), "Festival")
	ctx := context.Background()

	tests := []struct {
		name string
		now  string
	}{
		{"friday evening targets saturday", "2026-10-23"},
		{"saturday evening targets sunday", "2026-10-24"},
		{"eve of holiday", "2026-10-21"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.engine.SubmitVote(ctx, voteReq(user.Token, true, "Paneer Roll"), at(tt.now, 18, 0))
			assert.ErrorIs(t, err, ErrNonServiceableDay)
		})
	}

	// 周日晚上登记周一
	_, err := e.engine.SubmitVote(ctx, voteReq(user.Token, true, "Paneer Roll"), at("2026-10-25", 18, 0))
	assert.NoError(t, err)
}

func TestCommitmentService_SubmitVote_UnknownUser(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.engine.SubmitVote(context.Background(), voteReq("no-such-token", true, "Paneer Roll"), at("2026-10-20", 18, 0))
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestCommitmentService_SubmitVote_NoActiveSubscription(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	t.Run("never subscribed", func(t *testing.T) {
		user := fixtures.TestUser(t, e.db)
		_, err := e.engine.SubmitVote(ctx, voteReq(user.Token, true, "Paneer Roll"), at("2026-10-20", 18, 0))
		assert.ErrorIs(t, err, ErrNoActiveSubscription)
	})

	t.Run("expired yesterday", func(t *testing.T) {
		user := fixtures.TestUser(t, e.db)
		fixtures.TestSubscription(t, e.db, user.ID, day("2026-09-24"), fixtures.WithEndDate(day("2026-10-19")))
		_, err := e.engine.SubmitVote(ctx, voteReq(user.Token, true, "Paneer Roll"), at("2026-10-20", 18, 0))
		assert.ErrorIs(t, err, ErrNoActiveSubscription)
	})

	t.Run("ends today", func(t *testing.T) {
		user := fixtures.TestUser(t, e.db)
		fixtures.TestSubscription(t, e.db, user.ID, day("2026-09-25"), fixtures.WithEndDate(day("2026-10-20")))
		_, err := e.engine.SubmitVote(ctx, voteReq(user.Token, true, "Paneer Roll"), at("2026-10-20", 18, 0))
		assert.NoError(t, err)
	})
}

func TestCommitmentService_SubmitVote_FalseThenTrueConsumesOnce(t *testing.T) {
	e := newTestEnv(t)
	user, _ := subscribedUser(t, e)
	ctx := context.Background()
	now := at("2026-10-20", 18, 0)

	receipt, err := e.engine.SubmitVote(ctx, voteReq(user.Token, false), now)
	require.NoError(t, err)
	assert.Equal(t, 20, receipt.MealsRemaining)
	assert.False(t, receipt.Vote.Charged())

	receipt, err = e.engine.SubmitVote(ctx, voteReq(user.Token, true, "Paneer Roll"), now)
	require.NoError(t, err)
	assert.True(t, receipt.MealCharged)
	assert.Equal(t, 19, receipt.MealsRemaining)

	receipt, err = e.engine.SubmitVote(ctx, voteReq(user.Token, true, "Paneer Roll"), now)
	require.NoError(t, err)
	assert.False(t, receipt.MealCharged)
	assert.Equal(t, 19, receipt.MealsRemaining)
}

func TestCommitmentService_SubmitVote_NoRefund(t *testing.T) {
	e := newTestEnv(t)
	user, _ := subscribedUser(t, e, fixtures.WithTotalMeals(1))
	ctx := context.Background()
	now := at("2026-10-20", 18, 0)

	receipt, err := e.engine.SubmitVote(ctx, voteReq(user.Token, true, "Paneer Roll"), now)
	require.NoError(t, err)
	assert.Zero(t, receipt.MealsRemaining)

	receipt, err = e.engine.SubmitVote(ctx, voteReq(user.Token, false, "Paneer Roll"), now)
	require.NoError(t, err)
	assert.False(t, receipt.Vote.WillEat)
	assert.Empty(t, receipt.Vote.Choice)
	assert.Zero(t, receipt.MealsRemaining, "skipping after committing does not refund")

	// 这一天已经扣过，改回用餐不需要新额度
	receipt, err = e.engine.SubmitVote(ctx, voteReq(user.Token, true, "Veg Bowl"), now)
	require.NoError(t, err)
	assert.False(t, receipt.MealCharged)
	assert.Zero(t, receipt.MealsRemaining)
}

func TestCommitmentService_SubmitVote_MenuCheck(t *testing.T) {
	e := newTestEnv(t)
	user, _ := subscribedUser(t, e)
	fixtures.TestMenu(t, e.db, day("2026-10-21"), "Paneer Roll", "Veg Bowl")
	ctx := context.Background()
	now := at("2026-10-20", 18, 0)

	_, err := e.engine.SubmitVote(ctx, voteReq(user.Token, true, "Chicken Roll"), now)
	assert.ErrorIs(t, err, ErrInvalidSelection)

	receipt, err := e.engine.SubmitVote(ctx, voteReq(user.Token, true, " paneer roll "), now)
	require.NoError(t, err)
	assert.Equal(t, "paneer roll", receipt.Vote.Choice)
}

func TestCommitmentService_SubmitVote_EmptySelection(t *testing.T) {
	e := newTestEnv(t)
	user, _ := subscribedUser(t, e)
	ctx := context.Background()

	_, err := e.engine.SubmitVote(ctx, voteReq(user.Token, true, " ", ""), at("2026-10-20", 18, 0))
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestCommitmentService_SubmitVote_Concurrent(t *testing.T) {
	e := newTestEnv(t)
	user, sub := subscribedUser(t, e)
	ctx := context.Background()
	now := at("2026-10-20", 18, 0)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			item := "Paneer Roll"
			if i%2 == 1 {
				item = "Veg Bowl"
			}
			_, err := e.engine.SubmitVote(ctx, voteReq(user.Token, true, item), now)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	n, err := e.voteRepo.CountByUserAndDate(ctx, user.ID, "2026-10-21")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	left, err := e.quota.Remaining(ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, 19, left)
}

func TestOutcomeLabel(t *testing.T) {
	assert.Equal(t, "committed", outcomeLabel(nil))
	assert.Equal(t, "invalid_selection", outcomeLabel(invalidSelection("x")))
	assert.Equal(t, "quota_exhausted", outcomeLabel(ErrQuotaExhausted))
	assert.Equal(t, "error", outcomeLabel(errors.New("boom")))
}

func TestCommitmentService_SubmitVote_CommaInItemRejected(t *testing.T) {
	e := newTestEnv(t)
	user, _ := subscribedUser(t, e, fixtures.WithPlan(model.PlanBasic))
	ctx := context.Background()
	now := at("2026-10-20", 18, 0)

	_, err := e.engine.SubmitVote(ctx, voteReq(user.Token, true, "Rice, Dal Bowl"), now)
	require.ErrorIs(t, err, ErrInvalidSelection)

	n, err := e.voteRepo.CountByUserAndDate(ctx, user.ID, "2026-10-21")
	require.NoError(t, err)
	assert.Zero(t, n)

	// 合法的单个菜品在汇总里只计一次
	_, err = e.engine.SubmitVote(ctx, voteReq(user.Token, true, "Dal Rice Bowl"), now)
	require.NoError(t, err)

	summary, err := e.summary.Summarize(ctx, "2026-10-21")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Dal Rice Bowl": 1}, summary)
}

func TestCommitmentService_SubmitVote_QuotaExhaustedKeepsPriorVote(t *testing.T) {
	e := newTestEnv(t)
	user, sub := subscribedUser(t, e, fixtures.WithTotalMeals(1))
	ctx := context.Background()

	used := fixtures.TestVote(t, e.db, user.ID, day("2026-10-20"), true, "Paneer Roll")
	fixtures.ChargeVote(t, e.db, used, sub.ID)
	fixtures.TestVote(t, e.db, user.ID, day("2026-10-21"), false)

	_, err := e.engine.SubmitVote(ctx, voteReq(user.Token, true, "Veg Bowl"), at("2026-10-20", 18, 0))
	require.ErrorIs(t, err, ErrQuotaExhausted)

	stored, err := e.voteRepo.GetByUserAndDate(ctx, user.ID, "2026-10-21")
	require.NoError(t, err)
	assert.False(t, stored.WillEat, "rejected vote must roll back")
	assert.Empty(t, stored.Choice)
	assert.Nil(t, stored.ChargedSubscriptionID)
}

func TestCommitmentService_SubmitVote_EditChargedVoteWithNoMealsLeft(t *testing.T) {
	e := newTestEnv(t)
	user, sub := subscribedUser(t, e, fixtures.WithTotalMeals(1))
	ctx := context.Background()
	now := at("2026-10-20", 18, 0)

	first, err := e.engine.SubmitVote(ctx, voteReq(user.Token, true, "Paneer Roll"), now)
	require.NoError(t, err)
	assert.Zero(t, first.MealsRemaining)

	receipt, err := e.engine.SubmitVote(ctx, voteReq(user.Token, true, "Veg Bowl"), now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, receipt.MealCharged)
	assert.Equal(t, "Veg Bowl", receipt.Vote.Choice)
	require.NotNil(t, receipt.Vote.ChargedSubscriptionID)
	assert.Equal(t, sub.ID, *receipt.Vote.ChargedSubscriptionID)
}
