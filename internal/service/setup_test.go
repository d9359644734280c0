package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/rollbowl_go_server/config"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/queue"
	"github.com/qs3c/rollbowl_go_server/internal/repository"
	"github.com/qs3c/rollbowl_go_server/internal/testutil"
)

// 测试统一使用印度标准时间，2026-10-19 是周一
var ist = time.FixedZone("IST", 5*3600+30*60)

func at(date string, hour, minute int) time.Time {
	d, err := time.ParseInLocation("2006-01-02", date, ist)
	if err != nil {
		panic(err)
	}
	return d.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func day(date string) time.Time {
	return at(date, 0, 0)
}

type testEnv struct {
	db *gorm.DB

	userRepo    *repository.UserRepository
	subRepo     *repository.SubscriptionRepository
	voteRepo    *repository.VoteRepository
	menuRepo    *repository.MenuRepository
	holidayRepo *repository.HolidayRepository
	jobRepo     *repository.ReportJobRepository

	gate      *CutoffGate
	calendar  *CalendarService
	quota     *QuotaService
	validator *PlanValidator
	engine    *CommitmentService
	summary   *SummaryService
	customers *CustomerService
	subs      *SubscriptionService
	menus     *MenuService
	holidays  *HolidayService
	reports   *ReportService
	queue     *fakeQueue
	events    *fakeEvents
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	e := &testEnv{
		db:          db,
		userRepo:    repository.NewUserRepository(db),
		subRepo:     repository.NewSubscriptionRepository(db),
		voteRepo:    repository.NewVoteRepository(db),
		menuRepo:    repository.NewMenuRepository(db),
		holidayRepo: repository.NewHolidayRepository(db),
		jobRepo:     repository.NewReportJobRepository(db),
		queue:       &fakeQueue{},
		events:      &fakeEvents{},
	}

	e.gate = NewCutoffGate(ist, 22, 30)
	e.calendar = NewCalendarService(e.holidayRepo, map[time.Weekday]bool{time.Saturday: true, time.Sunday: true}, ist)
	e.quota = NewQuotaService(e.voteRepo)
	e.validator = NewPlanValidator()
	e.engine = NewCommitmentService(e.userRepo, e.subRepo, e.menuRepo, repository.NewTxRunner(db),
		e.calendar, e.gate, e.validator, e.quota)
	e.engine.SetEvents(e.events)
	e.summary = NewSummaryService(e.voteRepo, e.gate)
	e.customers = NewCustomerService(e.userRepo, e.subRepo, e.voteRepo, e.menuRepo, e.quota, e.gate, e.calendar)
	e.subs = NewSubscriptionService(e.subRepo, e.userRepo, repository.NewTxRunner(db), e.quota, e.gate, config.CanteenConfig{
		ValidityDays:      25,
		DefaultTotalMeals: 20,
	})
	e.menus = NewMenuService(e.menuRepo, e.gate)
	e.holidays = NewHolidayService(e.holidayRepo, e.gate)
	e.reports = NewReportService(e.jobRepo, e.queue, e.gate, e.calendar)
	return e
}

type fakeQueue struct {
	mu   sync.Mutex
	msgs []*queue.ReportMessage
	err  error
}

func (q *fakeQueue) Push(_ context.Context, msg *queue.ReportMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.msgs = append(q.msgs, msg)
	return nil
}

type publishedVote struct {
	date    string
	userID  int64
	willEat bool
	choice  string
}

type fakeEvents struct {
	mu    sync.Mutex
	votes []publishedVote
}

func (f *fakeEvents) PublishVote(_ context.Context, date string, userID int64, willEat bool, choice string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.votes = append(f.votes, publishedVote{date, userID, willEat, choice})
	return nil
}

func (f *fakeEvents) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.votes)
}

func boolPtr(b bool) *bool { return &b }
