package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	appbilling "github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/application/billing"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubJobs struct {
	mu          sync.Mutex
	overdueRuns int
	cycleRuns   int
	reminders   int
	overdueErr  error
}

func (s *stubJobs) RunOverdueScan(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overdueRuns++
	return 2, s.overdueErr
}

func (s *stubJobs) RunAutoBillingCycle(ctx context.Context) (appbilling.CycleReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycleRuns++
	return appbilling.CycleReport{RentCreated: 1}, nil
}

func (s *stubJobs) RunReminderScan(ctx context.Context) (appbilling.ReminderReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminders++
	return appbilling.ReminderReport{Notified: 1}, nil
}

func (s *stubJobs) counts() (int, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overdueRuns, s.cycleRuns, s.reminders
}

func at(hour int) shared.FixedClock {
	return shared.FixedClock{Instant: time.Date(2026, 3, 25, hour, 30, 0, 0, time.UTC)}
}

func newTrigger(jobs BillingJobs, clock shared.Clock) *DailyTrigger {
	cfg := DefaultConfig()
	cfg.TriggerHour = 1
	return NewDailyTrigger(cfg, jobs, clock, zap.NewNop())
}

func TestDailyTrigger_RunOnce_RunsAllPasses(t *testing.T) {
	jobs := &stubJobs{}
	trigger := newTrigger(jobs, at(2))

	trigger.RunOnce(context.Background())

	overdue, cycle, reminders := jobs.counts()
	assert.Equal(t, 1, overdue)
	assert.Equal(t, 1, cycle)
	assert.Equal(t, 1, reminders)
}

func TestDailyTrigger_RunOnce_WithMetrics(t *testing.T) {
	jobs := &stubJobs{}
	metrics, err := telemetry.NewBillingMetrics()
	require.NoError(t, err)
	trigger := newTrigger(jobs, at(2)).WithMetrics(metrics)

	trigger.RunOnce(context.Background())

	overdue, cycle, reminders := jobs.counts()
	assert.Equal(t, 1, overdue)
	assert.Equal(t, 1, cycle)
	assert.Equal(t, 1, reminders)
}

func TestDailyTrigger_RunOnce_PassFailureDoesNotStopTheRest(t *testing.T) {
	jobs := &stubJobs{overdueErr: errors.New("db down")}
	trigger := newTrigger(jobs, at(2))

	trigger.RunOnce(context.Background())

	_, cycle, reminders := jobs.counts()
	assert.Equal(t, 1, cycle)
	assert.Equal(t, 1, reminders)
}

func TestDailyTrigger_CheckAndRun(t *testing.T) {
	t.Run("does not fire before the trigger hour", func(t *testing.T) {
		jobs := &stubJobs{}
		trigger := newTrigger(jobs, at(0))

		trigger.checkAndRun(context.Background())

		overdue, _, _ := jobs.counts()
		assert.Equal(t, 0, overdue)
	})

	t.Run("fires after the trigger hour, even when it was missed exactly", func(t *testing.T) {
		jobs := &stubJobs{}
		trigger := newTrigger(jobs, at(9))

		trigger.checkAndRun(context.Background())

		overdue, _, _ := jobs.counts()
		assert.Equal(t, 1, overdue)
	})

	t.Run("runs at most once per calendar day", func(t *testing.T) {
		jobs := &stubJobs{}
		trigger := newTrigger(jobs, at(2))

		trigger.checkAndRun(context.Background())
		trigger.checkAndRun(context.Background())

		overdue, _, _ := jobs.counts()
		assert.Equal(t, 1, overdue)
	})

	t.Run("a new day resets the once-per-day latch", func(t *testing.T) {
		jobs := &stubJobs{}
		trigger := newTrigger(jobs, at(2))

		trigger.checkAndRun(context.Background())
		trigger.clock = shared.FixedClock{Instant: time.Date(2026, 3, 26, 2, 30, 0, 0, time.UTC)}
		trigger.checkAndRun(context.Background())

		overdue, _, _ := jobs.counts()
		assert.Equal(t, 2, overdue)
	})
}

func TestDailyTrigger_StartStop(t *testing.T) {
	jobs := &stubJobs{}
	cfg := DefaultConfig()
	cfg.PollInterval = 5 * time.Millisecond
	cfg.TriggerHour = 23 // never fires during the test
	trigger := NewDailyTrigger(cfg, jobs, at(2), zap.NewNop())

	assert.NoError(t, trigger.Start(context.Background()))
	assert.NoError(t, trigger.Start(context.Background())) // idempotent

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, trigger.Stop(stopCtx))
	assert.NoError(t, trigger.Stop(stopCtx)) // idempotent
}
