// Package scheduler drives the periodic billing passes. A single trigger
// fires once per calendar day at the configured hour and runs the overdue
// scan, the auto-billing cycle, and the reminder scan in that order.
package scheduler

import (
	"context"
	"sync"
	"time"

	appbilling "github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/application/billing"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// BillingJobs is the set of daily passes the trigger runs. The application
// services implement it directly.
type BillingJobs interface {
	RunOverdueScan(ctx context.Context) (int, error)
	RunAutoBillingCycle(ctx context.Context) (appbilling.CycleReport, error)
	RunReminderScan(ctx context.Context) (appbilling.ReminderReport, error)
}

// Config holds the daily trigger configuration
type Config struct {
	// TriggerHour is the local hour (0-23) after which the daily run fires
	TriggerHour int
	// PollInterval is how often the loop checks whether the run is due
	PollInterval time.Duration
	// JobTimeout bounds one complete daily run
	JobTimeout time.Duration
}

// DefaultConfig returns the default trigger configuration
func DefaultConfig() Config {
	return Config{
		TriggerHour:  1,
		PollInterval: time.Minute,
		JobTimeout:   10 * time.Minute,
	}
}

// DailyTrigger runs the billing passes once per calendar day. The check is
// "has today's run happened yet, and is it past the trigger hour" rather
// than an exact-time match, so a process that was down at the trigger hour
// catches up as soon as it is back.
type DailyTrigger struct {
	config  Config
	jobs    BillingJobs
	clock   shared.Clock
	logger  *zap.Logger
	metrics *telemetry.BillingMetrics

	cancel     context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.Mutex
	isRunning  bool
	lastRunDay string
}

// NewDailyTrigger creates a new daily trigger
func NewDailyTrigger(config Config, jobs BillingJobs, clock shared.Clock, logger *zap.Logger) *DailyTrigger {
	if config.PollInterval <= 0 {
		config.PollInterval = time.Minute
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = 10 * time.Minute
	}
	return &DailyTrigger{
		config: config,
		jobs:   jobs,
		clock:  clock,
		logger: logger,
	}
}

// WithMetrics attaches the billing counters recorded after each pass.
func (t *DailyTrigger) WithMetrics(m *telemetry.BillingMetrics) *DailyTrigger {
	t.metrics = m
	return t
}

// Start starts the trigger loop
func (t *DailyTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Daily billing trigger started",
		zap.Int("trigger_hour", t.config.TriggerHour),
		zap.Duration("poll_interval", t.config.PollInterval),
	)
	return nil
}

// Stop stops the trigger loop, waiting for an in-flight run to finish
func (t *DailyTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Daily billing trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *DailyTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.checkAndRun(ctx)
		}
	}
}

// checkAndRun fires today's run when it is due and has not happened yet
func (t *DailyTrigger) checkAndRun(ctx context.Context) {
	now := t.clock.Now()
	today := now.Format("2006-01-02")

	t.mu.Lock()
	alreadyRan := t.lastRunDay == today
	t.mu.Unlock()

	if alreadyRan || now.Hour() < t.config.TriggerHour {
		return
	}

	t.mu.Lock()
	t.lastRunDay = today
	t.mu.Unlock()

	t.RunOnce(ctx)
}

// RunOnce executes one complete daily run: overdue scan, then auto-billing,
// then reminders. Failures in one pass are logged and do not stop the next;
// each pass already isolates per-item failures internally.
func (t *DailyTrigger) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, t.config.JobTimeout)
	defer cancel()

	started := t.clock.Now()
	t.logger.Info("Daily billing run started")

	transitioned, err := t.jobs.RunOverdueScan(ctx)
	if err != nil {
		t.logger.Error("Overdue scan failed", zap.Error(err))
	} else {
		t.logger.Info("Overdue scan finished", zap.Int("transitioned", transitioned))
		if t.metrics != nil {
			t.metrics.RecordOverdueScan(ctx, transitioned)
		}
	}

	cycle, err := t.jobs.RunAutoBillingCycle(ctx)
	if err != nil {
		t.logger.Error("Auto-billing cycle failed", zap.Error(err))
	} else {
		t.logger.Info("Auto-billing cycle finished",
			zap.Int("rent_created", cycle.RentCreated),
			zap.Int("rent_skipped", cycle.RentSkipped),
			zap.Int("rent_failed", cycle.RentFailed),
			zap.Int("utility_created", cycle.UtilityCreated),
			zap.Int("utility_skipped", cycle.UtilitySkipped),
			zap.Int("utility_failed", cycle.UtilityFailed),
		)
		if t.metrics != nil {
			t.metrics.RecordRentPass(ctx, cycle.RentCreated, cycle.RentSkipped, cycle.RentFailed)
			t.metrics.RecordUtilityPass(ctx, cycle.UtilityCreated, cycle.UtilitySkipped, cycle.UtilityFailed)
		}
	}

	reminders, err := t.jobs.RunReminderScan(ctx)
	if err != nil {
		t.logger.Error("Reminder scan failed", zap.Error(err))
	} else {
		t.logger.Info("Reminder scan finished",
			zap.Int("notified", reminders.Notified),
			zap.Int("failed", reminders.Failed),
		)
		if t.metrics != nil {
			t.metrics.RecordReminderScan(ctx, reminders.Notified, reminders.Failed)
		}
	}

	t.logger.Info("Daily billing run finished",
		zap.Duration("elapsed", t.clock.Now().Sub(started)))
}
