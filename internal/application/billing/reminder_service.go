package billing

import (
	"context"
	"fmt"

	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/billing"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Notifier delivers a due-soon reminder to a tenant. Delivery is best
// effort: the scan records failures but never retries or blocks on them.
type Notifier interface {
	NotifyBillDueSoon(ctx context.Context, bill *billing.Bill, daysLeft int) error
}

// ReminderService scans issued bills approaching their due date and fires
// one notification per bill per run. It holds no delivery state; dedup
// across runs is the notifier's concern.
type ReminderService struct {
	bills    billing.BillRepository
	notifier Notifier
	clock    shared.Clock
	cfg      Config
	logger   *zap.Logger
}

// NewReminderService creates a ReminderService
func NewReminderService(bills billing.BillRepository, notifier Notifier, clock shared.Clock, cfg Config, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		bills:    bills,
		notifier: notifier,
		clock:    clock,
		cfg:      cfg,
		logger:   logger,
	}
}

// ReminderReport summarizes one reminder scan
type ReminderReport struct {
	Notified int `json:"notified"`
	Failed   int `json:"failed"`
}

// RunReminderScan notifies tenants whose issued bills fall due within the
// configured window, starting tomorrow. Bills due today or already overdue
// belong to the overdue scan, not here.
func (s *ReminderService) RunReminderScan(ctx context.Context) (ReminderReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reminder", "run_scan")
	defer span.End()

	today := s.clock.Today()
	from := today.AddDate(0, 0, 1)
	to := today.AddDate(0, 0, s.cfg.ReminderWindowDays)

	bills, err := s.bills.FindIssuedDueBetween(ctx, from, to)
	if err != nil {
		telemetry.RecordError(span, err)
		return ReminderReport{}, fmt.Errorf("failed to load bills due soon: %w", err)
	}

	var report ReminderReport
	for i := range bills {
		bill := &bills[i]
		daysLeft := shared.DaysBetween(today, bill.DueDate.In(today.Location()))
		if err := s.notifier.NotifyBillDueSoon(ctx, bill, daysLeft); err != nil {
			report.Failed++
			s.logger.Warn("reminder delivery failed",
				zap.String("bill_number", bill.BillNumber),
				zap.String("tenant_id", bill.TenantID.String()),
				zap.Error(err))
			continue
		}
		report.Notified++
	}

	telemetry.SetAttributes(span, "notified", report.Notified, "failed", report.Failed)
	s.logger.Info("reminder scan finished",
		zap.Int("notified", report.Notified),
		zap.Int("failed", report.Failed))
	return report, nil
}
