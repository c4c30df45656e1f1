// Package notification delivers due-date reminders to tenants. The only
// shipped transport writes structured log records; an SMS or email gateway
// plugs in behind the same interface.
package notification

import (
	"context"

	appbilling "github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/application/billing"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/billing"
	"go.uber.org/zap"
)

// LogNotifier emits reminders as structured log records
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

var _ appbilling.Notifier = (*LogNotifier)(nil)

// NotifyBillDueSoon logs one reminder for the bill
func (n *LogNotifier) NotifyBillDueSoon(ctx context.Context, bill *billing.Bill, daysLeft int) error {
	n.logger.Info("Bill due soon",
		zap.String("bill_id", bill.ID.String()),
		zap.String("bill_number", bill.BillNumber),
		zap.String("tenant_id", bill.TenantID.String()),
		zap.String("due_date", bill.DueDate.Format("2006-01-02")),
		zap.Int("days_left", daysLeft),
		zap.String("amount_due", bill.AmountDue().String()),
	)
	return nil
}
