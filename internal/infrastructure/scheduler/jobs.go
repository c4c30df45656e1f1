package scheduler

import (
	"context"

	appbilling "github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/application/billing"
)

// Jobs bundles the three application services behind the BillingJobs
// interface for the daily trigger.
type Jobs struct {
	Bills       *appbilling.BillService
	AutoBilling *appbilling.AutoBillingService
	Reminders   *appbilling.ReminderService
}

// RunOverdueScan transitions issued bills past their due date to overdue
func (j Jobs) RunOverdueScan(ctx context.Context) (int, error) {
	return j.Bills.RunOverdueScan(ctx)
}

// RunAutoBillingCycle runs the anniversary rent pass and the utility pass
func (j Jobs) RunAutoBillingCycle(ctx context.Context) (appbilling.CycleReport, error) {
	return j.AutoBilling.RunAutoBillingCycle(ctx)
}

// RunReminderScan notifies tenants of bills approaching their due date
func (j Jobs) RunReminderScan(ctx context.Context) (appbilling.ReminderReport, error) {
	return j.Reminders.RunReminderScan(ctx)
}

var _ BillingJobs = Jobs{}
