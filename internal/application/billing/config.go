package billing

// Config carries the billing policy knobs shared by the bill service and
// the auto-billing scheduler
type Config struct {
	// DueInDays is the payment window granted on newly issued bills
	DueInDays int
	// GraceDays is the extension a reopened overdue bill receives
	GraceDays int
	// MinStayDays is the threshold below which the shared service fee is waived
	MinStayDays int
	// ReminderWindowDays is how many days ahead the reminder scan looks
	ReminderWindowDays int
}

// DefaultConfig returns the standard billing policy
func DefaultConfig() Config {
	return Config{
		DueInDays:          10,
		GraceDays:          5,
		MinStayDays:        20,
		ReminderWindowDays: 2,
	}
}
