package shared

import "time"

// Clock abstracts "now" so that every date comparison in the billing engine
// derives from a single injectable source. All passes (auto-billing, overdue
// scan, reminders) work in calendar days of the configured deployment
// timezone, never UTC day boundaries.
type Clock interface {
	Now() time.Time
	// Today returns the current calendar date at local midnight.
	Today() time.Time
}

// SystemClock is the production Clock, pinned to a fixed timezone
type SystemClock struct {
	loc *time.Location
}

// NewSystemClock creates a SystemClock for the given IANA timezone name.
// An empty or invalid name falls back to the server's local timezone.
func NewSystemClock(timezone string) SystemClock {
	loc, err := time.LoadLocation(timezone)
	if err != nil || timezone == "" {
		loc = time.Local
	}
	return SystemClock{loc: loc}
}

// Now returns the current time in the clock's timezone
func (c SystemClock) Now() time.Time {
	return time.Now().In(c.location())
}

// Today returns the current calendar date at midnight in the clock's timezone
func (c SystemClock) Today() time.Time {
	return Midnight(c.Now())
}

func (c SystemClock) location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// FixedClock is a Clock frozen at a single instant, for deterministic tests
type FixedClock struct {
	Instant time.Time
}

// Now returns the frozen instant
func (c FixedClock) Now() time.Time { return c.Instant }

// Today returns the frozen instant's calendar date at midnight
func (c FixedClock) Today() time.Time { return Midnight(c.Instant) }

// Midnight truncates t to its calendar date, keeping the location
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DateIn returns t's calendar date at midnight in loc. Persisted dates come
// back from the database as UTC instants while the clock's today is a local
// midnight; re-reading every date in the deployment timezone before a day
// comparison keeps the whole engine on one calendar.
func DateIn(t time.Time, loc *time.Location) time.Time {
	return Midnight(t.In(loc))
}

// DaysBetween returns the number of whole calendar days from a's date to
// b's date, ignoring times of day and any DST shift in between.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	au := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	bu := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}
