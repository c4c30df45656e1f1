package valueobject

import (
	"fmt"
	"time"

	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared"
)

// DateRange is an immutable value object representing an inclusive range of
// calendar days. Billing periods are DateRanges: both endpoints are billed
// days, so a one-day period has Days() == 1.
type DateRange struct {
	start time.Time
	end   time.Time
}

// NewDateRange creates a DateRange from two calendar dates.
// Times of day are discarded; start must not be after end.
func NewDateRange(start, end time.Time) (DateRange, error) {
	s := shared.Midnight(start)
	e := shared.Midnight(end)
	if s.After(e) {
		return DateRange{}, shared.NewValidationError(
			"INVALID_PERIOD",
			fmt.Sprintf("period start %s is after end %s", s.Format(time.DateOnly), e.Format(time.DateOnly)),
		)
	}
	return DateRange{start: s, end: e}, nil
}

// MustDateRange is NewDateRange that panics on invalid input, for tests and
// constants known to be valid.
func MustDateRange(start, end time.Time) DateRange {
	r, err := NewDateRange(start, end)
	if err != nil {
		panic(err)
	}
	return r
}

// Start returns the first billed day
func (r DateRange) Start() time.Time { return r.start }

// End returns the last billed day
func (r DateRange) End() time.Time { return r.end }

// IsZero reports whether the range is the zero value
func (r DateRange) IsZero() bool { return r.start.IsZero() && r.end.IsZero() }

// Days returns the inclusive number of calendar days covered
func (r DateRange) Days() int {
	return int(r.end.Sub(r.start).Hours()/24) + 1
}

// Overlaps reports whether two inclusive ranges intersect:
// r.start <= other.end && r.end >= other.start
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.start.After(other.end) && !r.end.Before(other.start)
}

// Contains reports whether the given date falls inside the range
func (r DateRange) Contains(date time.Time) bool {
	d := shared.Midnight(date)
	return !d.Before(r.start) && !d.After(r.end)
}

// ClipStart returns a copy whose start is moved forward to date when date
// falls inside the range; the range is returned unchanged otherwise.
// Used to trim a billing period to a tenancy that began mid-period.
func (r DateRange) ClipStart(date time.Time) DateRange {
	d := shared.Midnight(date)
	if d.After(r.start) && !d.After(r.end) {
		return DateRange{start: d, end: r.end}
	}
	return r
}

// String formats the range as "2006-01-02..2006-01-02"
func (r DateRange) String() string {
	return r.start.Format(time.DateOnly) + ".." + r.end.Format(time.DateOnly)
}
