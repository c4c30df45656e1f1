package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateIn(t *testing.T) {
	hcm := time.FixedZone("UTC+7", 7*60*60)

	t.Run("UTC midnight stays on the same local date east of UTC", func(t *testing.T) {
		utcMidnight := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		assert.True(t, DateIn(utcMidnight, hcm).Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, hcm)))
	})

	t.Run("local midnight round-trips through its UTC instant", func(t *testing.T) {
		localMidnight := time.Date(2026, 1, 11, 0, 0, 0, 0, hcm)
		assert.True(t, DateIn(localMidnight.UTC(), hcm).Equal(localMidnight))
	})
}

func TestDaysBetween(t *testing.T) {
	hcm := time.FixedZone("UTC+7", 7*60*60)

	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{
			"same day",
			time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 1, 8, 23, 0, 0, 0, time.UTC),
			0,
		},
		{
			"a week apart",
			time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			7,
		},
		{
			"reversed order is negative",
			time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC),
			-7,
		},
		{
			"mixed locations count calendar days",
			time.Date(2026, 1, 8, 0, 0, 0, 0, hcm),
			time.Date(2026, 1, 10, 0, 0, 0, 0, hcm),
			2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysBetween(tt.a, tt.b))
		})
	}
}
