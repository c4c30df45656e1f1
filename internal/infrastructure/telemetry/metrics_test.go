package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), Config{Enabled: false}, zap.NewNop())

	require.NoError(t, err)
	require.NotNil(t, mp)
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestNewBillingMetrics(t *testing.T) {
	m, err := NewBillingMetrics()
	require.NoError(t, err)

	// counters ride the global meter provider; with none installed they
	// are no-ops and recording must still be safe
	ctx := context.Background()
	m.RecordRentPass(ctx, 3, 1, 0)
	m.RecordUtilityPass(ctx, 2, 4, 1)
	m.RecordOverdueScan(ctx, 5)
	m.RecordReminderScan(ctx, 7, 2)
}
