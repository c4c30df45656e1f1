package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerProvider_Disabled(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), Config{Enabled: false}, zap.NewNop())

	require.NoError(t, err)
	require.NotNil(t, lp)
	assert.Equal(t, zapcore.NewNopCore(), lp.ZapCore("tenancy-billing"))
	assert.NoError(t, lp.Shutdown(context.Background()))
}

func TestNewLoggerProvider_Enabled(t *testing.T) {
	cfg := Config{
		Enabled:           true,
		CollectorEndpoint: "localhost:4317",
		ServiceName:       "tenancy-billing-test",
		Insecure:          true,
	}

	lp, err := NewLoggerProvider(context.Background(), cfg, zap.NewNop())

	require.NoError(t, err)
	require.NotNil(t, lp.sdk)

	core := lp.ZapCore("tenancy-billing-test")
	require.NotNil(t, core)
	assert.NotEqual(t, zapcore.NewNopCore(), core)

	assert.NoError(t, lp.Shutdown(context.Background()))
}
