package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

const metricExportInterval = 60 * time.Second

// MeterProvider owns the OTLP metric pipeline. Disabled config leaves the
// global no-op meter provider in place.
type MeterProvider struct {
	sdk *sdkmetric.MeterProvider
}

// NewMeterProvider builds an OTLP/gRPC-exporting meter provider and
// installs it globally.
func NewMeterProvider(ctx context.Context, cfg Config, log *zap.Logger) (*MeterProvider, error) {
	if !cfg.Enabled {
		log.Info("metrics disabled")
		return &MeterProvider{}, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create OTLP metric exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build metric resource: %w", err)
	}

	sdk := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(
			exporter,
			sdkmetric.WithInterval(metricExportInterval),
		)),
	)
	otel.SetMeterProvider(sdk)

	log.Info("metrics initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.String("service_name", cfg.ServiceName),
	)
	return &MeterProvider{sdk: sdk}, nil
}

// Shutdown flushes pending metrics and releases the exporter.
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.sdk == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := mp.sdk.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown meter provider: %w", err)
	}
	return nil
}

// attrPass distinguishes the rent and utility passes on shared counters.
var attrPass = attribute.Key("pass")

// BillingMetrics carries the counters the daily billing run reports:
// bills created, skipped and failed per pass, overdue transitions and
// reminder deliveries.
type BillingMetrics struct {
	billsCreated  metric.Int64Counter
	billsSkipped  metric.Int64Counter
	billsFailed   metric.Int64Counter
	overdueMarked metric.Int64Counter
	remindersSent metric.Int64Counter
	remindersLost metric.Int64Counter
}

// NewBillingMetrics registers the billing counters on the global meter.
// Call it after NewMeterProvider; with metrics disabled the counters are
// no-ops.
func NewBillingMetrics() (*BillingMetrics, error) {
	meter := otel.Meter("billing")

	var (
		m   BillingMetrics
		err error
	)
	if m.billsCreated, err = meter.Int64Counter("billing.bills_created",
		metric.WithDescription("Bills created by the auto-billing cycle"),
		metric.WithUnit("{bill}")); err != nil {
		return nil, fmt.Errorf("create bills_created counter: %w", err)
	}
	if m.billsSkipped, err = meter.Int64Counter("billing.bills_skipped",
		metric.WithDescription("Contracts and rooms skipped by the auto-billing cycle"),
		metric.WithUnit("{bill}")); err != nil {
		return nil, fmt.Errorf("create bills_skipped counter: %w", err)
	}
	if m.billsFailed, err = meter.Int64Counter("billing.bills_failed",
		metric.WithDescription("Auto-billing failures needing an operator"),
		metric.WithUnit("{bill}")); err != nil {
		return nil, fmt.Errorf("create bills_failed counter: %w", err)
	}
	if m.overdueMarked, err = meter.Int64Counter("billing.overdue_transitioned",
		metric.WithDescription("Issued bills transitioned to overdue"),
		metric.WithUnit("{bill}")); err != nil {
		return nil, fmt.Errorf("create overdue_transitioned counter: %w", err)
	}
	if m.remindersSent, err = meter.Int64Counter("billing.reminders_sent",
		metric.WithDescription("Due-soon reminders delivered"),
		metric.WithUnit("{reminder}")); err != nil {
		return nil, fmt.Errorf("create reminders_sent counter: %w", err)
	}
	if m.remindersLost, err = meter.Int64Counter("billing.reminders_failed",
		metric.WithDescription("Due-soon reminders that failed to deliver"),
		metric.WithUnit("{reminder}")); err != nil {
		return nil, fmt.Errorf("create reminders_failed counter: %w", err)
	}
	return &m, nil
}

// RecordRentPass records one rent pass outcome.
func (m *BillingMetrics) RecordRentPass(ctx context.Context, created, skipped, failed int) {
	m.recordPass(ctx, "rent", created, skipped, failed)
}

// RecordUtilityPass records one utility pass outcome.
func (m *BillingMetrics) RecordUtilityPass(ctx context.Context, created, skipped, failed int) {
	m.recordPass(ctx, "utility", created, skipped, failed)
}

func (m *BillingMetrics) recordPass(ctx context.Context, pass string, created, skipped, failed int) {
	attrs := metric.WithAttributes(attrPass.String(pass))
	m.billsCreated.Add(ctx, int64(created), attrs)
	m.billsSkipped.Add(ctx, int64(skipped), attrs)
	m.billsFailed.Add(ctx, int64(failed), attrs)
}

// RecordOverdueScan records one overdue scan outcome.
func (m *BillingMetrics) RecordOverdueScan(ctx context.Context, transitioned int) {
	m.overdueMarked.Add(ctx, int64(transitioned))
}

// RecordReminderScan records one reminder scan outcome.
func (m *BillingMetrics) RecordReminderScan(ctx context.Context, notified, failed int) {
	m.remindersSent.Add(ctx, int64(notified))
	m.remindersLost.Add(ctx, int64(failed))
}
