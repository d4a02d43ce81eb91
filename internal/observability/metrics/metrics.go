// Package metrics wires application counters through OpenTelemetry.
// When the exporter is disabled the noop provider keeps every call
// site unconditional.
package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	admissionsAccepted  metric.Int64Counter
	admissionsRejected  metric.Int64Counter
	staysClosed         metric.Int64Counter
	subscriptionsSold   metric.Int64Counter
	reservationsExpired metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "parkline"
	}
	meter := provider.Meter(name)

	admissionsAccepted, err := meter.Int64Counter("parkline_admissions_accepted_total")
	if err != nil {
		return nil, err
	}
	admissionsRejected, err := meter.Int64Counter("parkline_admissions_rejected_total")
	if err != nil {
		return nil, err
	}
	staysClosed, err := meter.Int64Counter("parkline_stays_closed_total")
	if err != nil {
		return nil, err
	}
	subscriptionsSold, err := meter.Int64Counter("parkline_subscriptions_sold_total")
	if err != nil {
		return nil, err
	}
	reservationsExpired, err := meter.Int64Counter("parkline_reservations_expired_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		admissionsAccepted:  admissionsAccepted,
		admissionsRejected:  admissionsRejected,
		staysClosed:         staysClosed,
		subscriptionsSold:   subscriptionsSold,
		reservationsExpired: reservationsExpired,
	}, nil
}

// RecordAdmissionAccepted increments accepted booking counts.
func (m *Metrics) RecordAdmissionAccepted(ctx context.Context, parkingID string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("parking_id", strings.TrimSpace(parkingID)))
	m.admissionsAccepted.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordAdmissionRejected increments rejected booking counts.
func (m *Metrics) RecordAdmissionRejected(ctx context.Context, parkingID, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("parking_id", strings.TrimSpace(parkingID)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.admissionsRejected.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordStayClosed increments closed stay counts, labeled by whether a
// penalty applied.
func (m *Metrics) RecordStayClosed(ctx context.Context, parkingID string, penalized bool) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("parking_id", strings.TrimSpace(parkingID)),
		attribute.Bool("penalized", penalized),
	)
	m.staysClosed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSubscriptionSold increments subscription purchase counts.
func (m *Metrics) RecordSubscriptionSold(ctx context.Context, parkingID string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("parking_id", strings.TrimSpace(parkingID)))
	m.subscriptionsSold.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordReservationsExpired adds the number of reservations swept to
// EXPIRED in one pass.
func (m *Metrics) RecordReservationsExpired(ctx context.Context, count int64) {
	if m == nil || count <= 0 {
		return
	}
	m.reservationsExpired.Add(ctx, count)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"parking_id": {},
	"reason":     {},
	"penalized":  {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
