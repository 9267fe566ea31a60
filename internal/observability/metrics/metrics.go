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
	generationRuns  metric.Int64Counter
	providerTiers   metric.Int64Counter
	cacheLookups    metric.Int64Counter
	webhookEvents   metric.Int64Counter
	rateLimitDenied metric.Int64Counter
	leadsGenerated  metric.Int64Counter
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

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "evolead"
	}
	meter := provider.Meter(name)

	generationRuns, err := meter.Int64Counter("evolead_generation_runs_total")
	if err != nil {
		return nil, err
	}
	providerTiers, err := meter.Int64Counter("evolead_provider_tier_total")
	if err != nil {
		return nil, err
	}
	cacheLookups, err := meter.Int64Counter("evolead_cache_lookups_total")
	if err != nil {
		return nil, err
	}
	webhookEvents, err := meter.Int64Counter("evolead_webhook_events_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("evolead_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}
	leadsGenerated, err := meter.Int64Counter("evolead_leads_generated_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		generationRuns:  generationRuns,
		providerTiers:   providerTiers,
		cacheLookups:    cacheLookups,
		webhookEvents:   webhookEvents,
		rateLimitDenied: rateLimitDenied,
		leadsGenerated:  leadsGenerated,
	}, nil
}

// RecordGenerationRun counts pipeline runs by outcome.
func (m *Metrics) RecordGenerationRun(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.generationRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordProviderTier counts which fallback tier produced results.
func (m *Metrics) RecordProviderTier(ctx context.Context, tier string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("tier", strings.TrimSpace(tier)))
	m.providerTiers.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCacheLookup counts cache hits and misses.
func (m *Metrics) RecordCacheLookup(ctx context.Context, result string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("result", strings.TrimSpace(result)))
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordWebhookEvent counts inbound webhook dispatches by status.
func (m *Metrics) RecordWebhookEvent(ctx context.Context, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("status", strings.TrimSpace(status)))
	m.webhookEvents.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitDenied counts rate limit rejections.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordLeadsGenerated counts persisted leads.
func (m *Metrics) RecordLeadsGenerated(ctx context.Context, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.leadsGenerated.Add(ctx, int64(count))
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
	"outcome":     {},
	"tier":        {},
	"result":      {},
	"status":      {},
	"endpoint":    {},
	"reason":      {},
	"status_code": {},
	"method":      {},
	"route":       {},
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
