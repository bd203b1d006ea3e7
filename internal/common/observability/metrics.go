package observability

import (
	"context"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"formbricks-seeder/internal/common/logger"
)

type Observability struct {
	meterProvider      *metric.MeterProvider
	meter              otelmetric.Meter
	surveyCounter      otelmetric.Int64Counter
	generationDuration otelmetric.Float64Histogram
}

// New wires an OpenTelemetry meter provider whose readings are exported into
// reg, so they end up in the same textfile as the plain Prometheus counters.
// Instrument names use underscores and target_info is omitted so every family
// stays valid for textfile collectors. On failure it logs and returns a no-op
// instance.
func New(serviceName string, reg promclient.Registerer, log logger.Logger) *Observability {
	exporter, err := prometheus.New(prometheus.WithRegisterer(reg), prometheus.WithoutTargetInfo())
	if err != nil {
		log.Warn("Failed to create Prometheus exporter", map[string]interface{}{"error": err.Error()})
		return &Observability{}
	}

	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	provider := metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	surveyCounter, _ := meter.Int64Counter(
		"seeder_surveys_synthesized",
		otelmetric.WithDescription("Surveys synthesized by source"),
	)

	generationDuration, _ := meter.Float64Histogram(
		"seeder_llm_generation_duration",
		otelmetric.WithDescription("Time spent producing one survey document"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:      provider,
		meter:              meter,
		surveyCounter:      surveyCounter,
		generationDuration: generationDuration,
	}
}

// RecordSurvey counts one synthesized survey and how long it took.
func (o *Observability) RecordSurvey(ctx context.Context, archetype, source string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("archetype", archetype),
		attribute.String("source", source),
	)
	if o.surveyCounter != nil {
		o.surveyCounter.Add(ctx, 1, attrs)
	}
	if o.generationDuration != nil {
		o.generationDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.meterProvider.Shutdown(ctx)
	}
}
