package monitoring

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// TracerName names the tracer used by the application services
const TracerName = "github.com/alchemorsel/patisserie"

// TracingConfig holds tracing configuration
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// OTLP/HTTP collector endpoint, host:port
	Endpoint     string
	SamplingRate float64
	Enabled      bool
}

// TracingProvider wraps OpenTelemetry tracing functionality
type TracingProvider struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	logger   *zap.Logger
}

// NewTracingProvider creates a new tracing provider. When tracing is
// disabled the provider hands out no-op spans.
func NewTracingProvider(ctx context.Context, config TracingConfig, logger *zap.Logger) (*TracingProvider, error) {
	if !config.Enabled {
		logger.Info("Tracing is disabled")
		return &TracingProvider{
			tracer: noop.NewTracerProvider().Tracer(TracerName),
			logger: logger,
		}, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(config.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(config.ServiceName),
		semconv.ServiceVersion(config.ServiceVersion),
		attribute.String("deployment.environment", config.Environment),
	)

	return newTracingProvider(config, res, sdktrace.WithBatcher(exporter), logger), nil
}

// NewTracingProviderWithProcessor builds an enabled provider around a span
// processor, e.g. a tracetest.SpanRecorder
func NewTracingProviderWithProcessor(config TracingConfig, processor sdktrace.SpanProcessor, logger *zap.Logger) *TracingProvider {
	return newTracingProvider(config, resource.Empty(), sdktrace.WithSpanProcessor(processor), logger)
}

func newTracingProvider(config TracingConfig, res *resource.Resource, export sdktrace.TracerProviderOption, logger *zap.Logger) *TracingProvider {
	rate := config.SamplingRate
	if rate <= 0 {
		rate = 1
	}

	tp := sdktrace.NewTracerProvider(
		export,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("Tracing initialized",
		zap.String("service", config.ServiceName),
		zap.String("version", config.ServiceVersion),
		zap.String("environment", config.Environment),
		zap.String("endpoint", config.Endpoint),
		zap.Float64("sampling_rate", rate),
	)

	return &TracingProvider{
		tracer:   tp.Tracer(TracerName),
		provider: tp,
		logger:   logger,
	}
}

// Tracer returns the application tracer
func (t *TracingProvider) Tracer() trace.Tracer {
	return t.tracer
}

// Enabled reports whether spans are exported
func (t *TracingProvider) Enabled() bool {
	return t.provider != nil
}

// RecordError records an error on the span carried by ctx
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// TraceIDFromContext extracts the trace ID for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// Shutdown flushes pending spans
func (t *TracingProvider) Shutdown(ctx context.Context) error {
	if t.provider != nil {
		return t.provider.Shutdown(ctx)
	}
	return nil
}
