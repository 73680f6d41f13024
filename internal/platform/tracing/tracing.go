// Package tracing wires up the OpenTelemetry SDK shared by all three
// services and carries W3C tracecontext across the HTTP edge and outbound
// gRPC calls.
package tracing

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Config controls OTLP export via environment-driven settings.
type Config struct {
	Enabled       bool
	ServiceName   string
	Environment   string
	CollectorAddr string
	SamplingRatio float64
}

// ConfigFromEnv builds a Config from OTEL_* environment variables, falling
// back to sensible development defaults when unset.
func ConfigFromEnv(serviceName, collectorAddr string) Config {
	cfg := Config{
		Enabled:       true,
		ServiceName:   serviceName,
		Environment:   "development",
		CollectorAddr: collectorAddr,
		SamplingRatio: 1.0,
	}
	if v := os.Getenv("OTEL_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Enabled = b
		}
	}
	if v := os.Getenv("OTEL_SERVICE_NAME"); v != "" {
		cfg.ServiceName = v
	}
	if v := os.Getenv("OTEL_ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.CollectorAddr = v
	}
	if v := os.Getenv("OTEL_SAMPLING_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.SamplingRatio = f
		}
	}
	return cfg
}

// Shutdown flushes and stops the installed tracer provider.
type Shutdown func(context.Context) error

// Init installs a global TracerProvider exporting spans over OTLP/HTTP, and
// a composite W3C tracecontext + baggage propagator. When cfg.Enabled is
// false it installs a no-op provider so callers never need a nil check.
func Init(ctx context.Context, cfg Config) (Shutdown, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !cfg.Enabled {
		otel.SetTracerProvider(trace.NewNoopTracerProvider())
		return func(context.Context) error { return nil }, nil
	}

	exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(cfg.CollectorAddr), otlptracehttp.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("building otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
		resource.WithFromEnv(),
		resource.WithProcess(),
	)
	if err != nil {
		return nil, fmt.Errorf("building otel resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplingRatio))),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// TraceIDFromContext returns the hex-encoded trace id of the span in ctx, or
// "" if ctx carries no valid span context. Used for the traceId log field
// required by the error-handling policy.
func TraceIDFromContext(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// InjectHTTP writes the current trace context into outbound HTTP headers.
func InjectHTTP(ctx context.Context, header propagation.TextMapCarrier) {
	otel.GetTextMapPropagator().Inject(ctx, header)
}

// ExtractHTTP reads trace context out of inbound HTTP headers, returning a
// context a server span should be started as a child of.
func ExtractHTTP(ctx context.Context, header propagation.TextMapCarrier) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, header)
}

// grpcMetadataCarrier adapts a string-keyed map to propagation.TextMapCarrier
// so gRPC metadata.MD (itself map[string][]string) round-trips through the
// same propagator used for HTTP, keeping injection/extraction logic in one
// place for both the HTTP edge and the gRPC fan-out.
type grpcMetadataCarrier map[string][]string

func (c grpcMetadataCarrier) Get(key string) string {
	vals := c[key]
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func (c grpcMetadataCarrier) Set(key, value string) {
	c[key] = []string{value}
}

func (c grpcMetadataCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

// InjectGRPCMetadata writes the current trace context into outbound gRPC
// metadata, represented as the same map[string][]string shape
// google.golang.org/grpc/metadata.MD uses.
func InjectGRPCMetadata(ctx context.Context, md map[string][]string) {
	otel.GetTextMapPropagator().Inject(ctx, grpcMetadataCarrier(md))
}

// ExtractGRPCMetadata reads trace context out of inbound gRPC metadata.
func ExtractGRPCMetadata(ctx context.Context, md map[string][]string) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, grpcMetadataCarrier(md))
}
