package tracer

import (
	"context"
	"fmt"
	"time"

	"github.com/54ba/midostore-sub004/internal/platform/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const setupTimeout = 10 * time.Second

// InitTracer installs the global OTLP trace provider. Tracing is
// optional: callers always get a usable provider back, but with no
// endpoint configured, or when the exporter cannot be set up, it is a
// no-op and the service runs untraced.
func InitTracer(serviceName, otlpEndpoint string, appLogger *logger.Logger) *sdktrace.TracerProvider {
	if otlpEndpoint == "" {
		appLogger.Info("Tracing disabled, OTEL_EXPORTER_OTLP_ENDPOINT is not set")
		return sdktrace.NewTracerProvider()
	}

	exporter, err := newOTLPExporter(otlpEndpoint)
	if err != nil {
		appLogger.Error("Tracing falls back to a no-op provider",
			zap.String("endpoint", otlpEndpoint), zap.Error(err))
		return sdktrace.NewTracerProvider()
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		),
	)
	if err != nil {
		appLogger.Error("Tracing falls back to a no-op provider", zap.Error(err))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), setupTimeout)
		defer cancel()
		exporter.Shutdown(shutdownCtx)
		return sdktrace.NewTracerProvider()
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	appLogger.Info("OpenTelemetry tracer initialized",
		zap.String("service_name", serviceName),
		zap.String("otlp_endpoint", otlpEndpoint))
	return tp
}

func newOTLPExporter(endpoint string) (*otlptrace.Exporter, error) {
	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	conn, err := grpc.DialContext(ctx, endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	if err != nil {
		return nil, fmt.Errorf("dial OTLP collector at %s: %w", endpoint, err)
	}
	return otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
}
