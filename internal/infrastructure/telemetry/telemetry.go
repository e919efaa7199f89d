// Package telemetry configura el TracerProvider de OpenTelemetry con exportador OTLP/gRPC.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/jhoicas/techfix-api/pkg/config"
	"github.com/jhoicas/techfix-api/pkg/logger"
)

// Shutdown vacía y cierra el exportador.
type Shutdown func(context.Context) error

func noop(context.Context) error { return nil }

// Setup registra el provider global. Sin endpoint las trazas quedan en el provider no-op de otel
// y la función devuelta no hace nada. Un error del exportador se loguea y no detiene la app.
func Setup(ctx context.Context, serviceName string, cfg config.TelemetryConfig, log *logger.Logger) Shutdown {
	if cfg.Endpoint == "" {
		return noop
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		log.Warn().Err(err).Str("endpoint", cfg.Endpoint).Msg("otel exporter")
		return noop
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		log.Warn().Err(err).Msg("otel resource")
	}

	provider := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	log.Info().Str("endpoint", cfg.Endpoint).Msg("trazas OTLP habilitadas")

	return provider.Shutdown
}
