package observability

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"policylens/services/chat-api/internal/config"
)

const tracerName = "policylens/chat-api"

// Setup initializes the tracer provider when tracing is enabled and
// returns a shutdown function. With tracing disabled it is a no-op.
func Setup(ctx context.Context, cfg *config.Config, log zerolog.Logger) (func(context.Context) error, error) {
	if !cfg.EnableTracing {
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithInsecure()}
	if cfg.OTLPEndpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.OTLPEndpoint))
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, err
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

	log.Info().Str("endpoint", cfg.OTLPEndpoint).Msg("tracing enabled")
	return tp.Shutdown, nil
}

// GetTracer returns the tracer for the chat-api service.
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartConversationSpan starts a span for a conversation operation.
func StartConversationSpan(ctx context.Context, operation, conversationID string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "conversation."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("conversation.id", conversationID),
		),
	)
}

// StartIngestSpan starts a span for a background ingest task.
func StartIngestSpan(ctx context.Context, taskID, conversationID string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "ingest.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("task.id", taskID),
			attribute.String("conversation.id", conversationID),
		),
	)
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
