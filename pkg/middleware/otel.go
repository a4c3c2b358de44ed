package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/storekit-dev/storekit/pkg/storekit"
)

// Default tracer name for storekit dispatch spans.
const defaultTracerName = "storekit"

// OTelConfig configures the OpenTelemetry dispatch tracing.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "storekit").
	TracerName string

	// Filter determines which dispatches to trace.
	// Return true to trace the dispatch, false to skip.
	// If nil, all dispatches are traced.
	Filter func(act storekit.Action) bool

	// AttributeExtractor extracts custom attributes per dispatch.
	AttributeExtractor func(act storekit.Action) []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry tracing backend.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithDispatchFilter sets a filter function for dispatches.
func WithDispatchFilter(filter func(act storekit.Action) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(act storekit.Action) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// OpenTelemetry wraps a backend so every dispatch runs inside a span.
//
// The span carries the base action type, lifecycle phase, and raw type
// string. ERROR lifecycle dispatches set the span status to Error.
//
// The tracer uses the global OpenTelemetry tracer provider. Configure it
// in your main() before wiring stores:
//
//	tp := sdktrace.NewTracerProvider(
//	    sdktrace.WithBatcher(exporter),
//	)
//	otel.SetTracerProvider(tp)
//
//	backend = middleware.OpenTelemetry(backend,
//	    middleware.WithTracerName("my-app"),
//	)
func OpenTelemetry(next storekit.Backend, opts ...OTelOption) storekit.Backend {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	// Resolve tracer from global provider
	config.tracer = otel.Tracer(config.TracerName)

	return storekit.BackendFunc(func(act storekit.Action) {
		if config.Filter != nil && !config.Filter(act) {
			next.Dispatch(act)
			return
		}

		base, phase := storekit.SplitType(act.Type)
		attrs := []attribute.KeyValue{
			attribute.String("storekit.action", base),
			attribute.String("storekit.phase", phase.String()),
			attribute.String("storekit.type", act.Type),
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(act)...)
		}

		_, span := config.tracer.Start(context.Background(), "storekit.dispatch",
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		next.Dispatch(act)

		if phase == storekit.PhaseError {
			span.SetStatus(codes.Error, "action failed")
			if err, ok := act.Payload.(error); ok {
				span.RecordError(err)
			}
		} else {
			span.SetStatus(codes.Ok, "")
		}
	})
}
