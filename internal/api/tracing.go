package api

import (
	"context"
	"net/http"
	"strings"

	otelapi "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName          = "autorefresh/api"
	eventStreamSpanName = "events.stream"
)

// startStreamSpan opens a server span covering one websocket event stream.
// Without a configured provider the global tracer is a no-op.
func startStreamSpan(r *http.Request, route string) (context.Context, trace.Span) {
	ctx := context.Background()
	if r != nil {
		ctx = otelapi.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	}
	return otelapi.Tracer(tracerName).Start(ctx, eventStreamSpanName,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(streamSpanAttributes(r, route)...),
	)
}

func streamSpanAttributes(r *http.Request, route string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 4)
	if r != nil {
		attrs = append(attrs,
			attribute.String("http.method", r.Method),
			attribute.String("http.scheme", requestScheme(r)),
			attribute.String("user_agent", r.UserAgent()),
		)
	}
	if strings.TrimSpace(route) != "" {
		attrs = append(attrs, attribute.String("http.route", route))
	}
	return attrs
}

func requestScheme(r *http.Request) string {
	if r.URL != nil && r.URL.Scheme != "" {
		return r.URL.Scheme
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
