package api

import (
	"net/http"

	"autorefresh/internal/event"
	"autorefresh/internal/logging"
	"autorefresh/internal/metrics"
)

type RouteOptions struct {
	Bus            *event.Bus[event.WatchEvent]
	Resources      ResourceLister
	Metrics        *metrics.Registry
	Logger         *logging.Logger
	AllowedOrigins []string
}

func RegisterRoutes(mux *http.ServeMux, options RouteOptions) {
	rest := &RestHandler{
		Resources: options.Resources,
		Metrics:   options.Metrics,
		Logger:    options.Logger,
	}
	mux.Handle("/events", &EventsHandler{
		Bus:            options.Bus,
		Logger:         options.Logger,
		AllowedOrigins: options.AllowedOrigins,
	})
	mux.Handle("/metrics", securityHeadersMiddleware(cacheControlNoStore, getOnly(rest.handleMetrics)))
	mux.Handle("/api/resources", securityHeadersMiddleware(cacheControlNoStore, getOnly(rest.handleResources)))
}

// NewHandler returns the routed handler wrapped in request logging.
func NewHandler(options RouteOptions) http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, options)
	return loggingMiddleware(options.Logger, mux)
}
