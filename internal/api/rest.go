package api

import (
	"bytes"
	"net/http"
	"time"

	"autorefresh/internal/logging"
	"autorefresh/internal/metrics"
	"autorefresh/internal/resource"
)

// ResourceLister reports the host's loaded resources.
type ResourceLister interface {
	Resources() []resource.Resource
}

type resourcePayload struct {
	Name     string     `json:"name"`
	Path     string     `json:"path,omitempty"`
	Size     int64      `json:"size"`
	Digest   string     `json:"digest,omitempty"`
	Revision int        `json:"revision"`
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
	Error    string     `json:"error,omitempty"`
}

type RestHandler struct {
	Resources ResourceLister
	Metrics   *metrics.Registry
	Logger    *logging.Logger
}

func (h *RestHandler) handleResources(w http.ResponseWriter, r *http.Request) {
	if h.Resources == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "resources unavailable"})
		return
	}
	resources := h.Resources.Resources()
	payload := make([]resourcePayload, 0, len(resources))
	for _, item := range resources {
		entry := resourcePayload{
			Name:     item.Name,
			Path:     item.Path,
			Size:     item.Size,
			Digest:   item.Digest,
			Revision: item.Revision,
		}
		if !item.LoadedAt.IsZero() {
			loadedAt := item.LoadedAt.UTC()
			entry.LoadedAt = &loadedAt
		}
		if item.Err != nil {
			entry.Error = item.Err.Error()
		}
		payload = append(payload, entry)
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *RestHandler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	registry := h.Metrics
	if registry == nil {
		registry = metrics.Default
	}
	var body bytes.Buffer
	if err := registry.WritePrometheus(&body); err != nil {
		if h.Logger != nil {
			h.Logger.Warn("metrics render failed", map[string]string{logging.FieldError: err.Error()})
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "metrics unavailable"})
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body.Bytes())
}
