package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"autorefresh/internal/metrics"
	"autorefresh/internal/resource"
)

type staticLister []resource.Resource

func (l staticLister) Resources() []resource.Resource {
	return l
}

func TestMetricsRoute(t *testing.T) {
	registry := &metrics.Registry{}
	registry.RecordPollCycle(2)
	registry.SetMonitoring(true)
	handler := NewHandler(RouteOptions{Metrics: registry})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	body := rec.Body.String()
	if !strings.Contains(body, "autorefresh_poll_cycles_total 1") || !strings.Contains(body, "autorefresh_entries_polled_total 2") {
		t.Fatalf("unexpected metrics body: %s", body)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("expected security headers")
	}
}

func TestMetricsRouteRejectsPost(t *testing.T) {
	handler := NewHandler(RouteOptions{Metrics: &metrics.Registry{}})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if rec.Header().Get("Allow") != "GET, HEAD" {
		t.Fatalf("unexpected Allow header %q", rec.Header().Get("Allow"))
	}
}

func TestResourcesRoute(t *testing.T) {
	loadedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	lister := staticLister{
		{Name: "hero", Path: "/art/hero.png", Size: 4, Digest: "abcd", Revision: 2, LoadedAt: loadedAt},
		{Name: "broken", Path: "/art/broken.png", Err: errors.New("permission denied")},
	}
	handler := NewHandler(RouteOptions{Resources: lister})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/resources", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload []resourcePayload
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(payload))
	}
	if payload[0].Revision != 2 || payload[0].LoadedAt == nil || !payload[0].LoadedAt.Equal(loadedAt) {
		t.Fatalf("unexpected resource: %#v", payload[0])
	}
	if payload[1].Error != "permission denied" || payload[1].LoadedAt != nil {
		t.Fatalf("unexpected failed resource: %#v", payload[1])
	}
}

func TestResourcesRouteUnavailable(t *testing.T) {
	handler := NewHandler(RouteOptions{})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/resources", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
