package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"autorefresh/internal/event"
	"autorefresh/internal/logging"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// EventsHandler streams watch events to websocket clients. Clients receive
// every event type until they send {"subscribe": [...]} to narrow the set.
type EventsHandler struct {
	Bus            *event.Bus[event.WatchEvent]
	Logger         *logging.Logger
	AllowedOrigins []string
}

type eventSubscribeMessage struct {
	Subscribe []string `json:"subscribe"`
}

var streamedEventTypes = map[string]struct{}{
	event.TypeResourceReloaded:     {},
	event.TypeResourceReloadFailed: {},
	event.TypeMonitorEnabled:       {},
	event.TypeMonitorDisabled:      {},
	event.TypeFileMissing:          {},
	event.TypeEditorLaunched:       {},
}

type eventFilter struct {
	mutex sync.RWMutex
	types map[string]struct{}
}

func newEventFilter(allowed map[string]struct{}) *eventFilter {
	types := make(map[string]struct{}, len(allowed))
	for eventType := range allowed {
		types[eventType] = struct{}{}
	}
	return &eventFilter{types: types}
}

func (filter *eventFilter) Allows(eventType string) bool {
	if filter == nil {
		return true
	}
	filter.mutex.RLock()
	defer filter.mutex.RUnlock()
	_, ok := filter.types[eventType]
	return ok
}

func (filter *eventFilter) Set(subscriptions []string, allowed map[string]struct{}) {
	if filter == nil {
		return
	}
	types := make(map[string]struct{})
	for _, eventType := range subscriptions {
		if _, ok := allowed[eventType]; ok {
			types[eventType] = struct{}{}
		}
	}
	filter.mutex.Lock()
	filter.types = types
	filter.mutex.Unlock()
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, span := startStreamSpan(r, "/events")
	defer span.End()

	conn, err := upgradeWebSocket(w, r, h.AllowedOrigins)
	if err != nil {
		span.SetStatus(codes.Error, "upgrade failed")
		logWSError(h.Logger, r, wsError{
			Status:  http.StatusBadRequest,
			Message: "websocket upgrade failed",
			Err:     err,
		})
		return
	}
	defer conn.Close()

	if h.Bus == nil {
		span.SetStatus(codes.Error, "event bus unavailable")
		writeWSError(w, r, conn, h.Logger, wsError{
			Status:       http.StatusServiceUnavailable,
			Message:      "event bus unavailable",
			SendEnvelope: true,
		})
		return
	}

	events, cancel := h.Bus.SubscribeFiltered(func(watchEvent event.WatchEvent) bool {
		_, ok := streamedEventTypes[watchEvent.EventType]
		return ok
	})
	if events == nil {
		writeWSError(w, r, conn, h.Logger, wsError{
			Status:       http.StatusServiceUnavailable,
			Message:      "event stream unavailable",
			SendEnvelope: true,
		})
		return
	}
	defer cancel()

	filter := newEventFilter(streamedEventTypes)
	writer, err := startWSWriteLoop(w, r, wsStreamConfig[event.WatchEvent]{
		Conn:           conn,
		AllowedOrigins: h.AllowedOrigins,
		Output:         events,
		Logger:         h.Logger,
		BuildPayload: func(watchEvent event.WatchEvent) (any, bool) {
			if !filter.Allows(watchEvent.EventType) {
				return nil, false
			}
			if watchEvent.OccurredAt.IsZero() {
				watchEvent.OccurredAt = time.Now().UTC()
			}
			return watchEvent, true
		},
	})
	if err != nil {
		writeWSError(w, r, conn, h.Logger, wsError{
			Status:       http.StatusInternalServerError,
			Message:      "event stream unavailable",
			Err:          err,
			SendEnvelope: true,
		})
		return
	}
	defer writer.Stop()

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		var payload eventSubscribeMessage
		if err := json.Unmarshal(msg, &payload); err != nil {
			continue
		}
		filter.Set(payload.Subscribe, streamedEventTypes)
		span.AddEvent("subscribe", trace.WithAttributes(attribute.StringSlice("event.types", payload.Subscribe)))
	}
}
