package event

import "time"

const (
	TypeResourceReloaded     = "resource_reloaded"
	TypeResourceReloadFailed = "resource_reload_failed"
	TypeMonitorEnabled       = "monitor_enabled"
	TypeMonitorDisabled      = "monitor_disabled"
	TypeFileMissing          = "file_missing"
	TypeEditorLaunched       = "editor_launched"
)

// WatchEvent describes monitoring lifecycle and resource reload activity.
type WatchEvent struct {
	EventType  string    `json:"type"`
	Name       string    `json:"name,omitempty"`
	Path       string    `json:"path,omitempty"`
	Revision   int       `json:"revision,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"time"`
}

func NewWatchEvent(eventType, path string) WatchEvent {
	return WatchEvent{
		EventType:  eventType,
		Path:       path,
		OccurredAt: time.Now().UTC(),
	}
}

func (e WatchEvent) Type() string {
	return e.EventType
}

func (e WatchEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Publisher is the write side of a bus.
type Publisher[T any] interface {
	Publish(event T)
}
