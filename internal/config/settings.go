package config

import (
	"fmt"
	"os"
	"strings"

	"autorefresh/internal/config/tomlkeys"
)

// Setting keys, in normalized dotted form.
const (
	KeyRefreshInterval = "monitor.refresh-interval"
	KeyAutoEnable      = "monitor.auto-enable"
	KeyEditorCommand   = "editor.command"
	KeyManifest        = "project.manifest"
	KeyWatchDocument   = "project.watch-document"
	KeyLogLevel        = "log.level"
	KeyEventsAddr      = "events.addr"
)

// Keys lists every recognized setting in display order.
var Keys = []string{
	KeyRefreshInterval,
	KeyAutoEnable,
	KeyEditorCommand,
	KeyManifest,
	KeyWatchDocument,
	KeyLogLevel,
	KeyEventsAddr,
}

type Source string

const (
	SourceDefault  Source = "default"
	SourceFile     Source = "file"
	SourceOverride Source = "override"
)

type Settings struct {
	Monitor MonitorSettings
	Editor  EditorSettings
	Project ProjectSettings
	Log     LogSettings
	Events  EventsSettings
	Sources map[string]Source
}

type MonitorSettings struct {
	RefreshInterval float64
	AutoEnable      bool
}

type EditorSettings struct {
	Command string
}

type ProjectSettings struct {
	Manifest      string
	WatchDocument bool
}

type LogSettings struct {
	Level string
}

type EventsSettings struct {
	Addr string
}

// LoadSettings layers the defaults payload, the optional settings file at
// path and overrides, in that order. A missing file is not an error.
func LoadSettings(path string, defaultsPayload []byte, overrides map[string]any) (Settings, error) {
	defaultsStore, err := tomlkeys.Decode(defaultsPayload)
	if err != nil {
		return Settings{}, fmt.Errorf("decode default settings: %w", err)
	}
	defaults := defaultsStore.Flat()
	values := defaultsStore.Flat()
	sources := make(map[string]Source, len(values))
	for key := range values {
		sources[key] = SourceDefault
	}

	if strings.TrimSpace(path) != "" {
		payload, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Settings{}, err
			}
		} else {
			store, err := tomlkeys.Decode(payload)
			if err != nil {
				return Settings{}, fmt.Errorf("decode %s: %w", path, err)
			}
			for key, value := range store.Flat() {
				values[key] = value
				sources[key] = SourceFile
			}
		}
	}

	for key, value := range overrides {
		normalized := tomlkeys.NormalizeKey(key)
		if normalized == "" {
			continue
		}
		values[normalized] = value
		sources[normalized] = SourceOverride
	}

	settings := Settings{Sources: sources}
	settings.Monitor.RefreshInterval = floatSetting(values, KeyRefreshInterval, floatSetting(defaults, KeyRefreshInterval, DefaultRefreshInterval))
	settings.Monitor.AutoEnable = boolSetting(values, KeyAutoEnable, boolSetting(defaults, KeyAutoEnable, false))
	settings.Editor.Command = stringSetting(values, KeyEditorCommand, "")
	settings.Project.Manifest = stringSetting(values, KeyManifest, "")
	settings.Project.WatchDocument = boolSetting(values, KeyWatchDocument, boolSetting(defaults, KeyWatchDocument, true))
	settings.Log.Level = stringSetting(values, KeyLogLevel, "")
	settings.Events.Addr = stringSetting(values, KeyEventsAddr, "")

	return normalizeSettings(settings, defaults), nil
}

func normalizeSettings(settings Settings, defaults map[string]any) Settings {
	settings.Monitor.RefreshInterval = ClampInterval(settings.Monitor.RefreshInterval)
	if settings.Project.Manifest == "" {
		settings.Project.Manifest = stringSetting(defaults, KeyManifest, "")
	}
	if settings.Log.Level == "" {
		settings.Log.Level = stringSetting(defaults, KeyLogLevel, "info")
	}
	return settings
}

// Value returns the effective value of key as a display string.
func (s Settings) Value(key string) string {
	switch tomlkeys.NormalizeKey(key) {
	case KeyRefreshInterval:
		return fmt.Sprintf("%.1f", s.Monitor.RefreshInterval)
	case KeyAutoEnable:
		return fmt.Sprintf("%t", s.Monitor.AutoEnable)
	case KeyEditorCommand:
		return s.Editor.Command
	case KeyManifest:
		return s.Project.Manifest
	case KeyWatchDocument:
		return fmt.Sprintf("%t", s.Project.WatchDocument)
	case KeyLogLevel:
		return s.Log.Level
	case KeyEventsAddr:
		return s.Events.Addr
	default:
		return ""
	}
}

func (s Settings) Source(key string) Source {
	if source, ok := s.Sources[tomlkeys.NormalizeKey(key)]; ok {
		return source
	}
	return SourceDefault
}

func floatSetting(values map[string]any, key string, fallback float64) float64 {
	value, ok := values[tomlkeys.NormalizeKey(key)]
	if !ok {
		return fallback
	}
	if parsed, ok := tomlkeys.AsFloat64(value); ok {
		return parsed
	}
	return fallback
}

func stringSetting(values map[string]any, key string, fallback string) string {
	value, ok := values[tomlkeys.NormalizeKey(key)]
	if !ok {
		return fallback
	}
	if parsed, ok := value.(string); ok {
		return strings.TrimSpace(parsed)
	}
	return fallback
}

func boolSetting(values map[string]any, key string, fallback bool) bool {
	value, ok := values[tomlkeys.NormalizeKey(key)]
	if !ok {
		return fallback
	}
	if parsed, ok := value.(bool); ok {
		return parsed
	}
	return fallback
}
