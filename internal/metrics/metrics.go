package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

type Registry struct {
	pollCycles       atomic.Int64
	entriesPolled    atomic.Int64
	changesDetected  atomic.Int64
	filesMissing     atomic.Int64
	statFailures     atomic.Int64
	reloads          atomic.Int64
	reloadFailures   atomic.Int64
	editorLaunches   atomic.Int64
	editorFailures   atomic.Int64
	monitoringActive atomic.Int64
	buses            sync.Map
}

type busStats struct {
	published   atomic.Int64
	dropped     atomic.Int64
	subscribers atomic.Int64
}

var Default = &Registry{}

func (r *Registry) RecordPollCycle(entries int) {
	if r == nil {
		return
	}
	r.pollCycles.Add(1)
	r.entriesPolled.Add(int64(entries))
}

func (r *Registry) IncChangeDetected() {
	if r == nil {
		return
	}
	r.changesDetected.Add(1)
}

func (r *Registry) IncFileMissing() {
	if r == nil {
		return
	}
	r.filesMissing.Add(1)
}

func (r *Registry) IncStatFailure() {
	if r == nil {
		return
	}
	r.statFailures.Add(1)
}

func (r *Registry) RecordReload(err error) {
	if r == nil {
		return
	}
	r.reloads.Add(1)
	if err != nil {
		r.reloadFailures.Add(1)
	}
}

func (r *Registry) RecordEditorLaunch(err error) {
	if r == nil {
		return
	}
	r.editorLaunches.Add(1)
	if err != nil {
		r.editorFailures.Add(1)
	}
}

func (r *Registry) SetMonitoring(active bool) {
	if r == nil {
		return
	}
	if active {
		r.monitoringActive.Store(1)
		return
	}
	r.monitoringActive.Store(0)
}

func (r *Registry) IncEventPublished(bus, eventType string) {
	if r == nil {
		return
	}
	r.bus(bus).published.Add(1)
}

func (r *Registry) IncEventDropped(bus, eventType string) {
	if r == nil {
		return
	}
	r.bus(bus).dropped.Add(1)
}

func (r *Registry) SetEventSubscriberCount(bus string, count int) {
	if r == nil {
		return
	}
	r.bus(bus).subscribers.Store(int64(count))
}

// Snapshot is a point-in-time copy of the scalar counters.
type Snapshot struct {
	PollCycles      int64
	EntriesPolled   int64
	ChangesDetected int64
	FilesMissing    int64
	StatFailures    int64
	Reloads         int64
	ReloadFailures  int64
	EditorLaunches  int64
	EditorFailures  int64
	Monitoring      bool
}

func (r *Registry) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{}
	}
	return Snapshot{
		PollCycles:      r.pollCycles.Load(),
		EntriesPolled:   r.entriesPolled.Load(),
		ChangesDetected: r.changesDetected.Load(),
		FilesMissing:    r.filesMissing.Load(),
		StatFailures:    r.statFailures.Load(),
		Reloads:         r.reloads.Load(),
		ReloadFailures:  r.reloadFailures.Load(),
		EditorLaunches:  r.editorLaunches.Load(),
		EditorFailures:  r.editorFailures.Load(),
		Monitoring:      r.monitoringActive.Load() == 1,
	}
}

func (r *Registry) WritePrometheus(writer io.Writer) error {
	if r == nil {
		return nil
	}

	writeCounter(writer, "autorefresh_poll_cycles_total", "Poll cycles completed", r.pollCycles.Load())
	writeCounter(writer, "autorefresh_entries_polled_total", "Monitored entries checked", r.entriesPolled.Load())
	writeCounter(writer, "autorefresh_changes_detected_total", "Modification time changes detected", r.changesDetected.Load())
	writeCounter(writer, "autorefresh_files_missing_total", "Polls that found a monitored file missing", r.filesMissing.Load())
	writeCounter(writer, "autorefresh_stat_failures_total", "Polls that failed for reasons other than a missing file", r.statFailures.Load())
	writeCounter(writer, "autorefresh_reloads_total", "Resource reloads attempted", r.reloads.Load())
	writeCounter(writer, "autorefresh_reload_failures_total", "Resource reloads that failed", r.reloadFailures.Load())
	writeCounter(writer, "autorefresh_editor_launches_total", "External editor launches attempted", r.editorLaunches.Load())
	writeCounter(writer, "autorefresh_editor_failures_total", "External editor launches that failed", r.editorFailures.Load())
	writeHelp(writer, "autorefresh_monitoring_active", "Whether periodic polling is enabled")
	fmt.Fprintln(writer, "# TYPE autorefresh_monitoring_active gauge")
	fmt.Fprintf(writer, "autorefresh_monitoring_active %d\n", r.monitoringActive.Load())

	names := r.busNames()
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)

	writeHelp(writer, "autorefresh_events_published_total", "Events published per bus")
	fmt.Fprintln(writer, "# TYPE autorefresh_events_published_total counter")
	writeHelp(writer, "autorefresh_events_dropped_total", "Events dropped per bus")
	fmt.Fprintln(writer, "# TYPE autorefresh_events_dropped_total counter")
	writeHelp(writer, "autorefresh_event_subscribers", "Active subscribers per bus")
	fmt.Fprintln(writer, "# TYPE autorefresh_event_subscribers gauge")
	for _, name := range names {
		stats := r.bus(name)
		label := formatLabel(name)
		fmt.Fprintf(writer, "autorefresh_events_published_total{bus=%s} %d\n", label, stats.published.Load())
		fmt.Fprintf(writer, "autorefresh_events_dropped_total{bus=%s} %d\n", label, stats.dropped.Load())
		fmt.Fprintf(writer, "autorefresh_event_subscribers{bus=%s} %d\n", label, stats.subscribers.Load())
	}
	return nil
}

func (r *Registry) bus(name string) *busStats {
	if strings.TrimSpace(name) == "" {
		name = "unknown"
	}
	value, _ := r.buses.LoadOrStore(name, &busStats{})
	return value.(*busStats)
}

func (r *Registry) busNames() []string {
	var names []string
	r.buses.Range(func(key, value any) bool {
		if name, ok := key.(string); ok {
			names = append(names, name)
		}
		return true
	})
	return names
}

func writeHelp(writer io.Writer, metric, help string) {
	fmt.Fprintf(writer, "# HELP %s %s\n", metric, help)
}

func writeCounter(writer io.Writer, metric, help string, value int64) {
	writeHelp(writer, metric, help)
	fmt.Fprintf(writer, "# TYPE %s counter\n", metric)
	fmt.Fprintf(writer, "%s %d\n", metric, value)
}

func formatLabel(value string) string {
	escaped := strings.ReplaceAll(value, "\\", "\\\\")
	escaped = strings.ReplaceAll(escaped, "\"", "\\\"")
	return fmt.Sprintf("\"%s\"", escaped)
}
