package logging

import (
	"sync"

	"autorefresh/internal/buffer"
)

// LogBuffer keeps the most recent entries in memory so callers can inspect
// diagnostics after the fact.
type LogBuffer struct {
	mu      sync.Mutex
	entries *buffer.Ring[LogEntry]
}

func NewLogBuffer(size int) *LogBuffer {
	return &LogBuffer{
		entries: buffer.NewRing[LogEntry](size),
	}
}

func (b *LogBuffer) Add(entry LogEntry) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries.Add(entry)
}

func (b *LogBuffer) List() []LogEntry {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.entries.List()
}

// Matching returns buffered entries with the given level and message, oldest first.
func (b *LogBuffer) Matching(level Level, message string) []LogEntry {
	var matched []LogEntry
	for _, entry := range b.List() {
		if entry.Level == level && entry.Message == message {
			matched = append(matched, entry)
		}
	}
	return matched
}
