package watcher

import (
	"sync"
	"time"
)

// debouncer coalesces bursts of triggers per key into one flush after the
// key has been quiet for duration.
type debouncer struct {
	mu       sync.Mutex
	duration time.Duration
	timers   map[string]*time.Timer
	stopped  bool
}

func newDebouncer(duration time.Duration) *debouncer {
	return &debouncer{
		duration: duration,
		timers:   make(map[string]*time.Timer),
	}
}

// schedule arms or re-arms the timer for key. It reports whether an earlier
// trigger was coalesced into this one.
func (d *debouncer) schedule(key string, flush func(string)) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return false
	}
	if timer, ok := d.timers[key]; ok {
		timer.Reset(d.duration)
		return true
	}
	d.timers[key] = time.AfterFunc(d.duration, func() {
		d.mu.Lock()
		if d.stopped {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		d.mu.Unlock()
		flush(key)
	})
	return false
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for key, timer := range d.timers {
		timer.Stop()
		delete(d.timers, key)
	}
}
