package watcher

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"autorefresh/internal/event"
	"autorefresh/internal/logging"
	"autorefresh/internal/metrics"
)

const DefaultInterval = time.Second

// SessionOptions wires a Session to its host collaborators.
type SessionOptions struct {
	Enumerator Enumerator
	Sink       ReloadSink
	Interval   IntervalSource
	Dispatcher Dispatcher
	Stat       StatFunc
	Logger     *logging.Logger
	Metrics    *metrics.Registry
	Events     event.Publisher[event.WatchEvent]
}

// Session owns the monitoring state for one host session: the registry, the
// last observed modification times and the pending poll cycle. All methods
// must be called from the session's dispatcher.
type Session struct {
	registry   *Registry
	detector   *Detector
	enumerator Enumerator
	sink       ReloadSink
	interval   IntervalSource
	dispatcher Dispatcher
	logger     *logging.Logger
	metrics    *metrics.Registry
	events     event.Publisher[event.WatchEvent]

	state      State
	pending    Task
	generation uint64
	lastDelay  time.Duration
}

func NewSession(options SessionOptions) (*Session, error) {
	if options.Enumerator == nil {
		return nil, errors.New("enumerator is required")
	}
	if options.Sink == nil {
		return nil, errors.New("reload sink is required")
	}
	if options.Dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	interval := options.Interval
	if interval == nil {
		interval = FixedInterval(DefaultInterval)
	}
	logger := options.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Session{
		registry:   NewRegistry(),
		detector:   NewDetector(options.Stat),
		enumerator: options.Enumerator,
		sink:       options.Sink,
		interval:   interval,
		dispatcher: options.Dispatcher,
		logger:     logger.Category("watcher"),
		metrics:    options.Metrics,
		events:     options.Events,
	}, nil
}

func (s *Session) Registry() *Registry {
	return s.registry
}

func (s *Session) Detector() *Detector {
	return s.detector
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Running() bool {
	return s.state == Running
}

// NextDelay is the delay used for the most recently scheduled cycle.
func (s *Session) NextDelay() time.Duration {
	return s.lastDelay
}

// Enable refreshes the registry from the enumerator and starts polling. It
// is a no-op while already running. On enumeration failure the session
// stays stopped.
func (s *Session) Enable() error {
	if s.state == Running {
		return nil
	}
	resources, err := s.enumerator.ListEditableResources()
	if err != nil {
		return fmt.Errorf("enumerate resources: %w", err)
	}
	s.registry.Refresh(resources)
	s.state = Running
	s.generation++
	s.scheduleNext()

	s.metrics.SetMonitoring(true)
	s.publish(event.NewWatchEvent(event.TypeMonitorEnabled, ""))
	s.logger.Info("monitoring enabled", map[string]string{
		"entries":  strconv.Itoa(s.registry.Len()),
		"interval": s.lastDelay.String(),
	})
	return nil
}

// Disable stops polling and cancels the pending cycle. Disabling a stopped
// session does nothing.
func (s *Session) Disable() {
	if s.state == Stopped {
		s.logger.Debug("monitoring already disabled", nil)
		return
	}
	s.state = Stopped
	s.generation++
	if s.pending != nil {
		s.pending.Cancel()
		s.pending = nil
	}

	s.metrics.SetMonitoring(false)
	s.publish(event.NewWatchEvent(event.TypeMonitorDisabled, ""))
	s.logger.Info("monitoring disabled", nil)
}

func (s *Session) Toggle() error {
	if s.state == Running {
		s.Disable()
		return nil
	}
	return s.Enable()
}

// RunCycle polls the monitored entries immediately without touching the
// pending schedule. It returns nil while stopped.
func (s *Session) RunCycle() []Result {
	if s.state != Running {
		return nil
	}
	return s.poll()
}

// Close cancels pending work; the session ends stopped.
func (s *Session) Close() {
	s.Disable()
}

func (s *Session) cycle(generation uint64) {
	if s.state != Running || generation != s.generation {
		return
	}
	s.pending = nil
	s.poll()
	if s.state != Running || generation != s.generation {
		return
	}
	s.scheduleNext()
}

func (s *Session) scheduleNext() {
	delay := s.interval.Interval()
	if delay <= 0 {
		delay = DefaultInterval
	}
	generation := s.generation
	s.lastDelay = delay
	s.pending = s.dispatcher.Schedule(delay, func() {
		s.cycle(generation)
	})
}

func (s *Session) poll() []Result {
	entries := s.registry.ListMonitored()
	results := s.detector.Poll(entries)
	s.metrics.RecordPollCycle(len(entries))

	reloaded := make(map[string]struct{})
	for _, result := range results {
		switch {
		case result.Err != nil:
			s.reportPollError(result)
		case result.Changed:
			if _, done := reloaded[result.Path]; done {
				continue
			}
			reloaded[result.Path] = struct{}{}
			s.metrics.IncChangeDetected()
			s.logger.Info("file changed", map[string]string{
				logging.FieldPath: result.Path,
				"mod_time":        result.ModTime.UTC().Format(time.RFC3339Nano),
			})
			s.sink.ReloadResourcesAt(result.Path)
		}
	}
	return results
}

func (s *Session) reportPollError(result Result) {
	fields := map[string]string{
		logging.FieldPath:  result.Path,
		logging.FieldError: result.Err.Error(),
	}
	if errors.Is(result.Err, ErrFileNotFound) {
		s.metrics.IncFileMissing()
		s.publish(event.NewWatchEvent(event.TypeFileMissing, result.Path))
		s.logger.Warn("file not found", fields)
		return
	}
	s.metrics.IncStatFailure()
	s.logger.Warn("stat failed", fields)
}

func (s *Session) publish(watchEvent event.WatchEvent) {
	if s.events == nil {
		return
	}
	s.events.Publish(watchEvent)
}
