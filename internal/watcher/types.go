package watcher

import (
	"errors"
	"io/fs"
	"time"
)

// Resource is one editable file reported by the host.
type Resource struct {
	Name string
	Path string
}

// Entry is a watched registry record. ID is the resource path.
type Entry struct {
	ID          string
	DisplayName string
	Path        string
	Monitored   bool
}

// Result is the outcome of polling one entry.
type Result struct {
	Path    string
	Changed bool
	ModTime time.Time
	Err     error
}

// State is the scheduler lifecycle state.
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	default:
		return "stopped"
	}
}

// Enumerator lists the resources a host can edit externally. It is only
// consulted when monitoring is enabled.
type Enumerator interface {
	ListEditableResources() ([]Resource, error)
}

// ReloadSink reloads every host resource backed by path. Zero matches is valid.
type ReloadSink interface {
	ReloadResourcesAt(path string)
}

// IntervalSource reports the current refresh interval. It is read on every
// scheduling decision.
type IntervalSource interface {
	Interval() time.Duration
}

type EnumeratorFunc func() ([]Resource, error)

func (f EnumeratorFunc) ListEditableResources() ([]Resource, error) {
	return f()
}

type ReloadSinkFunc func(path string)

func (f ReloadSinkFunc) ReloadResourcesAt(path string) {
	f(path)
}

// FixedInterval is an IntervalSource that never changes.
type FixedInterval time.Duration

func (i FixedInterval) Interval() time.Duration {
	return time.Duration(i)
}

var (
	ErrFileNotFound = errors.New("file not found")
	ErrLoopClosed   = errors.New("event loop closed")
)

// FileNotFoundError reports a watched path that no longer exists.
type FileNotFoundError struct {
	Path string
	Err  error
}

func (e *FileNotFoundError) Error() string {
	return "file not found: " + e.Path
}

func (e *FileNotFoundError) Unwrap() error {
	if e.Err == nil {
		return fs.ErrNotExist
	}
	return e.Err
}

func (e *FileNotFoundError) Is(target error) bool {
	return target == ErrFileNotFound
}
