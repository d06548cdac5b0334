// Package process starts external editor processes without waiting on them.
package process

import (
	"errors"
	"os/exec"
	"strconv"
	"strings"

	"autorefresh/internal/event"
	"autorefresh/internal/logging"
	"autorefresh/internal/metrics"
)

var (
	ErrEditorNotConfigured = errors.New("external editor not configured")
	ErrEditorSpawnFailed   = errors.New("external editor failed to start")
)

// SpawnError wraps the reason an editor process could not be started.
type SpawnError struct {
	Command string
	Path    string
	Err     error
}

func (e *SpawnError) Error() string {
	return "start " + strconv.Quote(e.Command) + " for " + strconv.Quote(e.Path) + ": " + e.Err.Error()
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

func (e *SpawnError) Is(target error) bool {
	return target == ErrEditorSpawnFailed
}

// Launch describes a started editor. Only the spawn step is reported; the
// child's exit status is never observed by the caller.
type Launch struct {
	PID     int
	Command string
	Path    string
}

type LauncherOptions struct {
	Logger  *logging.Logger
	Metrics *metrics.Registry
	Events  event.Publisher[event.WatchEvent]
}

type Launcher struct {
	logger  *logging.Logger
	metrics *metrics.Registry
	events  event.Publisher[event.WatchEvent]
	start   func(cmd *exec.Cmd) error
}

func NewLauncher(options LauncherOptions) *Launcher {
	logger := options.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Launcher{
		logger:  logger.Category("process"),
		metrics: options.Metrics,
		events:  options.Events,
		start:   startDetached,
	}
}

// OpenExternalEditor starts editorCommand with path as its only argument and
// returns as soon as the process exists.
func (l *Launcher) OpenExternalEditor(path, editorCommand string) (Launch, error) {
	command := strings.TrimSpace(editorCommand)
	if command == "" {
		l.logger.Warn("external editor not configured", map[string]string{logging.FieldPath: path})
		return Launch{}, ErrEditorNotConfigured
	}

	cmd := exec.Command(command, path)
	configureDetached(cmd)
	if err := l.start(cmd); err != nil {
		spawnErr := &SpawnError{Command: command, Path: path, Err: err}
		l.metrics.RecordEditorLaunch(spawnErr)
		l.logger.Error("external editor failed to start", map[string]string{
			logging.FieldPath:  path,
			"command":          command,
			logging.FieldError: err.Error(),
		})
		return Launch{}, spawnErr
	}

	launch := Launch{Command: command, Path: path}
	if cmd.Process != nil {
		launch.PID = cmd.Process.Pid
		go func() {
			fields := map[string]string{
				logging.FieldPath: path,
				"pid":             strconv.Itoa(launch.PID),
			}
			if err := cmd.Wait(); err != nil {
				fields[logging.FieldError] = err.Error()
			}
			l.logger.Debug("external editor exited", fields)
		}()
	}

	l.metrics.RecordEditorLaunch(nil)
	if l.events != nil {
		launched := event.NewWatchEvent(event.TypeEditorLaunched, path)
		launched.Detail = command
		l.events.Publish(launched)
	}
	l.logger.Info("external editor opened", map[string]string{
		logging.FieldPath: path,
		"command":         command,
		"pid":             strconv.Itoa(launch.PID),
	})
	return launch, nil
}

func startDetached(cmd *exec.Cmd) error {
	return cmd.Start()
}
