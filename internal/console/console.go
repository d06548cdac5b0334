// Package console is the interactive host surface: a line-oriented command
// reader that drives a watch session from a terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"autorefresh/internal/config"
	"autorefresh/internal/logging"
	"autorefresh/internal/metrics"
	"autorefresh/internal/process"
	"autorefresh/internal/resource"
	"autorefresh/internal/watcher"
)

var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrUnknownResource = errors.New("unknown resource")
	ErrMissingArgument = errors.New("missing argument")
)

// Runner executes fn on the goroutine that owns the session.
type Runner interface {
	Do(fn func()) error
}

// Editor opens a path in an external editor.
type Editor interface {
	OpenExternalEditor(path, editorCommand string) (process.Launch, error)
}

type Options struct {
	Session       *watcher.Session
	Runner        Runner
	Guard         *watcher.LifecycleGuard
	Catalog       *resource.Catalog
	Editor        Editor
	EditorCommand string
	Interval      *config.Interval
	Metrics       *metrics.Registry
	Logger        *logging.Logger
}

type Console struct {
	session       *watcher.Session
	runner        Runner
	guard         *watcher.LifecycleGuard
	catalog       *resource.Catalog
	editor        Editor
	editorCommand string
	interval      *config.Interval
	metrics       *metrics.Registry
	logger        *logging.Logger
}

func New(options Options) (*Console, error) {
	if options.Session == nil {
		return nil, errors.New("session is required")
	}
	if options.Runner == nil {
		return nil, errors.New("runner is required")
	}
	logger := options.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	guard := options.Guard
	if guard == nil {
		guard = watcher.NewLifecycleGuard(options.Session, logger)
	}
	return &Console{
		session:       options.Session,
		runner:        options.Runner,
		guard:         guard,
		catalog:       options.Catalog,
		editor:        options.Editor,
		editorCommand: options.EditorCommand,
		interval:      options.Interval,
		metrics:       options.Metrics,
		logger:        logger.Category("console"),
	}, nil
}

// Run reads commands from in until quit, end of input or ctx is done.
func (c *Console) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
		close(lines)
	}()

	fmt.Fprint(out, "> ")
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-readErr
			}
			quit, err := c.Execute(line, out)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
			if quit {
				return nil
			}
			fmt.Fprint(out, "> ")
		}
	}
}

// Execute runs one command line. It reports whether the console should exit.
func (c *Console) Execute(line string, out io.Writer) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	name := strings.ToLower(fields[0])
	arg := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

	switch name {
	case "quit", "exit":
		return true, nil
	case "help", "?":
		writeHelp(out)
		return false, nil
	case "toggle":
		return false, c.toggle(out)
	case "enable":
		return false, c.enable(out)
	case "disable":
		return false, c.disable(out)
	case "list", "ls":
		return false, c.list(out)
	case "monitor":
		return false, c.setMonitored(arg, true, out)
	case "unmonitor":
		return false, c.setMonitored(arg, false, out)
	case "edit":
		return false, c.edit(arg, out)
	case "interval":
		return false, c.setInterval(arg, out)
	case "reload":
		return false, c.reload(out)
	case "stats":
		return false, c.stats(out)
	default:
		return false, fmt.Errorf("%w: %s", ErrUnknownCommand, fields[0])
	}
}

func (c *Console) toggle(out io.Writer) error {
	var (
		state     watcher.State
		enableErr error
	)
	if err := c.runner.Do(func() {
		enableErr = c.session.Toggle()
		state = c.session.State()
	}); err != nil {
		return err
	}
	if enableErr != nil {
		return enableErr
	}
	fmt.Fprintf(out, "monitoring %s\n", state)
	return nil
}

func (c *Console) enable(out io.Writer) error {
	var (
		count     int
		enableErr error
	)
	if err := c.runner.Do(func() {
		enableErr = c.session.Enable()
		count = c.session.Registry().Len()
	}); err != nil {
		return err
	}
	if enableErr != nil {
		return enableErr
	}
	fmt.Fprintf(out, "monitoring running (%d resources)\n", count)
	return nil
}

func (c *Console) disable(out io.Writer) error {
	if err := c.runner.Do(c.session.Disable); err != nil {
		return err
	}
	fmt.Fprintln(out, "monitoring stopped")
	return nil
}

func (c *Console) list(out io.Writer) error {
	var (
		state   watcher.State
		entries []watcher.Entry
	)
	if err := c.runner.Do(func() {
		state = c.session.State()
		entries = c.session.Registry().Entries()
	}); err != nil {
		return err
	}
	fmt.Fprintf(out, "monitoring %s\n", state)
	if len(entries) == 0 {
		fmt.Fprintln(out, "no watched resources; enable monitoring to load them")
		return nil
	}
	for _, entry := range entries {
		mark := " "
		if entry.Monitored {
			mark = "x"
		}
		line := fmt.Sprintf("[%s] %s  %s", mark, entry.DisplayName, entry.Path)
		if c.catalog != nil {
			if loaded, ok := c.catalog.Lookup(entry.DisplayName); ok && loaded.Revision > 0 {
				line += "  rev " + strconv.Itoa(loaded.Revision)
			}
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func (c *Console) setMonitored(key string, monitored bool, out io.Writer) error {
	if key == "" {
		return fmt.Errorf("%w: resource name or path", ErrMissingArgument)
	}
	var (
		entry watcher.Entry
		found bool
	)
	if err := c.runner.Do(func() {
		entry, found = c.session.Registry().Find(key)
		if found {
			c.session.Registry().SetMonitored(entry.ID, monitored)
		}
	}); err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrUnknownResource, key)
	}
	verb := "watching"
	if !monitored {
		verb = "no longer watching"
	}
	fmt.Fprintf(out, "%s %s\n", verb, entry.DisplayName)
	return nil
}

func (c *Console) edit(key string, out io.Writer) error {
	if key == "" {
		return fmt.Errorf("%w: resource name or path", ErrMissingArgument)
	}
	if c.editor == nil {
		return process.ErrEditorNotConfigured
	}
	path := c.resolvePath(key)
	launch, err := c.editor.OpenExternalEditor(path, c.editorCommand)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "opened %s in %s (pid %d)\n", launch.Path, launch.Command, launch.PID)
	return nil
}

func (c *Console) resolvePath(key string) string {
	var (
		entry watcher.Entry
		found bool
	)
	_ = c.runner.Do(func() {
		entry, found = c.session.Registry().Find(key)
	})
	if found {
		return entry.Path
	}
	if c.catalog != nil {
		if loaded, ok := c.catalog.Lookup(key); ok && loaded.FileBacked() {
			return loaded.Path
		}
	}
	return key
}

func (c *Console) setInterval(arg string, out io.Writer) error {
	if c.interval == nil {
		return errors.New("interval is not adjustable")
	}
	if arg == "" {
		fmt.Fprintf(out, "refresh interval %.1fs\n", c.interval.Seconds())
		return nil
	}
	seconds, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return fmt.Errorf("invalid interval %q: %w", arg, err)
	}
	applied := c.interval.Set(seconds)
	c.logger.Info("refresh interval changed", map[string]string{
		"seconds": strconv.FormatFloat(applied, 'f', -1, 64),
	})
	fmt.Fprintf(out, "refresh interval %.1fs\n", applied)
	return nil
}

func (c *Console) reload(out io.Writer) error {
	var state watcher.State
	if err := c.runner.Do(func() {
		c.guard.DocumentLoaded()
		state = c.session.State()
	}); err != nil {
		return err
	}
	fmt.Fprintf(out, "document reloaded; monitoring %s\n", state)
	return nil
}

func (c *Console) stats(out io.Writer) error {
	if c.metrics == nil {
		fmt.Fprintln(out, "metrics disabled")
		return nil
	}
	return c.metrics.WritePrometheus(out)
}

func writeHelp(out io.Writer) {
	fmt.Fprint(out, `commands:
  toggle                   start or stop monitoring
  enable | disable         start or stop monitoring explicitly
  list                     show watched resources
  monitor <name|path>      watch a resource
  unmonitor <name|path>    stop watching a resource
  edit <name|path>         open a resource in the external editor
  interval [seconds]       show or set the refresh interval
  reload                   simulate a document load (stops monitoring)
  stats                    print counters
  help                     show this help
  quit                     exit
`)
}
