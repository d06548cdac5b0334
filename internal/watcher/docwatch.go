package watcher

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"autorefresh/internal/logging"

	"github.com/fsnotify/fsnotify"
)

const defaultDocumentDebounce = 150 * time.Millisecond

// DocumentWatcher reports when the host document is written, replaced or
// recreated. It watches the parent directory so editors that save through a
// rename are still seen.
type DocumentWatcher struct {
	path      string
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	onLoad    func()
	logger    *logging.Logger
	done      chan struct{}
	closeOnce sync.Once
}

// WatchDocument calls onLoad once per burst of changes to path.
func WatchDocument(path string, debounce time.Duration, onLoad func(), logger *logging.Logger) (*DocumentWatcher, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}
	if onLoad == nil {
		return nil, errors.New("callback is required")
	}
	absolute, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = defaultDocumentDebounce
	}
	if logger == nil {
		logger = logging.Discard()
	}

	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := notify.Add(filepath.Dir(absolute)); err != nil {
		_ = notify.Close()
		return nil, err
	}

	watcher := &DocumentWatcher{
		path:      absolute,
		watcher:   notify,
		debouncer: newDebouncer(debounce),
		onLoad:    onLoad,
		logger:    logger.Category("watcher"),
		done:      make(chan struct{}),
	}
	go watcher.run()
	watcher.logger.Debug("document watch added", map[string]string{logging.FieldPath: absolute})
	return watcher, nil
}

func (w *DocumentWatcher) Path() string {
	return w.path
}

func (w *DocumentWatcher) run() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("document watcher error", map[string]string{logging.FieldError: err.Error()})
		case <-w.done:
			return
		}
	}
}

func (w *DocumentWatcher) handleEvent(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return
	}
	w.debouncer.schedule(w.path, func(string) {
		select {
		case <-w.done:
			return
		default:
		}
		w.logger.Debug("document changed", map[string]string{
			logging.FieldPath: w.path,
			"op":              ev.Op.String(),
		})
		w.onLoad()
	})
}

func (w *DocumentWatcher) Close() error {
	if w == nil {
		return nil
	}
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.debouncer.stop()
		err = w.watcher.Close()
	})
	return err
}
