package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type fakeTask struct {
	delay     time.Duration
	fn        func()
	fired     bool
	cancelled bool
}

func (task *fakeTask) Cancel() bool {
	if task.fired || task.cancelled {
		return false
	}
	task.cancelled = true
	return true
}

// fakeDispatcher records scheduled callbacks and runs them only when a test
// fires them.
type fakeDispatcher struct {
	tasks []*fakeTask
}

func (d *fakeDispatcher) Schedule(delay time.Duration, fn func()) Task {
	task := &fakeTask{delay: delay, fn: fn}
	d.tasks = append(d.tasks, task)
	return task
}

func (d *fakeDispatcher) pending() []*fakeTask {
	var pending []*fakeTask
	for _, task := range d.tasks {
		if !task.fired && !task.cancelled {
			pending = append(pending, task)
		}
	}
	return pending
}

func (d *fakeDispatcher) fireNext(t *testing.T) {
	t.Helper()
	pending := d.pending()
	if len(pending) == 0 {
		t.Fatal("expected a pending cycle")
	}
	task := pending[0]
	task.fired = true
	task.fn()
}

func (d *fakeDispatcher) lastDelay() time.Duration {
	if len(d.tasks) == 0 {
		return 0
	}
	return d.tasks[len(d.tasks)-1].delay
}

type mutableInterval struct {
	value time.Duration
}

func (i *mutableInterval) Interval() time.Duration {
	return i.value
}

type recordingSink struct {
	paths []string
}

func (s *recordingSink) ReloadResourcesAt(path string) {
	s.paths = append(s.paths, path)
}

func staticResources(resources ...Resource) Enumerator {
	return EnumeratorFunc(func() ([]Resource, error) {
		return resources, nil
	})
}

func writeTempFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("pixels"), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func touch(t *testing.T, path string, modTime time.Time) {
	t.Helper()
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}
