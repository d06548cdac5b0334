package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDocumentWatcherReportsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.yaml")
	if err := os.WriteFile(path, []byte("resources: []\n"), 0o600); err != nil {
		t.Fatalf("write document: %v", err)
	}

	loads := make(chan struct{}, 4)
	watcher, err := WatchDocument(path, 20*time.Millisecond, func() {
		loads <- struct{}{}
	}, nil)
	if err != nil {
		t.Fatalf("watch document: %v", err)
	}
	defer watcher.Close()

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("resources: []\n# edit\n"), 0o600); err != nil {
			t.Fatalf("rewrite document: %v", err)
		}
	}

	select {
	case <-loads:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for document load notification")
	}
}

func TestDocumentWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.yaml")
	if err := os.WriteFile(path, []byte("resources: []\n"), 0o600); err != nil {
		t.Fatalf("write document: %v", err)
	}

	loads := make(chan struct{}, 1)
	watcher, err := WatchDocument(path, 10*time.Millisecond, func() {
		loads <- struct{}{}
	}, nil)
	if err != nil {
		t.Fatalf("watch document: %v", err)
	}
	defer watcher.Close()

	if err := os.WriteFile(filepath.Join(dir, "texture.png"), []byte("px"), 0o600); err != nil {
		t.Fatalf("write sibling: %v", err)
	}

	select {
	case <-loads:
		t.Fatal("expected sibling write to be ignored")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatchDocumentValidatesArguments(t *testing.T) {
	if _, err := WatchDocument("", 0, func() {}, nil); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := WatchDocument("project.yaml", 0, nil, nil); err == nil {
		t.Fatal("expected error for nil callback")
	}
}
