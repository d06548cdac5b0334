package resource

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"autorefresh/internal/event"
	"autorefresh/internal/logging"
	"autorefresh/internal/metrics"
)

type recordingPublisher struct {
	events []event.WatchEvent
}

func (p *recordingPublisher) Publish(payload event.WatchEvent) {
	p.events = append(p.events, payload)
}

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "autorefresh.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestCatalogListsOnlyFileBackedResources(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.png"), "a")
	path := writeManifest(t, dir, "resources:\n  - name: a\n    path: a.png\n  - name: generated\n")

	catalog := NewCatalog(CatalogOptions{})
	if err := catalog.LoadManifest(path); err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	resources, err := catalog.ListEditableResources()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(resources) != 1 || resources[0].Name != "a" || resources[0].Path != filepath.Join(dir, "a.png") {
		t.Fatalf("unexpected resources: %#v", resources)
	}
	if len(catalog.Resources()) != 2 {
		t.Fatalf("expected both resources in catalog, got %d", len(catalog.Resources()))
	}
}

func TestCatalogLoadsContentOnApply(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.png"), "pixels")
	path := writeManifest(t, dir, "resources:\n  - name: a\n    path: a.png\n")

	catalog := NewCatalog(CatalogOptions{})
	if err := catalog.LoadManifest(path); err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	resource, ok := catalog.Lookup("a")
	if !ok {
		t.Fatal("expected resource a")
	}
	if resource.Revision != 1 || resource.Size != int64(len("pixels")) || resource.Digest == "" {
		t.Fatalf("unexpected loaded state: %#v", resource)
	}
}

func TestCatalogReloadResourcesAtMatchesEveryResource(t *testing.T) {
	dir := t.TempDir()
	shared := filepath.Join(dir, "shared.png")
	writeFile(t, shared, "v1")
	writeFile(t, filepath.Join(dir, "other.png"), "o")
	path := writeManifest(t, dir, "resources:\n  - name: a\n    path: shared.png\n  - name: b\n    path: //shared.png\n  - name: c\n    path: other.png\n")

	publisher := &recordingPublisher{}
	registry := &metrics.Registry{}
	catalog := NewCatalog(CatalogOptions{Events: publisher, Metrics: registry})
	if err := catalog.LoadManifest(path); err != nil {
		t.Fatalf("load manifest: %v", err)
	}

	writeFile(t, shared, "v2-longer")
	catalog.ReloadResourcesAt(shared)

	for _, name := range []string{"a", "b"} {
		resource, _ := catalog.Lookup(name)
		if resource.Revision != 2 || resource.Size != int64(len("v2-longer")) {
			t.Fatalf("expected %s reloaded, got %#v", name, resource)
		}
	}
	if other, _ := catalog.Lookup("c"); other.Revision != 1 {
		t.Fatalf("expected c untouched, got revision %d", other.Revision)
	}
	if len(publisher.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(publisher.events))
	}
	if publisher.events[0].EventType != event.TypeResourceReloaded || publisher.events[0].Name != "a" || publisher.events[0].Revision != 2 {
		t.Fatalf("unexpected event: %#v", publisher.events[0])
	}
	if snapshot := registry.Snapshot(); snapshot.Reloads != 2 {
		t.Fatalf("expected 2 reloads recorded, got %d", snapshot.Reloads)
	}
}

func TestCatalogReloadWithNoMatchIsNoop(t *testing.T) {
	publisher := &recordingPublisher{}
	catalog := NewCatalog(CatalogOptions{Events: publisher})
	catalog.ReloadResourcesAt("/nowhere.png")
	catalog.ReloadResourcesAt("")
	if len(publisher.events) != 0 {
		t.Fatalf("expected no events, got %d", len(publisher.events))
	}
}

func TestCatalogReloadFailureKeepsPreviousContent(t *testing.T) {
	readErr := errors.New("permission denied")
	fail := false
	readFile := func(path string) ([]byte, error) {
		if fail {
			return nil, readErr
		}
		return []byte("ok"), nil
	}
	buffer := logging.NewLogBuffer(10)
	logger := logging.NewLoggerWithOutput(buffer, logging.LevelDebug, nil)
	publisher := &recordingPublisher{}
	catalog := NewCatalog(CatalogOptions{ReadFile: readFile, Logger: logger, Events: publisher})
	catalog.Apply(Manifest{Path: "/project/autorefresh.yaml", Entries: []ManifestEntry{{Name: "a", Path: "a.png"}}})

	fail = true
	catalog.ReloadResourcesAt("/project/a.png")

	resource, _ := catalog.Lookup("a")
	if resource.Revision != 1 || resource.Digest == "" {
		t.Fatalf("expected previous content kept, got %#v", resource)
	}
	if !errors.Is(resource.Err, readErr) {
		t.Fatalf("expected read error recorded, got %v", resource.Err)
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != event.TypeResourceReloadFailed {
		t.Fatalf("expected failure event, got %#v", publisher.events)
	}
	if len(buffer.Matching(logging.LevelWarning, "resource load failed")) != 1 {
		t.Fatal("expected warning for failed load")
	}
}

func TestCatalogSyncPicksUpManifestChanges(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.png"), "a")
	writeFile(t, filepath.Join(dir, "b.png"), "b")
	path := writeManifest(t, dir, "resources:\n  - name: a\n    path: a.png\n")

	catalog := NewCatalog(CatalogOptions{})
	if err := catalog.LoadManifest(path); err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	writeManifest(t, dir, "resources:\n  - name: a\n    path: a.png\n  - name: b\n    path: b.png\n")

	resources, err := catalog.ListEditableResources()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(resources) != 2 {
		t.Fatalf("expected 2 resources after sync, got %d", len(resources))
	}
	if a, _ := catalog.Lookup("a"); a.Revision != 1 {
		t.Fatalf("expected unchanged resource to keep revision, got %d", a.Revision)
	}
}

func TestCatalogSyncWithoutManifest(t *testing.T) {
	catalog := NewCatalog(CatalogOptions{})
	if err := catalog.Sync(); !errors.Is(err, ErrNoManifest) {
		t.Fatalf("expected ErrNoManifest, got %v", err)
	}
}

func TestCatalogListFailsWhenManifestBreaks(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "resources: []\n")
	catalog := NewCatalog(CatalogOptions{})
	if err := catalog.LoadManifest(path); err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	writeManifest(t, dir, "resources: [\n")
	if _, err := catalog.ListEditableResources(); err == nil {
		t.Fatal("expected enumeration error")
	}
}
