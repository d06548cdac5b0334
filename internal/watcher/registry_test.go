package watcher

import "testing"

func TestRegistryRefreshMirrorsEnumeration(t *testing.T) {
	registry := NewRegistry()
	registry.Refresh([]Resource{
		{Name: "albedo", Path: "/tex/albedo.png"},
		{Name: "unsaved", Path: ""},
		{Name: "roughness", Path: "/tex/rough.png"},
		{Name: "albedo.001", Path: "/tex/albedo.png"},
	})

	entries := registry.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "/tex/albedo.png" || entries[0].DisplayName != "albedo" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[1].DisplayName != "roughness" {
		t.Fatalf("unexpected second entry %+v", entries[1])
	}
	for _, entry := range entries {
		if entry.Monitored {
			t.Fatalf("expected %s to start unmonitored", entry.ID)
		}
	}
}

func TestRegistryRefreshWipesSelections(t *testing.T) {
	registry := NewRegistry()
	registry.Refresh([]Resource{{Name: "tex", Path: "/a.png"}})
	if !registry.SetMonitored("/a.png", true) {
		t.Fatal("expected entry to exist")
	}

	registry.Refresh([]Resource{{Name: "tex", Path: "/a.png"}})

	entry, ok := registry.Lookup("/a.png")
	if !ok {
		t.Fatal("expected entry after refresh")
	}
	if entry.Monitored {
		t.Fatal("expected refresh to reset monitored flag")
	}
}

func TestRegistrySetMonitoredUnknownIsNoop(t *testing.T) {
	registry := NewRegistry()
	registry.Refresh([]Resource{{Name: "tex", Path: "/a.png"}})

	if registry.SetMonitored("/missing.png", true) {
		t.Fatal("expected unknown id to be reported")
	}
	if len(registry.ListMonitored()) != 0 {
		t.Fatal("expected nothing monitored")
	}
}

func TestRegistryListMonitoredKeepsOrder(t *testing.T) {
	registry := NewRegistry()
	registry.Refresh([]Resource{
		{Name: "a", Path: "/a.png"},
		{Name: "b", Path: "/b.png"},
		{Name: "c", Path: "/c.png"},
	})
	registry.SetMonitored("/c.png", true)
	registry.SetMonitored("/a.png", true)

	monitored := registry.ListMonitored()
	if len(monitored) != 2 || monitored[0].Path != "/a.png" || monitored[1].Path != "/c.png" {
		t.Fatalf("expected [/a.png /c.png], got %+v", monitored)
	}

	registry.SetMonitored("/a.png", false)
	if got := registry.ListMonitored(); len(got) != 1 || got[0].Path != "/c.png" {
		t.Fatalf("expected only /c.png, got %+v", got)
	}
}

func TestRegistryFindByNameOrID(t *testing.T) {
	registry := NewRegistry()
	registry.Refresh([]Resource{{Name: "albedo", Path: "/tex/albedo.png"}})

	if entry, ok := registry.Find("albedo"); !ok || entry.Path != "/tex/albedo.png" {
		t.Fatalf("expected lookup by name, got %+v, %v", entry, ok)
	}
	if _, ok := registry.Find("/tex/albedo.png"); !ok {
		t.Fatal("expected lookup by id")
	}
	if _, ok := registry.Find("normal"); ok {
		t.Fatal("expected unknown key to miss")
	}
}
