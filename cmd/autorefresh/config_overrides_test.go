package main

import (
	"reflect"
	"testing"
)

func TestParseConfigOverrides(t *testing.T) {
	overrides, err := parseConfigOverrides([]string{
		"monitor.refresh_interval=2.5",
		"monitor.auto-enable=TRUE",
		"editor.command=krita --nosplash",
		"events.addr=127.0.0.1:7070",
		"Log.Level = debug",
	})
	if err != nil {
		t.Fatalf("parse overrides: %v", err)
	}
	want := map[string]any{
		"monitor.refresh-interval": 2.5,
		"monitor.auto-enable":      true,
		"editor.command":           "krita --nosplash",
		"events.addr":              "127.0.0.1:7070",
		"log.level":                "debug",
	}
	if !reflect.DeepEqual(overrides, want) {
		t.Fatalf("expected %#v, got %#v", want, overrides)
	}
}

func TestParseConfigOverridesRejectsMalformed(t *testing.T) {
	for _, entry := range []string{"", "novalue", "=x"} {
		if _, err := parseConfigOverrides([]string{entry}); err == nil {
			t.Fatalf("expected error for %q", entry)
		}
	}
}

func TestParseConfigOverridesEnv(t *testing.T) {
	overrides, err := parseConfigOverridesEnv(" monitor.refresh-interval=3 , log.level=warning ")
	if err != nil {
		t.Fatalf("parse env overrides: %v", err)
	}
	if overrides["monitor.refresh-interval"] != int64(3) || overrides["log.level"] != "warning" {
		t.Fatalf("unexpected overrides: %#v", overrides)
	}
	if _, err := parseConfigOverridesEnv("a=1,,b=2"); err == nil {
		t.Fatal("expected empty entry error")
	}
	if overrides, err := parseConfigOverridesEnv("  "); err != nil || overrides != nil {
		t.Fatalf("expected nil overrides, got %#v %v", overrides, err)
	}
}
