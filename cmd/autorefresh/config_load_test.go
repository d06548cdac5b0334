package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"autorefresh/internal/config"
	"autorefresh/internal/logging"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"AUTOREFRESH_CONFIG",
		"AUTOREFRESH_SET",
		"AUTOREFRESH_MANIFEST",
		"AUTOREFRESH_INTERVAL",
		"AUTOREFRESH_EDITOR",
		"AUTOREFRESH_AUTO_ENABLE",
		"AUTOREFRESH_EVENTS_ADDR",
		"AUTOREFRESH_DOCUMENT_WATCH",
		"AUTOREFRESH_LOG_LEVEL",
		"VISUAL",
		"EDITOR",
	} {
		t.Setenv(name, "")
	}
}

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "autorefresh.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)
	missing := filepath.Join(t.TempDir(), "none.toml")

	cfg, err := loadConfig([]string{"--config", missing}, "autorefresh")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Settings.Monitor.RefreshInterval != config.DefaultRefreshInterval {
		t.Fatalf("expected default interval, got %v", cfg.Settings.Monitor.RefreshInterval)
	}
	for _, key := range config.Keys {
		if cfg.Sources[key] != sourceDefault {
			t.Fatalf("expected default source for %s, got %q", key, cfg.Sources[key])
		}
	}
}

func TestLoadConfigLayering(t *testing.T) {
	clearConfigEnv(t)
	path := writeSettings(t, "[monitor]\nrefresh-interval = 2.0\n[editor]\ncommand = \"krita\"\n[log]\nlevel = \"warning\"\n")
	t.Setenv("AUTOREFRESH_INTERVAL", "3")
	t.Setenv("AUTOREFRESH_SET", "events.addr=127.0.0.1:0")

	cfg, err := loadConfig([]string{"--config", path, "--interval", "4", "--set", "project.watch-document=false"}, "autorefresh")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Settings.Monitor.RefreshInterval != 4 || cfg.Sources[config.KeyRefreshInterval] != sourceFlag {
		t.Fatalf("expected flag interval, got %v (%s)", cfg.Settings.Monitor.RefreshInterval, cfg.Sources[config.KeyRefreshInterval])
	}
	if cfg.Settings.Editor.Command != "krita" || cfg.Sources[config.KeyEditorCommand] != sourceFile {
		t.Fatalf("expected file editor, got %q (%s)", cfg.Settings.Editor.Command, cfg.Sources[config.KeyEditorCommand])
	}
	if cfg.Settings.Events.Addr != "127.0.0.1:0" || cfg.Sources[config.KeyEventsAddr] != sourceEnv {
		t.Fatalf("expected env events addr, got %q (%s)", cfg.Settings.Events.Addr, cfg.Sources[config.KeyEventsAddr])
	}
	if cfg.Settings.Project.WatchDocument || cfg.Sources[config.KeyWatchDocument] != sourceFlag {
		t.Fatalf("expected --set to disable document watch")
	}
	if logLevelFor(cfg) != logging.LevelWarning {
		t.Fatalf("expected warning level, got %q", logLevelFor(cfg))
	}
}

func TestLoadConfigEnvBeatsFile(t *testing.T) {
	clearConfigEnv(t)
	path := writeSettings(t, "[monitor]\nrefresh-interval = 2.0\n")
	t.Setenv("AUTOREFRESH_CONFIG", path)
	t.Setenv("AUTOREFRESH_INTERVAL", "3")
	t.Setenv("AUTOREFRESH_AUTO_ENABLE", "true")

	cfg, err := loadConfig(nil, "autorefresh")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SettingsPath != path {
		t.Fatalf("expected settings path from env, got %q", cfg.SettingsPath)
	}
	if cfg.Settings.Monitor.RefreshInterval != 3 || cfg.Sources[config.KeyRefreshInterval] != sourceEnv {
		t.Fatalf("expected env interval, got %v", cfg.Settings.Monitor.RefreshInterval)
	}
	if !cfg.Settings.Monitor.AutoEnable {
		t.Fatal("expected auto-enable from env")
	}
}

func TestLoadConfigEditorFallback(t *testing.T) {
	clearConfigEnv(t)
	missing := filepath.Join(t.TempDir(), "none.toml")
	t.Setenv("EDITOR", "vim")

	cfg, err := loadConfig([]string{"--config", missing}, "autorefresh")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Settings.Editor.Command != "vim" || cfg.Sources[config.KeyEditorCommand] != sourceEnv {
		t.Fatalf("expected $EDITOR fallback, got %q", cfg.Settings.Editor.Command)
	}

	t.Setenv("VISUAL", "gimp")
	cfg, err = loadConfig([]string{"--config", missing}, "autorefresh")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Settings.Editor.Command != "gimp" {
		t.Fatalf("expected $VISUAL to win, got %q", cfg.Settings.Editor.Command)
	}
}

func TestLoadConfigRejectsInvalidFlags(t *testing.T) {
	clearConfigEnv(t)
	missing := filepath.Join(t.TempDir(), "none.toml")
	cases := [][]string{
		{"--config", missing, "--interval", "0"},
		{"--config", missing, "--manifest", " "},
		{"--config", missing, "--set", "novalue"},
		{"--config", missing, "--unknown"},
	}
	for _, args := range cases {
		if _, err := loadConfig(args, "autorefresh"); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestLoadConfigHelpAndVersion(t *testing.T) {
	clearConfigEnv(t)
	if _, err := loadConfig([]string{"--help"}, "autorefresh"); !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected flag.ErrHelp, got %v", err)
	}
	missing := filepath.Join(t.TempDir(), "none.toml")
	cfg, err := loadConfig([]string{"--config", missing, "-v"}, "autorefresh")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.ShowVersion {
		t.Fatal("expected version flag")
	}
}

func TestLoadConfigKeepsPositionalArgs(t *testing.T) {
	clearConfigEnv(t)
	missing := filepath.Join(t.TempDir(), "none.toml")
	cfg, err := loadConfig([]string{"--config", missing, "--editor", "gimp", "art/hero.png"}, "autorefresh edit")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.Args) != 1 || cfg.Args[0] != "art/hero.png" {
		t.Fatalf("unexpected args %v", cfg.Args)
	}
	if cfg.Settings.Editor.Command != "gimp" {
		t.Fatalf("expected --editor, got %q", cfg.Settings.Editor.Command)
	}
}

func TestLogLevelFor(t *testing.T) {
	cfg := Config{Settings: config.Settings{Log: config.LogSettings{Level: "debug"}}}
	if logLevelFor(cfg) != logging.LevelDebug {
		t.Fatal("expected debug from settings")
	}
	cfg.Quiet = true
	if logLevelFor(cfg) != logging.LevelWarning {
		t.Fatal("expected --quiet to win over settings")
	}
	cfg.Verbose = true
	if logLevelFor(cfg) != logging.LevelDebug {
		t.Fatal("expected --verbose to win")
	}
	if logLevelFor(Config{Settings: config.Settings{Log: config.LogSettings{Level: "loud"}}}) != logging.LevelInfo {
		t.Fatal("expected info fallback")
	}
}

func TestPrintHelpMentionsEnv(t *testing.T) {
	var out strings.Builder
	printHelp(&out, "autorefresh")
	for _, want := range []string{"AUTOREFRESH_INTERVAL", "--set KEY=VALUE", "--events-addr ADDR"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("help missing %q", want)
		}
	}
}
