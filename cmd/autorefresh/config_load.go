package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"autorefresh"
	"autorefresh/internal/cli"
	"autorefresh/internal/config"
	"autorefresh/internal/logging"
)

const defaultSettingsPath = "autorefresh.toml"

type Config struct {
	SettingsPath string
	Settings     config.Settings
	Args         []string
	Verbose      bool
	Quiet        bool
	ShowVersion  bool
	Sources      map[string]configSource
}

type configSource string

const (
	sourceDefault configSource = "default"
	sourceFile    configSource = "file"
	sourceEnv     configSource = "env"
	sourceFlag    configSource = "flag"
)

type flagValues struct {
	ConfigPath    string
	Manifest      string
	Interval      float64
	Editor        string
	AutoEnable    bool
	EventsAddr    string
	DocumentWatch bool
	Overrides     cli.OverrideList
	Verbose       bool
	Quiet         bool
	Help          bool
	Version       bool
	Args          []string
	Set           map[string]bool
}

type helpOption struct {
	Name string
	Desc string
}

// flagKeys maps dedicated flags to the setting they override.
var flagKeys = map[string]string{
	"manifest":       config.KeyManifest,
	"interval":       config.KeyRefreshInterval,
	"editor":         config.KeyEditorCommand,
	"auto-enable":    config.KeyAutoEnable,
	"events-addr":    config.KeyEventsAddr,
	"document-watch": config.KeyWatchDocument,
}

// envKeys maps dedicated environment variables to the setting they override.
var envKeys = []struct {
	Name string
	Key  string
}{
	{Name: "AUTOREFRESH_MANIFEST", Key: config.KeyManifest},
	{Name: "AUTOREFRESH_INTERVAL", Key: config.KeyRefreshInterval},
	{Name: "AUTOREFRESH_EDITOR", Key: config.KeyEditorCommand},
	{Name: "AUTOREFRESH_AUTO_ENABLE", Key: config.KeyAutoEnable},
	{Name: "AUTOREFRESH_EVENTS_ADDR", Key: config.KeyEventsAddr},
	{Name: "AUTOREFRESH_DOCUMENT_WATCH", Key: config.KeyWatchDocument},
	{Name: "AUTOREFRESH_LOG_LEVEL", Key: config.KeyLogLevel},
}

// loadConfig layers settings as default < file < env < flag.
func loadConfig(args []string, name string) (Config, error) {
	flags, err := parseFlags(args, name)
	if err != nil {
		return Config{}, err
	}

	settingsPath := defaultSettingsPath
	if raw := strings.TrimSpace(os.Getenv("AUTOREFRESH_CONFIG")); raw != "" {
		settingsPath = raw
	}
	if flags.Set["config"] {
		settingsPath = strings.TrimSpace(flags.ConfigPath)
	}

	overrides := make(map[string]any)
	origins := make(map[string]configSource)

	envOverrides, err := parseConfigOverridesEnv(os.Getenv("AUTOREFRESH_SET"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid AUTOREFRESH_SET: %w", err)
	}
	for key, value := range envOverrides {
		overrides[key] = value
		origins[key] = sourceEnv
	}
	for _, env := range envKeys {
		raw := strings.TrimSpace(os.Getenv(env.Name))
		if raw == "" {
			continue
		}
		overrides[env.Key] = parseOverrideValue(raw)
		origins[env.Key] = sourceEnv
	}

	flagOverrides, err := parseConfigOverrides(flags.Overrides)
	if err != nil {
		return Config{}, fmt.Errorf("invalid --set: %w", err)
	}
	for key, value := range flagOverrides {
		overrides[key] = value
		origins[key] = sourceFlag
	}
	for flagName, key := range flagKeys {
		if !flags.Set[flagName] {
			continue
		}
		value, err := flagValue(flagName, flags)
		if err != nil {
			return Config{}, err
		}
		overrides[key] = value
		origins[key] = sourceFlag
	}

	settings, err := config.LoadSettings(settingsPath, autorefresh.DefaultSettings, overrides)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		SettingsPath: settingsPath,
		Settings:     settings,
		Args:         flags.Args,
		Verbose:      flags.Verbose,
		Quiet:        flags.Quiet,
		ShowVersion:  flags.Version,
		Sources:      make(map[string]configSource, len(config.Keys)),
	}
	for _, key := range config.Keys {
		if origin, ok := origins[key]; ok {
			cfg.Sources[key] = origin
			continue
		}
		if settings.Source(key) == config.SourceFile {
			cfg.Sources[key] = sourceFile
		} else {
			cfg.Sources[key] = sourceDefault
		}
	}

	if cfg.Settings.Editor.Command == "" {
		for _, name := range []string{"VISUAL", "EDITOR"} {
			if raw := strings.TrimSpace(os.Getenv(name)); raw != "" {
				cfg.Settings.Editor.Command = raw
				cfg.Sources[config.KeyEditorCommand] = sourceEnv
				break
			}
		}
	}
	return cfg, nil
}

func flagValue(flagName string, flags flagValues) (any, error) {
	switch flagName {
	case "manifest":
		trimmed := strings.TrimSpace(flags.Manifest)
		if trimmed == "" {
			return nil, fmt.Errorf("invalid --manifest: value cannot be empty")
		}
		return trimmed, nil
	case "interval":
		if flags.Interval <= 0 {
			return nil, fmt.Errorf("invalid --interval: must be > 0")
		}
		return flags.Interval, nil
	case "editor":
		return strings.TrimSpace(flags.Editor), nil
	case "auto-enable":
		return flags.AutoEnable, nil
	case "events-addr":
		return strings.TrimSpace(flags.EventsAddr), nil
	case "document-watch":
		return flags.DocumentWatch, nil
	default:
		return nil, fmt.Errorf("unknown flag %q", flagName)
	}
}

func parseFlags(args []string, name string) (flagValues, error) {
	if args == nil {
		args = []string{}
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", defaultSettingsPath, "Settings file")
	manifest := fs.String("manifest", "", "Project manifest")
	interval := fs.Float64("interval", config.DefaultRefreshInterval, "Refresh interval in seconds")
	editor := fs.String("editor", "", "External editor executable")
	autoEnable := fs.Bool("auto-enable", false, "Start monitoring immediately")
	eventsAddr := fs.String("events-addr", "", "Events server listen address")
	documentWatch := fs.Bool("document-watch", true, "Stop monitoring when the manifest is rewritten")
	verbose := fs.Bool("verbose", false, "Enable verbose logging")
	quiet := fs.Bool("quiet", false, "Reduce logging to warnings")
	overrides := cli.AddSetFlag(fs, "")
	helpVersion := cli.AddHelpVersionFlags(fs, "Show help", "Print version and exit")

	fs.Usage = func() {
		printHelp(fs.Output(), name)
	}

	if err := fs.Parse(args); err != nil {
		return flagValues{}, err
	}

	set := make(map[string]bool)
	fs.Visit(func(flag *flag.Flag) {
		set[flag.Name] = true
	})

	flags := flagValues{
		ConfigPath:    *configPath,
		Manifest:      *manifest,
		Interval:      *interval,
		Editor:        *editor,
		AutoEnable:    *autoEnable,
		EventsAddr:    *eventsAddr,
		DocumentWatch: *documentWatch,
		Overrides:     *overrides,
		Verbose:       *verbose,
		Quiet:         *quiet,
		Help:          helpVersion.Help,
		Version:       helpVersion.Version,
		Args:          fs.Args(),
		Set:           set,
	}

	if flags.Help {
		fs.SetOutput(os.Stdout)
		fs.Usage()
		return flags, flag.ErrHelp
	}
	return flags, nil
}

func printHelp(out io.Writer, name string) {
	usage := name
	switch name {
	case "autorefresh edit":
		usage += " [options] PATH"
	default:
		usage += " [options]"
	}
	fmt.Fprintf(out, "Usage: %s\n", usage)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Reload project resources when their files change on disk.")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Commands: watch (default), edit PATH, list, config")

	writeOptionGroup(out, "Settings", []helpOption{
		{Name: "--config FILE", Desc: fmt.Sprintf("Settings file (env: AUTOREFRESH_CONFIG, default: %s)", defaultSettingsPath)},
		{Name: "--manifest FILE", Desc: "Project manifest (env: AUTOREFRESH_MANIFEST, default: autorefresh.yaml)"},
		{Name: "--set KEY=VALUE", Desc: "Override any setting, repeatable (env: AUTOREFRESH_SET, comma separated)"},
	})
	writeOptionGroup(out, "Monitoring", []helpOption{
		{Name: "--interval SECONDS", Desc: fmt.Sprintf("Refresh interval, %.1f to %.1f (env: AUTOREFRESH_INTERVAL, default: %.1f)", config.MinRefreshInterval, config.MaxRefreshInterval, config.DefaultRefreshInterval)},
		{Name: "--auto-enable", Desc: "Start monitoring immediately (env: AUTOREFRESH_AUTO_ENABLE)"},
		{Name: "--document-watch", Desc: "Stop monitoring when the manifest is rewritten (env: AUTOREFRESH_DOCUMENT_WATCH, default: true)"},
		{Name: "--editor COMMAND", Desc: "External editor executable (env: AUTOREFRESH_EDITOR, VISUAL, EDITOR)"},
	})
	writeOptionGroup(out, "Output", []helpOption{
		{Name: "--events-addr ADDR", Desc: "Serve /events and /metrics on ADDR (env: AUTOREFRESH_EVENTS_ADDR)"},
		{Name: "--verbose", Desc: "Enable verbose logging"},
		{Name: "--quiet", Desc: "Reduce logging to warnings"},
		{Name: "-h, --help", Desc: "Show help"},
		{Name: "-v, --version", Desc: "Print version and exit"},
	})
}

func writeOptionGroup(out io.Writer, title string, options []helpOption) {
	if len(options) == 0 {
		return
	}
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, title+":")
	for _, option := range options {
		fmt.Fprintf(out, "  %-24s %s\n", option.Name, option.Desc)
	}
}

func logLevelFor(cfg Config) logging.Level {
	if cfg.Verbose {
		return logging.LevelDebug
	}
	if cfg.Quiet {
		return logging.LevelWarning
	}
	if level, ok := logging.ParseLevel(cfg.Settings.Log.Level); ok {
		return level
	}
	return logging.LevelInfo
}

func formatSources(cfg Config) []string {
	lines := make([]string, 0, len(config.Keys))
	for _, key := range config.Keys {
		lines = append(lines, fmt.Sprintf("%s = %s (%s)", key, strconv.Quote(cfg.Settings.Value(key)), cfg.Sources[key]))
	}
	return lines
}
