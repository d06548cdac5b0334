package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"autorefresh/internal/logging"
	"autorefresh/internal/metrics"
	"autorefresh/internal/process"
)

// editor is the launcher surface runEdit needs; tests swap it.
type editor interface {
	OpenExternalEditor(path, editorCommand string) (process.Launch, error)
}

var newEditor = func(logger *logging.Logger) editor {
	return process.NewLauncher(process.LauncherOptions{Logger: logger, Metrics: metrics.Default})
}

func runEdit(args []string, out, errOut io.Writer) int {
	cfg, err := loadConfig(args, "autorefresh edit")
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(errOut, err)
		return 1
	}
	if len(cfg.Args) != 1 || strings.TrimSpace(cfg.Args[0]) == "" {
		fmt.Fprintln(errOut, "usage: autorefresh edit [options] PATH")
		return 2
	}

	logger := logging.NewLoggerWithOutput(nil, logLevelFor(cfg), errOut)
	launch, err := newEditor(logger).OpenExternalEditor(cfg.Args[0], cfg.Settings.Editor.Command)
	if err != nil {
		if errors.Is(err, process.ErrEditorNotConfigured) {
			fmt.Fprintln(errOut, "no external editor configured; set editor.command, --editor or $EDITOR")
		} else {
			fmt.Fprintln(errOut, err)
		}
		return 1
	}
	fmt.Fprintf(out, "opened %s in %s (pid %d)\n", launch.Path, launch.Command, launch.PID)
	return 0
}
