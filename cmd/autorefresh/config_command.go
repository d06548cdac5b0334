package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
)

func runConfig(args []string, out, errOut io.Writer) int {
	cfg, err := loadConfig(args, "autorefresh config")
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintf(out, "# settings file: %s\n", cfg.SettingsPath)
	for _, line := range formatSources(cfg) {
		fmt.Fprintln(out, line)
	}
	return 0
}
