package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"autorefresh/internal/resource"
)

func runList(args []string, out, errOut io.Writer) int {
	cfg, err := loadConfig(args, "autorefresh list")
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(errOut, err)
		return 1
	}
	manifest, err := resource.ParseManifestFile(cfg.Settings.Project.Manifest)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "NAME\tPATH\tSTATUS")
	for _, entry := range manifest.Entries {
		path := manifest.Resolve(entry.Path)
		fmt.Fprintf(writer, "%s\t%s\t%s\n", entry.Name, displayPath(path), fileStatus(path))
	}
	if err := writer.Flush(); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	return 0
}

func displayPath(path string) string {
	if path == "" {
		return "-"
	}
	return path
}

func fileStatus(path string) string {
	if path == "" {
		return "generated"
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "missing"
		}
		return "error"
	}
	return info.ModTime().Format("2006-01-02 15:04:05")
}
