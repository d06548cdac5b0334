package main

import (
	"io"
	"os"
)

type command interface {
	Run(args []string) int
}

type commandDeps struct {
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	RunWatch  func(args []string, in io.Reader, out, errOut io.Writer) int
	RunEdit   func(args []string, out, errOut io.Writer) int
	RunList   func(args []string, out, errOut io.Writer) int
	RunConfig func(args []string, out, errOut io.Writer) int
}

func defaultCommandDeps() commandDeps {
	return commandDeps{
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		RunWatch:  runWatch,
		RunEdit:   runEdit,
		RunList:   runList,
		RunConfig: runConfig,
	}
}

type watchCommand struct {
	deps commandDeps
}

func (c watchCommand) Run(args []string) int {
	return c.deps.RunWatch(args, c.deps.Stdin, c.deps.Stdout, c.deps.Stderr)
}

type editCommand struct {
	deps commandDeps
}

func (c editCommand) Run(args []string) int {
	return c.deps.RunEdit(args, c.deps.Stdout, c.deps.Stderr)
}

type listCommand struct {
	deps commandDeps
}

func (c listCommand) Run(args []string) int {
	return c.deps.RunList(args, c.deps.Stdout, c.deps.Stderr)
}

type configCommand struct {
	deps commandDeps
}

func (c configCommand) Run(args []string) int {
	return c.deps.RunConfig(args, c.deps.Stdout, c.deps.Stderr)
}

// resolveCommand picks the subcommand; anything else runs the watcher.
func resolveCommand(args []string, deps commandDeps) (command, []string) {
	if len(args) > 0 {
		switch args[0] {
		case "watch":
			return watchCommand{deps: deps}, args[1:]
		case "edit":
			return editCommand{deps: deps}, args[1:]
		case "list":
			return listCommand{deps: deps}, args[1:]
		case "config":
			return configCommand{deps: deps}, args[1:]
		}
	}
	return watchCommand{deps: deps}, args
}
