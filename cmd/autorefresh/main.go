// Command autorefresh watches the files behind a project's resources and
// reloads them when an external editor saves a change.
package main

import "os"

func main() {
	deps := defaultCommandDeps()
	cmd, args := resolveCommand(os.Args[1:], deps)
	os.Exit(cmd.Run(args))
}
