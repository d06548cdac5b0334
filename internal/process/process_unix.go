//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// configureDetached moves the editor into its own process group so terminal
// signals aimed at the host do not reach it.
func configureDetached(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
