//go:build !windows

package process

import (
	"os/exec"
	"testing"
	"time"
)

func TestOpenExternalEditorDoesNotWait(t *testing.T) {
	sleep, err := exec.LookPath("sleep")
	if err != nil {
		t.Skip("sleep not available")
	}
	launcher := NewLauncher(LauncherOptions{})

	// sleep treats its argument as a duration, standing in for an editor
	// that stays open.
	started := time.Now()
	launch, err := launcher.OpenExternalEditor("2", sleep)
	if err != nil {
		t.Fatalf("open editor: %v", err)
	}
	if time.Since(started) > time.Second {
		t.Fatal("expected launcher to return before the process exits")
	}
	if launch.PID <= 0 {
		t.Fatalf("expected a pid, got %d", launch.PID)
	}
}
