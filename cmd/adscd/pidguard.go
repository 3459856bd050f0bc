package main

import (
	"fmt"
	"os"

	"github.com/sim-autonomy/adsc/pkg/logx"
	"github.com/sim-autonomy/adsc/pkg/pidfile"
)

// newPIDGuard enforces single-instance startup: check for a running
// instance, optionally force past a stale one, then create the PID file.
// Returns nil (having already logged and left the process exitable) if
// startup should abort.
func newPIDGuard(path string, force bool, logger *logx.Logger) *pidfile.PIDFile {
	pf := pidfile.New(path)

	running, existingPID, err := pf.CheckRunning()
	if err != nil {
		logger.Error("failed to check for running instance", "error", err)
		return nil
	}

	if running {
		if !force {
			logger.Error("another instance is already running", "existing_pid", existingPID, "pid_file", path)
			fmt.Fprintf(os.Stderr, "Error: adscd is already running with PID %d\n", existingPID)
			fmt.Fprintf(os.Stderr, "Use --force to override, or stop the existing instance first\n")
			return nil
		}
		logger.Warn("another instance is running, but force flag specified", "existing_pid", existingPID)
		if err := pf.ForceRemove(); err != nil {
			logger.Error("failed to remove existing PID file", "error", err)
			return nil
		}
	}

	if err := pf.Create(); err != nil {
		logger.Error("failed to create PID file", "error", err, "path", path)
		return nil
	}

	return pf
}
