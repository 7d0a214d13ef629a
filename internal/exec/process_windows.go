// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Windows-specific process handling

//go:build windows

package exec

import (
	"errors"
	"os"
	"os/exec"
)

// setPlatformProcessGroup configures platform-specific process attributes.
// On Windows, we don't set up process groups the same way as Unix.
func setPlatformProcessGroup(cmd *exec.Cmd) {
}

// killProcessGroup kills the process via TerminateProcess.
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return ignoreGone(cmd.Process.Kill())
}

// terminateProcessGroup attempts to stop the process.
// Windows has no SIGTERM for processes without a console, so we kill it.
func terminateProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return ignoreGone(cmd.Process.Kill())
}

// ignoreGone drops the error for a process that was already reaped
func ignoreGone(err error) error {
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
