// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Pseudo-terminal output capture

//go:build !windows

package exec

import (
	"io"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
)

// startPTY starts cmd attached to a pseudo-terminal and returns its output.
// The child becomes a session leader so process-group signalling still works.
func startPTY(cmd *exec.Cmd) (io.ReadCloser, error) {
	f, err := pty.StartWithAttrs(cmd, nil, &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

const ptySupported = true
