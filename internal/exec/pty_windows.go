// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Pseudo-terminal output capture (unsupported)

//go:build windows

package exec

import (
	"errors"
	"io"
	"os/exec"
)

func startPTY(cmd *exec.Cmd) (io.ReadCloser, error) {
	return nil, errors.New("pseudo-terminal mode is not supported on windows")
}

const ptySupported = false
