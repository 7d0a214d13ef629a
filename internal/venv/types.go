// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Environment builder types

package venv

import (
	"errors"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"

	"github.com/sony-level/ktp-tester/internal/exec"
	"github.com/sony-level/ktp-tester/internal/logsink"
)

// ErrEnvironment is returned when the isolated environment cannot be created
var ErrEnvironment = errors.New("environment creation failed")

// Environment is an isolated Python environment inside a workspace
type Environment struct {
	Root        string // <workspace>/env
	Interpreter string // Python executable inside Root
}

// BuilderConfig configures the environment builder
type BuilderConfig struct {
	Python string       // Base interpreter override (default: python3, python, py on PATH)
	Runner *exec.Runner // Runs the installer upgrade
	Sink   logsink.Sink
	Logger *log.Logger
}

// InterpreterPath returns the interpreter location for an environment root
func InterpreterPath(root string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(root, "Scripts", "python.exe")
	}
	return filepath.Join(root, "bin", "python")
}
