// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Execution types and interfaces

package exec

import (
	"regexp"

	"github.com/charmbracelet/log"
	"github.com/pkg/browser"

	"github.com/sony-level/ktp-tester/internal/logsink"
)

// DefaultReadyPattern matches the line a local web app prints once it accepts
// connections. The first capture group is the advertised URL.
const DefaultReadyPattern = `Local URL:\s*(\S+)`

// maxLineSize bounds a single output line
const maxLineSize = 1024 * 1024

// Command describes a process to start
type Command struct {
	Path string      // Executable
	Args []string    // Arguments, without the executable
	Dir  string      // Working directory
	Env  []string    // KEY=VALUE pairs added to the inherited environment
	Tag  logsink.Tag // Tag for output lines (default: student)
}

// URLOpener opens a URL, usually in the default browser
type URLOpener func(url string) error

// DefaultOpener opens URLs in the system browser
var DefaultOpener URLOpener = browser.OpenURL

// RunnerConfig configures the process runner
type RunnerConfig struct {
	Sink         logsink.Sink   // Receives every output line
	Logger       *log.Logger    // Diagnostics (optional)
	UsePTY       bool           // Attach blocking runs to a pseudo-terminal (Unix only)
	OpenURL      URLOpener      // Called once per server run with the ready URL
	ReadyPattern *regexp.Regexp // Ready-signal matcher (default: DefaultReadyPattern)
}

// State is the lifecycle state of a RunHandle
type State int

const (
	// StateRunning means the process has been started and not yet reaped
	StateRunning State = iota
	// StateExited means the process ended on its own
	StateExited
	// StateTerminated means Terminate was called while it was running
	StateTerminated
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
