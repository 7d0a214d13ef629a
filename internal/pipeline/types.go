// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Pipeline types: requests, results and stage errors

package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sony-level/ktp-tester/internal/config"
	"github.com/sony-level/ktp-tester/internal/entrypoint"
	"github.com/sony-level/ktp-tester/internal/exec"
	"github.com/sony-level/ktp-tester/internal/fetcher"
	"github.com/sony-level/ktp-tester/internal/installer"
	"github.com/sony-level/ktp-tester/internal/logsink"
	"github.com/sony-level/ktp-tester/internal/workspace"
)

// FinishedNotice is the last system entry of a run that did not fail
const FinishedNotice = "Finished testing"

// Stage names a pipeline step
type Stage string

const (
	StageLocate      Stage = "locate"
	StageProvision   Stage = "provision"
	StageFetch       Stage = "fetch"
	StagePin         Stage = "checkout"
	StageEnvironment Stage = "environment"
	StageInstall     Stage = "install"
	StageDetect      Stage = "detect"
	StageExecute     Stage = "execute"
)

// StageError is returned when a fatal stage aborts the run
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return string(e.Stage) + " failed: " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Request is a single trigger
type Request struct {
	Reference string // Repository URL, optionally .../commit/<rev>
	Retain    bool   // Keep the workspace under the projects root
}

// Result describes a finished (or server-mode, still running) run
type Result struct {
	RunID      string
	Reference  fetcher.RepoReference
	Identity   fetcher.RepoIdentity
	Workspace  *workspace.Workspace
	Head       string                 // Checked-out commit
	Manifest   installer.Manifest     // Empty when the project declares no dependencies
	EntryPoint *entrypoint.EntryPoint // Nil when no entry file was found
	ExitCode   int                    // Script mode exit code
	Handle     *exec.RunHandle        // Server mode handle, live on return
	Duration   time.Duration
}

// Fetcher retrieves repositories into a workspace
type Fetcher interface {
	Clone(ctx context.Context, url, destination string, sink logsink.Sink) (*fetcher.FetchResult, error)
	Checkout(ctx context.Context, destination, revision string, sink logsink.Sink) (string, error)
}

// Options wires a pipeline to its collaborators
type Options struct {
	Config   *config.Config // Default: config.DefaultConfig()
	Sink     logsink.Sink   // Receives every pipeline event
	Logger   *log.Logger    // Diagnostics
	Registry *exec.Registry // Tracks server handles; default: a private registry
	OpenURL  exec.URLOpener // Ready-signal side effect (default: system browser)
	Fetcher  Fetcher        // Default: git via go-git
}

// gitFetcher adapts the fetcher package to the Fetcher interface
type gitFetcher struct{}

func (gitFetcher) Clone(ctx context.Context, url, destination string, sink logsink.Sink) (*fetcher.FetchResult, error) {
	return fetcher.Clone(ctx, url, destination, sink)
}

func (gitFetcher) Checkout(ctx context.Context, destination, revision string, sink logsink.Sink) (string, error) {
	return fetcher.Checkout(ctx, destination, revision, sink)
}
