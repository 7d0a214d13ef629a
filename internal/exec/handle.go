// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Handles for long-running server processes

package exec

import (
	"errors"
	"os/exec"
	"sync"

	"github.com/google/uuid"
)

// RunHandle tracks a detached process until it exits or is terminated
type RunHandle struct {
	ID  string
	PID int

	cmd      *exec.Cmd
	mu       sync.Mutex
	state    State
	exitCode int
	done     chan struct{}
}

func newRunHandle(cmd *exec.Cmd) *RunHandle {
	return &RunHandle{
		ID:    uuid.NewString(),
		PID:   cmd.Process.Pid,
		cmd:   cmd,
		state: StateRunning,
		done:  make(chan struct{}),
	}
}

// State returns the current lifecycle state
func (h *RunHandle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// ExitCode returns the exit code once the process has been reaped
func (h *RunHandle) ExitCode() (int, bool) {
	select {
	case <-h.done:
	default:
		return 0, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exitCode, true
}

// Done is closed once the process has been reaped
func (h *RunHandle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the process has been reaped and returns its exit code
func (h *RunHandle) Wait() int {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exitCode
}

// Terminate asks a running process group to stop and returns without
// waiting. Calling it on a handle that is no longer running does nothing.
func (h *RunHandle) Terminate() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != StateRunning {
		return nil
	}
	h.state = StateTerminated
	return terminateProcessGroup(h.cmd)
}

// finish records the exit of the process. A handle already marked
// terminated keeps that state.
func (h *RunHandle) finish(code int) {
	h.mu.Lock()
	if h.state == StateRunning {
		h.state = StateExited
	}
	h.exitCode = code
	h.mu.Unlock()
	close(h.done)
}

// Registry tracks live server handles so they can be torn down together
type Registry struct {
	mu      sync.Mutex
	handles map[string]*RunHandle
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]*RunHandle)}
}

// Track adds h to the registry. It is dropped again once it exits.
func (r *Registry) Track(h *RunHandle) {
	r.mu.Lock()
	r.handles[h.ID] = h
	r.mu.Unlock()

	go func() {
		<-h.Done()
		r.mu.Lock()
		delete(r.handles, h.ID)
		r.mu.Unlock()
	}()
}

// Live returns the handles that have not exited yet
func (r *Registry) Live() []*RunHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	live := make([]*RunHandle, 0, len(r.handles))
	for _, h := range r.handles {
		live = append(live, h)
	}
	return live
}

// Shutdown terminates every tracked handle
func (r *Registry) Shutdown() error {
	var errs []error
	for _, h := range r.Live() {
		if err := h.Terminate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
