// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Process runner with streaming output

package exec

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"

	"github.com/charmbracelet/log"

	"github.com/sony-level/ktp-tester/internal/logsink"
)

// Runner starts processes and streams their combined output to a sink
type Runner struct {
	config *RunnerConfig
	sink   logsink.Sink
	logger *log.Logger
	ready  *regexp.Regexp
	open   URLOpener
}

// NewRunner creates a new process runner
func NewRunner(config *RunnerConfig) *Runner {
	if config == nil {
		config = &RunnerConfig{}
	}

	r := &Runner{
		config: config,
		sink:   config.Sink,
		logger: config.Logger,
		ready:  config.ReadyPattern,
		open:   config.OpenURL,
	}
	if r.sink == nil {
		r.sink = logsink.Discard
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	if r.ready == nil {
		r.ready = regexp.MustCompile(DefaultReadyPattern)
	}
	if r.open == nil {
		r.open = DefaultOpener
	}
	return r
}

// RunBlocking runs cmd to completion, delivering each output line to the sink
// in order, and returns the exit code. A non-zero exit is not an error; err
// is only set when the process could not be started.
func (r *Runner) RunBlocking(ctx context.Context, c Command) (int, error) {
	cmd := r.build(ctx, c)

	// Kill the whole group when the context is cancelled
	cmd.Cancel = func() error { return killProcessGroup(cmd) }

	output, err := r.start(cmd, r.config.UsePTY)
	if err != nil {
		return -1, fmt.Errorf("failed to start %s: %w", c.Path, err)
	}
	defer output.Close()

	r.logger.Debug("process started", "pid", cmd.Process.Pid, "path", c.Path, "dir", c.Dir)

	tag := tagOf(c)
	for line := range streamLines(output) {
		r.sink.Append(line, tag)
	}

	code := exitCode(cmd.Wait())
	if ctxErr := ctx.Err(); ctxErr != nil {
		return code, fmt.Errorf("%s interrupted: %w", c.Path, ctxErr)
	}

	r.logger.Debug("process exited", "pid", cmd.Process.Pid, "code", code)
	return code, nil
}

// RunDetached starts cmd and returns immediately with a live handle.
// A background goroutine forwards output to the sink and, on the first line
// matching the ready pattern, opens the advertised URL exactly once. Another
// reaps the process and settles the handle as soon as it exits.
// The process is not tied to any context: only Terminate or its own exit
// ends it.
func (r *Runner) RunDetached(c Command) (*RunHandle, error) {
	cmd := r.build(context.Background(), c)

	output, err := r.start(cmd, false)
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", c.Path, err)
	}

	h := newRunHandle(cmd)
	r.logger.Debug("server started", "pid", h.PID, "id", h.ID, "path", c.Path)

	// Output may outlive the process when a child inherits the pipe, so
	// reaping does not wait for EOF
	go func() {
		defer output.Close()

		tag := tagOf(c)
		opened := false
		for line := range streamLines(output) {
			r.sink.Append(line, tag)

			if opened {
				continue
			}
			if url, ok := r.matchReady(line); ok {
				opened = true
				r.logger.Debug("ready signal", "url", url)
				if err := r.open(url); err != nil {
					r.sink.Append(fmt.Sprintf("Could not open %s: %v", url, err), logsink.TagWarning)
				}
			}
		}
	}()

	go func() {
		h.finish(exitCode(cmd.Wait()))
		r.logger.Debug("server finished", "id", h.ID, "state", h.State())
	}()

	return h, nil
}

// matchReady returns the URL advertised by a ready-signal line
func (r *Runner) matchReady(line string) (string, bool) {
	m := r.ready.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	if len(m) > 1 && m[1] != "" {
		return m[1], true
	}
	return m[0], true
}

// build creates the exec.Cmd for c
func (r *Runner) build(ctx context.Context, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	return cmd
}

// start launches cmd with stdout and stderr merged into one stream
func (r *Runner) start(cmd *exec.Cmd, usePTY bool) (io.ReadCloser, error) {
	if usePTY && ptySupported {
		return startPTY(cmd)
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create output pipe: %w", err)
	}

	cmd.Stdout = pw
	cmd.Stderr = pw
	setPlatformProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, err
	}

	// The child holds its own copy of the write end
	pw.Close()
	return pr, nil
}

// streamLines reads r on a dedicated goroutine and sends each line, without
// its line ending, on the returned channel. The channel closes at EOF or on
// a read error (a pty reports EIO once the child exits).
func streamLines(r io.Reader) <-chan string {
	lines := make(chan string, 64)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := scanner.Text()
			if n := len(line); n > 0 && line[n-1] == '\r' {
				line = line[:n-1]
			}
			lines <- line
		}
	}()
	return lines
}

// exitCode extracts the process exit code from a Wait error
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func tagOf(c Command) logsink.Tag {
	if c.Tag == "" {
		return logsink.TagStudent
	}
	return c.Tag
}
