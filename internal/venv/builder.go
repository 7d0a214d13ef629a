// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Isolated environment creation

package venv

import (
	"context"
	"fmt"
	"io"
	"os"
	osexec "os/exec"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/sony-level/ktp-tester/internal/exec"
	"github.com/sony-level/ktp-tester/internal/logsink"
	"github.com/sony-level/ktp-tester/internal/prereq"
	"github.com/sony-level/ktp-tester/internal/workspace"
)

// Builder creates the per-workspace environment
type Builder struct {
	python  string
	runner  *exec.Runner
	sink    logsink.Sink
	logger  *log.Logger
	checker *prereq.Checker
}

// NewBuilder creates a new environment builder
func NewBuilder(config *BuilderConfig) *Builder {
	if config == nil {
		config = &BuilderConfig{}
	}

	b := &Builder{
		python:  config.Python,
		runner:  config.Runner,
		sink:    config.Sink,
		logger:  config.Logger,
		checker: prereq.NewChecker(),
	}
	if b.sink == nil {
		b.sink = logsink.Discard
	}
	if b.logger == nil {
		b.logger = log.New(io.Discard)
	}
	if b.runner == nil {
		b.runner = exec.NewRunner(&exec.RunnerConfig{Sink: b.sink, Logger: b.logger})
	}
	return b
}

// Build creates <ws>/env with the base interpreter, then upgrades the
// package installer inside it. Creation failures are fatal; a failed
// upgrade only produces a warning.
func (b *Builder) Build(ctx context.Context, ws *workspace.Workspace) (*Environment, error) {
	base, err := b.checker.Resolve("python", b.python)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnvironment, err)
	}

	env := &Environment{
		Root:        ws.EnvPath(),
		Interpreter: InterpreterPath(ws.EnvPath()),
	}

	b.sink.Append("Creating virtual environment in "+env.Root, logsink.TagSystem)
	b.logger.Debug("creating environment", "python", base, "root", env.Root)

	// Creation output is captured, not streamed
	cmd := osexec.CommandContext(ctx, base, "-m", "venv", env.Root)
	cmd.Dir = ws.Root
	if out, err := cmd.CombinedOutput(); err != nil {
		detail := strings.TrimSpace(string(out))
		if detail != "" {
			return nil, fmt.Errorf("%w: %s -m venv %s: %w\n%s", ErrEnvironment, base, env.Root, err, detail)
		}
		return nil, fmt.Errorf("%w: %s -m venv %s: %w", ErrEnvironment, base, env.Root, err)
	}

	if _, err := os.Stat(env.Interpreter); err != nil {
		return nil, fmt.Errorf("%w: interpreter missing after creation: %w", ErrEnvironment, err)
	}

	b.upgradeInstaller(ctx, ws, env)
	return env, nil
}

// upgradeInstaller runs "pip install --upgrade pip" tagged system
func (b *Builder) upgradeInstaller(ctx context.Context, ws *workspace.Workspace, env *Environment) {
	code, err := b.runner.RunBlocking(ctx, exec.Command{
		Path: env.Interpreter,
		Args: []string{"-m", "pip", "install", "--upgrade", "pip"},
		Dir:  ws.Root,
		Tag:  logsink.TagSystem,
	})

	switch {
	case err != nil:
		b.sink.Append(fmt.Sprintf("Could not upgrade pip: %v", err), logsink.TagWarning)
	case code != 0:
		b.sink.Append(fmt.Sprintf("Could not upgrade pip (exit code %d)", code), logsink.TagWarning)
	}
}
