// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Sequential execution pipeline

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sony-level/ktp-tester/internal/config"
	"github.com/sony-level/ktp-tester/internal/entrypoint"
	"github.com/sony-level/ktp-tester/internal/exec"
	"github.com/sony-level/ktp-tester/internal/fetcher"
	"github.com/sony-level/ktp-tester/internal/installer"
	"github.com/sony-level/ktp-tester/internal/logsink"
	"github.com/sony-level/ktp-tester/internal/venv"
	"github.com/sony-level/ktp-tester/internal/workspace"
)

// Pipeline runs repositories: fetch, environment, install, detect, execute.
// A Pipeline holds no per-run state and may run several requests at once.
type Pipeline struct {
	config    *config.Config
	sink      logsink.Sink
	logger    *log.Logger
	registry  *exec.Registry
	fetcher   Fetcher
	runner    *exec.Runner
	builder   *venv.Builder
	installer *installer.Installer
	detector  *entrypoint.Detector
}

// New creates a pipeline
func New(opts *Options) (*Pipeline, error) {
	if opts == nil {
		opts = &Options{}
	}

	p := &Pipeline{
		config:   opts.Config,
		sink:     opts.Sink,
		logger:   opts.Logger,
		registry: opts.Registry,
		fetcher:  opts.Fetcher,
	}
	if p.config == nil {
		p.config = config.DefaultConfig()
	}
	if p.sink == nil {
		p.sink = logsink.Discard
	}
	if p.logger == nil {
		p.logger = log.New(io.Discard)
	}
	if p.registry == nil {
		p.registry = exec.NewRegistry()
	}
	if p.fetcher == nil {
		p.fetcher = gitFetcher{}
	}

	ready, err := p.config.ReadyPattern()
	if err != nil {
		return nil, fmt.Errorf("invalid ready pattern: %w", err)
	}

	p.runner = exec.NewRunner(&exec.RunnerConfig{
		Sink:         p.sink,
		Logger:       p.logger,
		UsePTY:       p.config.Runner.PTY,
		OpenURL:      opts.OpenURL,
		ReadyPattern: ready,
	})
	p.builder = venv.NewBuilder(&venv.BuilderConfig{
		Python: p.config.Python,
		Runner: p.runner,
		Sink:   p.sink,
		Logger: p.logger,
	})
	p.installer = installer.NewInstaller(&installer.InstallerConfig{
		ManifestName: p.config.Manifest,
		Runner:       p.runner,
		Sink:         p.sink,
		Logger:       p.logger,
	})
	p.detector = entrypoint.NewDetector(&entrypoint.DetectorConfig{
		Marker:      p.config.Server.Marker,
		ScriptNames: p.config.Entry.Script,
		ServerNames: p.config.Entry.Server,
	})
	return p, nil
}

// Registry returns the registry tracking this pipeline's server handles
func (p *Pipeline) Registry() *exec.Registry {
	return p.registry
}

// Run executes req to completion. Fatal stage failures produce one error
// entry and a *StageError. A missing entry file ends the run with a warning
// and no error. In server mode Run returns as soon as the server is started;
// the live handle is in the result and tracked by the registry.
func (p *Pipeline) Run(ctx context.Context, req Request) (result *Result, err error) {
	start := time.Now()
	result = &Result{}
	defer func() { result.Duration = time.Since(start) }()

	raw := strings.TrimSpace(req.Reference)
	result.Reference = fetcher.Parse(raw)

	result.Identity, err = fetcher.Identify(result.Reference.FetchURL)
	if err != nil {
		return result, p.fail(StageLocate, err)
	}

	ws, err := workspace.Provision(&workspace.WorkspaceConfig{
		ProjectsRoot: p.config.ProjectsRoot,
		TempRoot:     p.config.TempRoot,
	}, result.Identity, req.Retain)
	if err != nil {
		return result, p.fail(StageProvision, err)
	}
	result.Workspace = ws
	result.RunID = ws.RunID
	defer p.release(result)

	p.logger.Debug("workspace provisioned", "run", ws.RunID, "root", ws.Root, "retained", ws.Retained)

	fetched, err := p.fetcher.Clone(ctx, result.Reference.FetchURL, ws.Root, p.sink)
	if err != nil {
		return result, p.fail(StageFetch, err)
	}
	result.Head = fetched.Head

	if result.Reference.Pinned() {
		result.Head, err = p.fetcher.Checkout(ctx, ws.Root, result.Reference.PinnedRevision, p.sink)
		if err != nil {
			return result, p.fail(StagePin, err)
		}
	}

	env, err := p.builder.Build(ctx, ws)
	if err != nil {
		return result, p.fail(StageEnvironment, err)
	}

	result.Manifest, err = p.installer.Locate(ws)
	if err != nil {
		p.sink.Append(firstLine(err), logsink.TagWarning)
	}
	if err := p.installer.Install(ctx, env, result.Manifest); err != nil {
		p.sink.Append(firstLine(err), logsink.TagWarning)
	}

	kind := p.detector.Classify(result.Manifest)
	p.logger.Debug("project classified", "run", ws.RunID, "kind", kind)

	ep, err := p.detector.Locate(ws, kind)
	if errors.Is(err, entrypoint.ErrNotFound) {
		p.sink.Append("No "+strings.Join(p.detector.Names(kind), ", ")+" found", logsink.TagWarning)
		p.sink.Append(FinishedNotice, logsink.TagSystem)
		return result, nil
	}
	if err != nil {
		return result, p.fail(StageDetect, err)
	}
	result.EntryPoint = &ep
	p.sink.Append(filepath.Base(ep.File)+" found: "+ep.File, logsink.TagSystem)

	if kind == entrypoint.Server {
		return result, p.serve(result, env, ep)
	}
	return result, p.script(ctx, result, env, ep)
}

// script runs the entry file to completion
func (p *Pipeline) script(ctx context.Context, result *Result, env *venv.Environment, ep entrypoint.EntryPoint) error {
	p.sink.Append("Running "+ep.File, logsink.TagSystem)

	code, err := p.runner.RunBlocking(ctx, exec.Command{
		Path: env.Interpreter,
		Args: []string{ep.File},
		Dir:  filepath.Dir(ep.File),
		Env:  []string{"PYTHONUNBUFFERED=1"},
		Tag:  logsink.TagStudent,
	})
	if err != nil {
		return p.fail(StageExecute, err)
	}

	result.ExitCode = code
	if code != 0 {
		p.sink.Append(fmt.Sprintf("Process exited with code %d", code), logsink.TagSystem)
	}
	p.sink.Append(FinishedNotice, logsink.TagSystem)
	return nil
}

// serve starts the entry file through the framework launcher and returns
// with the handle still running
func (p *Pipeline) serve(result *Result, env *venv.Environment, ep entrypoint.EntryPoint) error {
	p.sink.Append("Starting server "+ep.File, logsink.TagSystem)

	h, err := p.runner.RunDetached(exec.Command{
		Path: env.Interpreter,
		Args: []string{"-m", p.config.Server.Module, "run", ep.File},
		Dir:  filepath.Dir(ep.File),
		Env:  p.config.Server.Env,
		Tag:  logsink.TagStudent,
	})
	if err != nil {
		return p.fail(StageExecute, err)
	}

	p.registry.Track(h)
	result.Handle = h
	p.logger.Debug("server tracked", "run", result.RunID, "handle", h.ID, "pid", h.PID)
	return nil
}

// release removes an ephemeral workspace once nothing runs from it
func (p *Pipeline) release(result *Result) {
	ws := result.Workspace
	if ws.Retained {
		return
	}

	cleanup := func() {
		if err := ws.Cleanup(); err != nil {
			p.logger.Warn("workspace cleanup failed", "run", ws.RunID, "err", err)
		}
	}

	if h := result.Handle; h != nil {
		go func() {
			<-h.Done()
			cleanup()
		}()
		return
	}
	cleanup()
}

// fail reports a fatal stage failure as a single error entry
func (p *Pipeline) fail(stage Stage, err error) error {
	stageErr := &StageError{Stage: stage, Err: err}
	p.sink.Append(firstLine(stageErr), logsink.TagError)
	p.logger.Debug("stage failed", "stage", stage, "err", err)
	return stageErr
}

// firstLine keeps a sink entry on one line; the full error is returned
func firstLine(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return strings.TrimSpace(msg[:i])
	}
	return msg
}
