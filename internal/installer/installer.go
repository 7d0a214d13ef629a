// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Manifest lookup and dependency installation

package installer

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/sony-level/ktp-tester/internal/exec"
	"github.com/sony-level/ktp-tester/internal/logsink"
	"github.com/sony-level/ktp-tester/internal/scanner"
	"github.com/sony-level/ktp-tester/internal/venv"
	"github.com/sony-level/ktp-tester/internal/workspace"
)

// Installer locates the manifest and installs what it declares
type Installer struct {
	manifest string
	runner   *exec.Runner
	sink     logsink.Sink
	logger   *log.Logger
}

// NewInstaller creates a new dependency installer
func NewInstaller(config *InstallerConfig) *Installer {
	if config == nil {
		config = &InstallerConfig{}
	}

	i := &Installer{
		manifest: config.ManifestName,
		runner:   config.Runner,
		sink:     config.Sink,
		logger:   config.Logger,
	}
	if i.manifest == "" {
		i.manifest = DefaultManifest
	}
	if i.sink == nil {
		i.sink = logsink.Discard
	}
	if i.logger == nil {
		i.logger = log.New(io.Discard)
	}
	if i.runner == nil {
		i.runner = exec.NewRunner(&exec.RunnerConfig{Sink: i.sink, Logger: i.logger})
	}
	return i
}

// Locate returns the shallowest manifest under the workspace.
// The environment directory is never searched.
func (i *Installer) Locate(ws *workspace.Workspace) (Manifest, error) {
	path, ok, err := scanner.FindFirst(ws.Root, i.manifest)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to search for %s: %w", i.manifest, err)
	}
	if !ok {
		return Manifest{}, nil
	}
	i.logger.Debug("manifest located", "path", path)
	return Manifest{Path: path}, nil
}

// Install installs the manifest into env. Without a manifest it emits a
// single warning and starts no process. A non-zero installer exit returns
// ErrInstall; callers decide whether to continue.
func (i *Installer) Install(ctx context.Context, env *venv.Environment, manifest Manifest) error {
	if !manifest.Present() {
		i.sink.Append(fmt.Sprintf("No %s found", i.manifest), logsink.TagWarning)
		return nil
	}

	i.sink.Append(filepath.Base(manifest.Path)+" found: "+manifest.Path, logsink.TagSystem)
	i.sink.Append("Installing dependencies", logsink.TagSystem)

	code, err := i.runner.RunBlocking(ctx, exec.Command{
		Path: env.Interpreter,
		Args: []string{"-m", "pip", "install", "-r", manifest.Path},
		Dir:  filepath.Dir(manifest.Path),
		Tag:  logsink.TagStudent,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInstall, err)
	}
	if code != 0 {
		return fmt.Errorf("%w: installer exited with code %d", ErrInstall, code)
	}
	return nil
}
