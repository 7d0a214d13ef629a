// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Dependency installer types

package installer

import (
	"errors"

	"github.com/charmbracelet/log"

	"github.com/sony-level/ktp-tester/internal/exec"
	"github.com/sony-level/ktp-tester/internal/logsink"
)

// DefaultManifest is the dependency manifest file name
const DefaultManifest = "requirements.txt"

// ErrInstall is returned when the installer exits non-zero
var ErrInstall = errors.New("dependency installation failed")

// Manifest is the located dependency manifest. An empty Path means the
// workspace declares no dependencies.
type Manifest struct {
	Path string
}

// Present reports whether a manifest was found
func (m Manifest) Present() bool {
	return m.Path != ""
}

// InstallerConfig configures the dependency installer
type InstallerConfig struct {
	ManifestName string       // Manifest file name (default: requirements.txt)
	Runner       *exec.Runner // Runs the installer
	Sink         logsink.Sink
	Logger       *log.Logger
}
