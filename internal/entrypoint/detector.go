// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Project classification and entry file lookup

package entrypoint

import (
	"fmt"
	"os"
	"strings"

	"github.com/sony-level/ktp-tester/internal/installer"
	"github.com/sony-level/ktp-tester/internal/scanner"
	"github.com/sony-level/ktp-tester/internal/workspace"
)

// Detector classifies projects and finds their entry file
type Detector struct {
	marker      string
	scriptNames []string
	serverNames []string
}

// NewDetector creates a detector, filling unset rules with the defaults
func NewDetector(config *DetectorConfig) *Detector {
	if config == nil {
		config = &DetectorConfig{}
	}

	d := &Detector{
		marker:      strings.ToLower(config.Marker),
		scriptNames: config.ScriptNames,
		serverNames: config.ServerNames,
	}
	if d.marker == "" {
		d.marker = DefaultMarker
	}
	if len(d.scriptNames) == 0 {
		d.scriptNames = DefaultScriptNames
	}
	if len(d.serverNames) == 0 {
		d.serverNames = DefaultServerNames
	}
	return d
}

// Classify returns Server when the manifest mentions the marker token.
// A missing or unreadable manifest classifies as Script.
func (d *Detector) Classify(manifest installer.Manifest) Kind {
	if !manifest.Present() {
		return Script
	}

	data, err := os.ReadFile(manifest.Path)
	if err != nil {
		return Script
	}

	if strings.Contains(strings.ToLower(string(data)), d.marker) {
		return Server
	}
	return Script
}

// Locate finds the entry file for kind. Candidate names are tried in order
// and the first name present anywhere in the workspace wins.
func (d *Detector) Locate(ws *workspace.Workspace, kind Kind) (EntryPoint, error) {
	names := d.Names(kind)

	result, err := scanner.Scan(&scanner.ScanConfig{RootPath: ws.Root})
	if err != nil {
		return EntryPoint{}, fmt.Errorf("failed to search for entry point: %w", err)
	}

	path, ok := result.FirstOf(names...)
	if !ok {
		return EntryPoint{}, fmt.Errorf("%w: no %s found", ErrNotFound, strings.Join(names, ", "))
	}
	return EntryPoint{Kind: kind, File: path}, nil
}

// Names returns the candidate entry file names for kind
func (d *Detector) Names(kind Kind) []string {
	if kind == Server {
		return d.serverNames
	}
	return d.scriptNames
}
