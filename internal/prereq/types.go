// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Prerequisite types and tool definitions

package prereq

import "errors"

// ErrMissing is returned when a required tool cannot be found
var ErrMissing = errors.New("prerequisite not found")

// Tool represents a prerequisite tool
type Tool struct {
	Name         string   // Tool name
	Command      string   // Command to check existence
	VersionArgs  []string // Arguments that print the version
	Alternatives []string // Alternative command names, tried in order
	InstallGuide string   // Installation instructions
}

// Commands returns the primary command followed by its alternatives
func (t *Tool) Commands() []string {
	return append([]string{t.Command}, t.Alternatives...)
}

// DefaultTools returns the tools a run depends on
func DefaultTools() map[string]*Tool {
	return map[string]*Tool{
		"python": {
			Name:         "python",
			Command:      "python3",
			VersionArgs:  []string{"--version"},
			Alternatives: []string{"python", "py"},
			InstallGuide: `Install Python (with the venv module):
  macOS:   brew install python
  Ubuntu:  sudo apt install python3 python3-venv
  Fedora:  sudo dnf install python3
  Windows: https://www.python.org/downloads/

  Or point ktp at an interpreter: --python /path/to/python (env: KTP_PYTHON)`,
		},
	}
}

// CheckResult contains the result of checking a tool
type CheckResult struct {
	Name    string // Tool name
	Found   bool   // Whether tool was found
	Version string // Detected version (if found)
	Path    string // Path to tool (if found)
}

// CheckSummary contains results for all checks
type CheckSummary struct {
	Results      []CheckResult // Individual results
	AllFound     bool          // Whether all tools were found
	MissingTools []string      // List of missing tool names
}

// NewCheckSummary creates a new check summary
func NewCheckSummary() *CheckSummary {
	return &CheckSummary{
		Results:      []CheckResult{},
		AllFound:     true,
		MissingTools: []string{},
	}
}

// AddResult adds a check result to the summary
func (s *CheckSummary) AddResult(result CheckResult) {
	s.Results = append(s.Results, result)
	if !result.Found {
		s.AllFound = false
		s.MissingTools = append(s.MissingTools, result.Name)
	}
}
