// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Entry-point detection types

package entrypoint

import "errors"

// ErrNotFound is returned when no entry file exists for the detected kind
var ErrNotFound = errors.New("entry point not found")

// Kind is how a project is executed
type Kind int

const (
	// Script runs to completion
	Script Kind = iota
	// Server is a long-running web app started through the framework launcher
	Server
)

// String returns the kind name
func (k Kind) String() string {
	if k == Server {
		return "server"
	}
	return "script"
}

// Default detection rules
const (
	DefaultMarker = "streamlit"
)

var (
	// DefaultScriptNames are searched for Script projects
	DefaultScriptNames = []string{"main.py"}
	// DefaultServerNames are searched in order for Server projects
	DefaultServerNames = []string{"main.py", "app.py", "streamlit_app.py"}
)

// EntryPoint is the file to execute and how
type EntryPoint struct {
	Kind Kind
	File string
}

// DetectorConfig holds the detection rules
type DetectorConfig struct {
	Marker      string   // Manifest token that marks a Server project (case-insensitive)
	ScriptNames []string // Candidate entry files for Script projects
	ServerNames []string // Candidate entry files for Server projects, in priority order
}
