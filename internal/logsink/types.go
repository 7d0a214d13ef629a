// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Log sink types and interfaces

package logsink

import "strings"

// Tag classifies a sink entry
type Tag string

const (
	TagSystem  Tag = "system"  // Pipeline progress notices
	TagWarning Tag = "warning" // Non-fatal problems
	TagError   Tag = "error"   // Fatal stage failures
	TagStudent Tag = "student" // Output of the executed project
)

// Tags returns every known tag in display order
func Tags() []Tag {
	return []Tag{TagSystem, TagWarning, TagError, TagStudent}
}

// Valid reports whether t is one of the known tags
func (t Tag) Valid() bool {
	switch t {
	case TagSystem, TagWarning, TagError, TagStudent:
		return true
	}
	return false
}

// Sink receives pipeline log entries.
// Implementations must be safe for concurrent use: several pipeline runs
// may append to the same sink at once.
type Sink interface {
	Append(text string, tag Tag)
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(text string, tag Tag)

// Append calls f(text, tag)
func (f SinkFunc) Append(text string, tag Tag) {
	f(text, tag)
}

// Discard is a sink that drops every entry
var Discard Sink = SinkFunc(func(string, Tag) {})

// Entry is a single recorded line
type Entry struct {
	Text string
	Tag  Tag
}

// splitLines trims trailing whitespace and splits text into lines
func splitLines(text string) []string {
	text = strings.TrimRight(text, " \t\r\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines
}
