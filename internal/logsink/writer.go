// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Plain-text sinks: writer, recorder and fan-out

package logsink

import (
	"fmt"
	"io"
	"sync"
)

// WriterSink writes "[tag] line" records to an io.Writer
type WriterSink struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriterSink creates a plain-text sink
func NewWriterSink(out io.Writer) *WriterSink {
	return &WriterSink{out: out}
}

// Append writes each line of text prefixed by its tag
func (s *WriterSink) Append(text string, tag Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range splitLines(text) {
		fmt.Fprintf(s.out, "[%s] %s\n", tag, line)
	}
}

// Recorder keeps every entry in memory
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Append records each line of text
func (r *Recorder) Append(text string, tag Tag) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, line := range splitLines(text) {
		r.entries = append(r.entries, Entry{Text: line, Tag: tag})
	}
}

// Entries returns a copy of the recorded entries
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Tagged returns the text of every entry with the given tag, in order
func (r *Recorder) Tagged(tag Tag) []string {
	var lines []string
	for _, e := range r.Entries() {
		if e.Tag == tag {
			lines = append(lines, e.Text)
		}
	}
	return lines
}

// Multi fans entries out to several sinks
type Multi []Sink

// Append forwards the entry to every sink
func (m Multi) Append(text string, tag Tag) {
	for _, s := range m {
		if s != nil {
			s.Append(text, tag)
		}
	}
}
