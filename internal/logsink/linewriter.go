// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// io.Writer adapter delivering complete lines to a sink

package logsink

import (
	"bytes"
	"sync"
)

// LineWriter buffers written bytes and appends each complete line to a sink.
// Carriage returns are treated as line breaks so progress counters that
// redraw a single terminal line arrive as separate entries.
type LineWriter struct {
	mu   sync.Mutex
	sink Sink
	tag  Tag
	buf  bytes.Buffer
}

// NewLineWriter creates a writer appending lines to sink with tag
func NewLineWriter(sink Sink, tag Tag) *LineWriter {
	return &LineWriter{sink: sink, tag: tag}
}

// Write implements io.Writer
func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		data := w.buf.Bytes()
		idx := bytes.IndexAny(data, "\r\n")
		if idx < 0 {
			break
		}
		line := string(data[:idx])
		w.buf.Next(idx + 1)
		if line != "" {
			w.sink.Append(line, w.tag)
		}
	}
	return len(p), nil
}

// Flush delivers any buffered partial line
func (w *LineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.sink.Append(w.buf.String(), w.tag)
		w.buf.Reset()
	}
}
