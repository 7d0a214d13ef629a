// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Colored terminal sink

package logsink

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// TerminalSink renders entries with one color per tag
type TerminalSink struct {
	mu     sync.Mutex
	out    io.Writer
	styles map[Tag]lipgloss.Style
}

// NewTerminalSink creates a sink writing colored lines to out
func NewTerminalSink(out io.Writer) *TerminalSink {
	r := lipgloss.NewRenderer(out)
	return &TerminalSink{
		out: out,
		styles: map[Tag]lipgloss.Style{
			TagSystem:  r.NewStyle().Foreground(lipgloss.Color("25")),
			TagWarning: r.NewStyle().Foreground(lipgloss.Color("208")),
			TagError:   r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
			TagStudent: r.NewStyle(),
		},
	}
}

// Append writes each line of text using the style for tag
func (s *TerminalSink) Append(text string, tag Tag) {
	style, ok := s.styles[tag]
	if !ok {
		style = s.styles[TagSystem]
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range splitLines(text) {
		fmt.Fprintln(s.out, style.Render(line))
	}
}
