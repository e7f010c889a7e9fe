// SPDX-License-Identifier: MPL-2.0

package step

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

type (
	// Listener receives the output of a build step.
	Listener interface {
		// Logger is the sink for step log lines and tool output.
		Logger() io.Writer
		// FatalError reports an error that stops the step.
		FatalError(msg string)
		// Error reports a diagnostic without stopping anything by itself.
		Error(msg string)
	}

	// StreamListener writes everything to a single stream. Fatal and error
	// lines are prefixed and styled.
	StreamListener struct {
		out        io.Writer
		fatalStyle lipgloss.Style
		errorStyle lipgloss.Style
	}
)

var (
	fatalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
)

// NewStreamListener creates a listener writing to w.
func NewStreamListener(w io.Writer) *StreamListener {
	if w == nil {
		w = io.Discard
	}
	return &StreamListener{out: w, fatalStyle: fatalStyle, errorStyle: errorStyle}
}

// Logger returns the underlying stream.
func (l *StreamListener) Logger() io.Writer { return l.out }

// FatalError writes "FATAL: msg".
func (l *StreamListener) FatalError(msg string) {
	fmt.Fprintln(l.out, l.fatalStyle.Render("FATAL: "+msg))
}

// Error writes "ERROR: msg".
func (l *StreamListener) Error(msg string) {
	fmt.Fprintln(l.out, l.errorStyle.Render("ERROR: "+msg))
}
