// SPDX-License-Identifier: MPL-2.0

package logging

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// Prefix is printed in front of every diagnostic line.
const Prefix = "nugetstep"

// New creates a logger writing to w. Debug records are dropped unless
// verbose is set.
func New(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}

	return log.NewWithOptions(w, log.Options{
		Prefix: Prefix,
		Level:  level,
	})
}

// Setup installs a logger writing to w as the slog default and returns it.
func Setup(w io.Writer, verbose bool) *slog.Logger {
	logger := slog.New(New(w, verbose))
	slog.SetDefault(logger)
	return logger
}
