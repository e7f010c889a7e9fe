// SPDX-License-Identifier: MPL-2.0

package step

import (
	"errors"
	"strings"
)

// DefaultExecutable is launched from PATH when no installation resolves.
const DefaultExecutable = "nuget.exe"

// ErrMissingCommand is returned when a step has no NuGet command.
var ErrMissingCommand = errors.New("step has no command")

// Step is the configuration of one build step. It is read-only during execution.
type Step struct {
	// Installation is the logical installation name. Empty or unknown names
	// fall back to DefaultExecutable.
	Installation string
	// Command is the NuGet command, e.g. "install", "update" or "restore".
	Command string
	// File is the optional package or project file passed after the command.
	File string
	// Args is a whitespace separated argument string; quotes group words.
	Args string
}

// Validate checks that the step can produce a command line.
func (s Step) Validate() error {
	if strings.TrimSpace(s.Command) == "" {
		return ErrMissingCommand
	}
	return nil
}
