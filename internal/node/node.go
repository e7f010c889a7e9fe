// SPDX-License-Identifier: MPL-2.0

package node

import (
	"context"
	"errors"
	"io"
	"maps"
	"slices"

	"github.com/nugetstep/nugetstep/internal/installation"
	"github.com/nugetstep/nugetstep/pkg/types"
)

var (
	// ErrInterrupted is wrapped when a launch is aborted by context cancellation.
	ErrInterrupted = errors.New("interrupted")
	// ErrEmptyCommand is returned when Launch is called without arguments.
	ErrEmptyCommand = errors.New("empty command line")
)

type (
	// LaunchSpec describes one process launch.
	LaunchSpec struct {
		// Args is the full argument vector; Args[0] is the program.
		Args []string
		// Env is the complete process environment.
		Env map[string]string
		// Dir is the working directory.
		Dir string
		// Stdout and Stderr receive the process output. Nil discards it.
		Stdout io.Writer
		Stderr io.Writer
	}

	// Node is a machine on which a build step executes.
	Node interface {
		installation.Node
		// IsUnix reports whether the node runs a Unix-like OS.
		IsUnix() bool
		// PathExists reports whether path exists on the node as a file or directory.
		PathExists(ctx context.Context, path string) (bool, error)
		// Abs resolves a relative path against the node's working directory,
		// the directory Exists and PathExists look it up in.
		Abs(path string) (string, error)
		// ToolsDir is the node directory where auto-installed tools are cached.
		ToolsDir() string
		// Launch starts the process and waits for it. A non-zero exit is not an
		// error; errors mean the process could not be started or was interrupted.
		Launch(ctx context.Context, spec LaunchSpec) (types.ExitCode, error)
	}
)

// EnvToSlice converts an environment map to sorted KEY=VALUE entries.
func EnvToSlice(env map[string]string) []string {
	keys := slices.Sorted(maps.Keys(env))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}
