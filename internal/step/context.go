// SPDX-License-Identifier: MPL-2.0

package step

import (
	"errors"
	"maps"
	"os"
	"strings"

	"github.com/nugetstep/nugetstep/internal/node"
	"github.com/nugetstep/nugetstep/pkg/types"
)

var (
	// ErrNoNode is returned when an ExecutionContext has no node.
	ErrNoNode = errors.New("execution context has no node")
	// ErrNoListener is returned when an ExecutionContext has no listener.
	ErrNoListener = errors.New("execution context has no listener")
)

type (
	// ExecutionContext carries everything one step invocation needs from its
	// surroundings. It lives for a single Perform call.
	ExecutionContext struct {
		// Env is the complete process environment of the launched tool.
		Env map[string]string
		// BuildVars are the build variables used for macro expansion.
		BuildVars map[string]string
		// ModuleRoot is the preferred working directory.
		ModuleRoot string
		// Workspace is the fallback working directory.
		Workspace string
		// Node is the machine the tool runs on.
		Node node.Node
		// Listener receives log lines, tool output and errors.
		Listener Listener
		// Result is set to ResultFailure when a launch I/O error occurs.
		Result BuildResult
		// ExitCode is the tool's exit code once it has run.
		ExitCode types.ExitCode
	}

	// EnvBuilder builds the environment of the launched tool. Precedence
	// (higher wins):
	//
	//  1. Host environment
	//  2. Build variables
	EnvBuilder struct {
		// Environ returns the host environment as "KEY=VALUE" strings.
		// When nil, os.Environ() is used.
		Environ func() []string
	}
)

// Validate checks that the context can run a step.
func (c *ExecutionContext) Validate() error {
	switch {
	case c.Node == nil:
		return ErrNoNode
	case c.Listener == nil:
		return ErrNoListener
	}
	return nil
}

// Build returns the host environment overlaid with buildVars.
func (b EnvBuilder) Build(buildVars map[string]string) map[string]string {
	environ := b.Environ
	if environ == nil {
		environ = os.Environ
	}

	env := make(map[string]string)
	for _, entry := range environ() {
		if entry == "" {
			continue
		}
		// Windows keeps per-drive state in entries like "=C:=C:\dir", so the
		// separator search skips the first byte.
		idx := strings.IndexByte(entry[1:], '=')
		if idx == -1 {
			continue
		}
		env[entry[:idx+1]] = entry[idx+2:]
	}

	maps.Copy(env, buildVars)
	return env
}
