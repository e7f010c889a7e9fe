// SPDX-License-Identifier: MPL-2.0

package node

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/nugetstep/nugetstep/pkg/platform"
	"github.com/nugetstep/nugetstep/pkg/types"
)

// DefaultName is the name of the node describing the current machine.
const DefaultName = "local"

// waitDelay bounds how long Launch waits for output pipes after the process
// has been killed on cancellation.
const waitDelay = 5 * time.Second

type (
	// Local launches processes on the current machine.
	Local struct {
		name          string
		goos          string
		toolsDir      string
		toolLocations map[string]string
	}

	// Option configures a Local node.
	Option func(*Local)
)

// WithName sets the node name used in diagnostics.
func WithName(name string) Option {
	return func(l *Local) { l.name = name }
}

// WithOS overrides the operating system the node reports (a GOOS value).
func WithOS(goos string) Option {
	return func(l *Local) { l.goos = goos }
}

// WithToolsDir sets the directory used for auto-installed tools.
func WithToolsDir(dir string) Option {
	return func(l *Local) { l.toolsDir = dir }
}

// WithToolLocations sets per-installation home overrides for this node.
func WithToolLocations(locations map[string]string) Option {
	return func(l *Local) { l.toolLocations = maps.Clone(locations) }
}

// NewLocal creates a node for the current machine.
func NewLocal(opts ...Option) *Local {
	l := &Local{
		name: DefaultName,
		goos: runtime.GOOS,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.toolsDir == "" {
		l.toolsDir = defaultToolsDir()
	}
	return l
}

// Name returns the node name.
func (l *Local) Name() string { return l.name }

// OS returns the GOOS value the node reports.
func (l *Local) OS() string { return l.goos }

// IsUnix reports whether the node runs a Unix-like OS.
func (l *Local) IsUnix() bool { return platform.IsUnix(l.goos) }

// ToolsDir returns the auto-installer cache directory.
func (l *Local) ToolsDir() string { return l.toolsDir }

// ToolHome returns the configured home override for the installation.
func (l *Local) ToolHome(installation string) (string, bool) {
	home, ok := l.toolLocations[installation]
	return home, ok
}

// Exists reports whether path is an existing regular file (or symlink to one).
func (l *Local) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// PathExists reports whether path exists, whatever its type.
func (l *Local) PathExists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Abs resolves path against the process working directory. Paths of a
// foreign OS are returned unchanged since the host cannot interpret them.
func (l *Local) Abs(path string) (string, error) {
	if l.goos != runtime.GOOS || filepath.IsAbs(path) {
		return path, nil
	}
	return filepath.Abs(path)
}

// Launch runs spec.Args and waits for it to exit.
func (l *Local) Launch(ctx context.Context, spec LaunchSpec) (types.ExitCode, error) {
	if len(spec.Args) == 0 {
		return 1, ErrEmptyCommand
	}

	cmd := exec.CommandContext(ctx, spec.Args[0], spec.Args[1:]...)
	cmd.Dir = spec.Dir
	cmd.Env = EnvToSlice(spec.Env)
	cmd.Stdout = writerOrDiscard(spec.Stdout)
	cmd.Stderr = writerOrDiscard(spec.Stderr)
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 1, fmt.Errorf("%w: %w", ErrInterrupted, ctxErr)
	}
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return types.ExitCode(exitErr.ExitCode()), nil
	}

	return 1, fmt.Errorf("failed to start %s: %w", spec.Args[0], err)
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

func defaultToolsDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "nugetstep", "tools")
	}
	return filepath.Join(os.TempDir(), "nugetstep", "tools")
}
