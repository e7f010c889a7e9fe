// SPDX-License-Identifier: MPL-2.0

package step

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"strings"

	"github.com/nugetstep/nugetstep/internal/installation"
	"github.com/nugetstep/nugetstep/internal/macro"
	"github.com/nugetstep/nugetstep/internal/node"
)

// Executor performs build steps against a fixed set of installations.
type Executor struct {
	store       *installation.Store
	provisioner installation.Provisioner
}

// NewExecutor creates an Executor. A nil store resolves nothing; a nil
// provisioner disables auto-installation.
func NewExecutor(store *installation.Store, provisioner installation.Provisioner) *Executor {
	return &Executor{store: store, provisioner: provisioner}
}

// Perform runs s in ec and reports whether the tool exited with code 0.
//
// A missing executable is reported through the listener and yields false
// with a nil error. A launch I/O failure is reported through the listener,
// marks ec.Result as ResultFailure and yields false with a nil error. Node
// translation failures and interruption are returned as errors.
func (e *Executor) Perform(ctx context.Context, s Step, ec *ExecutionContext) (bool, error) {
	if err := s.Validate(); err != nil {
		return false, err
	}
	if err := ec.Validate(); err != nil {
		return false, err
	}

	log := ec.Listener.Logger()

	exe, inst, ok, err := e.resolveExecutable(ctx, s, ec)
	if err != nil || !ok {
		return false, err
	}

	args, file := BuildArgs(exe, s, inst.DefaultArgs(), ec.Env, ec.BuildVars)

	dir, err := ResolveWorkDir(ctx, ec.Node, ec.ModuleRoot, ec.Workspace, file)
	if err != nil {
		return false, err
	}

	if !ec.Node.IsUnix() {
		args = WrapWindows(args)
	}

	fmt.Fprintf(log, "Executing the command %s from %s\n", macro.Quote(args), dir)

	code, err := ec.Node.Launch(ctx, node.LaunchSpec{
		Args:   args,
		Env:    ec.Env,
		Dir:    dir,
		Stdout: log,
		Stderr: log,
	})
	if err != nil {
		if errors.Is(err, node.ErrInterrupted) {
			ec.Listener.Error("build step interrupted")
			return false, err
		}
		ec.Listener.Error(fmt.Sprintf("command execution failed: %v", err))
		ec.Result = ResultFailure
		return false, nil
	}

	ec.ExitCode = code
	slog.Debug("build step finished", "node", ec.Node.Name(), "exitCode", code)
	return code.IsSuccess(), nil
}

// resolveExecutable returns the executable to launch and the installation it
// came from. ok is false when a fatal error has been reported to the listener.
func (e *Executor) resolveExecutable(ctx context.Context, s Step, ec *ExecutionContext) (exe string, inst installation.Installation, ok bool, err error) {
	log := ec.Listener.Logger()

	inst, found := e.store.Resolve(s.Installation)
	if !found {
		if s.Installation != "" {
			slog.Debug("installation not configured, using PATH", "installation", s.Installation)
		}
		fmt.Fprintf(log, "Path To NuGet.exe: %s\n", DefaultExecutable)
		return DefaultExecutable, installation.Installation{}, true, nil
	}

	inst, err = inst.ForNode(ctx, ec.Node, e.provisioner)
	if err != nil {
		return "", installation.Installation{}, false, err
	}
	inst = inst.ForEnvironment(ec.Env)

	// The launch runs from the module root, so a relative home is pinned
	// to the directory the existence check uses.
	home, err := ec.Node.Abs(inst.Home())
	if err != nil {
		slog.Debug("resolving executable path failed", "path", inst.Home(), "error", err)
		ec.Listener.FatalError("Failed resolving " + inst.Home())
		return "", installation.Installation{}, false, nil
	}
	exists, err := ec.Node.Exists(ctx, home)
	if err != nil {
		slog.Debug("existence check failed", "path", home, "error", err)
		ec.Listener.FatalError("Failed checking for existence of " + home)
		return "", installation.Installation{}, false, nil
	}
	if !exists {
		ec.Listener.FatalError(home + " doesn't exist")
		return "", installation.Installation{}, false, nil
	}

	fmt.Fprintf(log, "Path To NuGet.exe: %s\n", home)
	return home, inst, true, nil
}

// BuildArgs builds the argument vector for s launched through exe and
// returns it together with the normalized target file ("" when absent).
//
// The file and argument string are whitespace-normalized and expanded
// against env, then against buildVars. A build variable shadows an
// environment variable of the same name. Default arguments are tokenized
// verbatim and appended last.
func BuildArgs(exe string, s Step, defaultArgs string, env, buildVars map[string]string) (args []string, file string) {
	args = []string{exe, s.Command}

	merged := maps.Clone(env)
	if merged == nil {
		merged = make(map[string]string, len(buildVars))
	}
	maps.Copy(merged, buildVars)
	env = merged

	if strings.TrimSpace(s.File) != "" {
		file = macro.ExpandAll(macro.Normalize(s.File), env, buildVars)
		if file != "" {
			args = append(args, file)
		}
	}

	extra := macro.ExpandAll(macro.Normalize(s.Args), env, buildVars)
	if strings.TrimSpace(extra) != "" {
		args = append(args, macro.Tokenize(extra)...)
	}

	if defaultArgs != "" {
		args = append(args, macro.Tokenize(defaultArgs)...)
	}

	return args, file
}

// WrapWindows wraps args so cmd.exe propagates the tool's exit code.
func WrapWindows(args []string) []string {
	out := make([]string, 0, len(args)+5)
	out = append(out, "cmd.exe", "/C")
	out = append(out, args...)
	return append(out, "&&", "exit", "%ERRORLEVEL%")
}

// ResolveWorkDir returns moduleRoot, or workspace when file is set and does
// not exist relative to moduleRoot.
func ResolveWorkDir(ctx context.Context, n node.Node, moduleRoot, workspace, file string) (string, error) {
	if file == "" {
		return moduleRoot, nil
	}

	target := file
	if !filepath.IsAbs(target) {
		target = filepath.Join(moduleRoot, target)
	}

	exists, err := n.PathExists(ctx, target)
	if err != nil {
		return "", fmt.Errorf("checking %s: %w", target, err)
	}
	if !exists {
		return workspace, nil
	}
	return moduleRoot, nil
}
