// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nugetstep/nugetstep/internal/config"
	"github.com/nugetstep/nugetstep/internal/installation"
	"github.com/nugetstep/nugetstep/internal/issue"
	"github.com/nugetstep/nugetstep/internal/node"
	"github.com/nugetstep/nugetstep/internal/step"

	"github.com/spf13/cobra"
)

type (
	// runOptions holds the `run` flag values.
	runOptions struct {
		installation string
		command      string
		file         string
		args         string
		moduleRoot   string
		workspace    string
		node         string
		job          string
		vars         []string
		varFiles     []string
	}

	// runRequest is a fully resolved `run` invocation.
	runRequest struct {
		step       step.Step
		moduleRoot string
		workspace  string
		node       string
		buildVars  map[string]string
	}

	// fatalRecorder remembers whether the step reported a fatal error.
	fatalRecorder struct {
		step.Listener
		fatal bool
	}
)

// newRunCommand creates the `nugetstep run` command.
func newRunCommand(app *App) *cobra.Command {
	opts := &runOptions{}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a NuGet command as a build step",
		Long: `Run a NuGet command as a build step.

The executable comes from --installation when it names a configured
installation, otherwise nuget.exe is taken from PATH. --file and --args may
reference environment and build variables as $VAR, ${VAR} or %VAR%; build
variables win over the environment.

The command runs in --module-root, or in --workspace when --file does not
exist below the module root. The exit code is the tool's exit code.

A step can also be described in a TOML job file with --job. Flags given on
the command line override the job's values.`,
		Example: `  nugetstep run --command restore --file App.sln
  nugetstep run --installation nuget-6 --command install --file packages.config --args "-OutputDirectory packages"
  nugetstep run --job restore.toml --var CONFIGURATION=Release`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			return runStep(cmd.Context(), app, req)
		},
	}

	flags := runCmd.Flags()
	flags.StringVar(&opts.installation, "installation", "", "configured installation to take nuget.exe from")
	flags.StringVar(&opts.command, "command", "", "NuGet command, e.g. install, update or restore")
	flags.StringVar(&opts.file, "file", "", "package, solution or project file passed after the command")
	flags.StringVar(&opts.args, "args", "", "extra arguments; quotes group words")
	flags.StringVar(&opts.moduleRoot, "module-root", "", "working directory (default is the current directory)")
	flags.StringVar(&opts.workspace, "workspace", "", "fallback working directory when --file is not below the module root (default is the module root)")
	flags.StringVar(&opts.node, "node", "", "configured node to run on (default is default_node, then the local machine)")
	flags.StringVar(&opts.job, "job", "", "TOML job file describing the step")
	flags.StringArrayVar(&opts.vars, "var", nil, "build variable as KEY=VALUE (repeatable)")
	flags.StringArrayVar(&opts.varFiles, "var-file", nil, "dotenv file of build variables, '?' suffix marks it optional (repeatable)")

	return runCmd
}

// resolve merges the job file with the flags. Flags set on the command line win.
func (o *runOptions) resolve(cmd *cobra.Command) (*runRequest, error) {
	req := &runRequest{
		step: step.Step{
			Installation: o.installation,
			Command:      o.command,
			File:         o.file,
			Args:         o.args,
		},
		moduleRoot: o.moduleRoot,
		workspace:  o.workspace,
		node:       o.node,
		buildVars:  make(map[string]string),
	}

	if o.job != "" {
		if err := req.applyJob(cmd, o.job); err != nil {
			return nil, err
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	for _, path := range o.varFiles {
		if err := step.LoadVarsFile(req.buildVars, path, cwd); err != nil {
			return nil, err
		}
	}
	for _, assignment := range o.vars {
		key, value, err := step.ParseAssignment(assignment)
		if err != nil {
			return nil, err
		}
		req.buildVars[key] = value
	}

	if err := req.step.Validate(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("run build step").
			WithSuggestion("Pass the NuGet command with --command, e.g. --command restore").
			Wrap(err).
			BuildError()
	}

	if req.moduleRoot == "" {
		req.moduleRoot = cwd
	}
	if req.moduleRoot, err = filepath.Abs(req.moduleRoot); err != nil {
		return nil, err
	}
	if req.workspace == "" {
		req.workspace = req.moduleRoot
	}
	if req.workspace, err = filepath.Abs(req.workspace); err != nil {
		return nil, err
	}

	return req, nil
}

// applyJob fills every field whose flag was not set from the job file at path.
func (r *runRequest) applyJob(cmd *cobra.Command, path string) error {
	job, err := step.LoadJob(path)
	if err != nil {
		return jobError(path, err)
	}
	vars, err := job.BuildVars()
	if err != nil {
		return jobError(path, err)
	}
	r.buildVars = vars

	flags := cmd.Flags()
	fill := func(flag string, dst *string, value string) {
		if !flags.Changed(flag) {
			*dst = value
		}
	}
	fill("installation", &r.step.Installation, job.Installation)
	fill("command", &r.step.Command, job.Command)
	fill("file", &r.step.File, job.File)
	fill("args", &r.step.Args, job.Args)
	fill("module-root", &r.moduleRoot, job.ModuleRoot)
	fill("workspace", &r.workspace, job.Workspace)
	fill("node", &r.node, job.Node)

	return nil
}

func jobError(path string, err error) error {
	ae := issue.NewErrorContext().
		WithOperation("load job file").
		WithResource(path).
		WithSuggestion("Check the TOML syntax of the job file").
		WithSuggestion("Allowed keys: installation, command, file, args, module_root, workspace, node, var_files, variables").
		Wrap(err).
		BuildError()
	return newServiceError(ae, issue.JobFileInvalidId, "")
}

// runStep executes req and maps the outcome to an error carrying the exit code.
func runStep(ctx context.Context, app *App, req *runRequest) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}

	store, err := cfg.Store()
	if err != nil {
		return err
	}

	n, err := cfg.Node(req.node)
	if err != nil {
		if errors.Is(err, config.ErrUnknownNode) {
			return issue.NewErrorContext().
				WithOperation("select node").
				WithResource(req.node).
				WithSuggestion("Add the node under 'nodes' in the config file").
				WithSuggestion("Omit --node to run on the local machine").
				Wrap(err).
				BuildError()
		}
		return err
	}

	listener := &fatalRecorder{Listener: step.NewStreamListener(app.stdout)}
	ec := &step.ExecutionContext{
		Env:        step.EnvBuilder{Environ: app.environ}.Build(req.buildVars),
		BuildVars:  req.buildVars,
		ModuleRoot: req.moduleRoot,
		Workspace:  req.workspace,
		Node:       n,
		Listener:   listener,
	}

	slog.Debug("running build step",
		"installation", req.step.Installation,
		"command", req.step.Command,
		"node", n.Name(),
		"os", n.OS(),
		"moduleRoot", req.moduleRoot)

	ok, err := step.NewExecutor(store, app.Provisioner).Perform(ctx, req.step, ec)
	return stepOutcome(req.step, ec, listener.fatal, ok, err, app.verbose)
}

// stepOutcome maps the result of Executor.Perform to the error returned by RunE.
func stepOutcome(s step.Step, ec *step.ExecutionContext, fatal, ok bool, err error, verbose bool) error {
	switch {
	case errors.Is(err, node.ErrInterrupted), errors.Is(err, context.Canceled):
		return &ExitError{Code: interruptedExitCode, Err: err}
	case errors.Is(err, installation.ErrTranslate):
		ae := issue.NewErrorContext().
			WithOperation("prepare installation").
			WithResource(s.Installation).
			WithSuggestion("Check the installer url and sha256 of the installation").
			WithSuggestion("Set a home for the installation on this node under tool_locations").
			Wrap(err).
			BuildError()
		return newServiceError(ae, issue.InstallerFailedId, errorDetails(ae, verbose))
	case err != nil:
		return err
	case ok:
		return nil
	case fatal:
		return newServiceError(
			&ExitError{Code: 1, Err: fmt.Errorf("nuget.exe of installation %q not found", s.Installation)},
			issue.ExecutableNotFoundId, "")
	case ec.Result == step.ResultFailure:
		return newServiceError(
			&ExitError{Code: 1, Err: errors.New("failed to launch nuget.exe")},
			issue.LaunchFailedId, "")
	default:
		return &ExitError{
			Code: ec.ExitCode,
			Err:  fmt.Errorf("nuget %s exited with code %d", s.Command, ec.ExitCode),
		}
	}
}

// FatalError records the failure and forwards it.
func (r *fatalRecorder) FatalError(msg string) {
	r.fatal = true
	r.Listener.FatalError(msg)
}
