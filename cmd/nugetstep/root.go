// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nugetstep/nugetstep/internal/issue"
	"github.com/nugetstep/nugetstep/internal/logging"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand creates the `nugetstep` command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nugetstep",
		Short: "Run NuGet as a build step",
		Long: TitleStyle.Render("nugetstep") + SubtitleStyle.Render(" - Run NuGet as a build step") + `

nugetstep locates nuget.exe through a configured installation, builds the
command line from the step definition, runs it in the module root and exits
with the tool's exit code.

` + SubtitleStyle.Render("Examples:") + `
  nugetstep run --command restore --file App.sln
  nugetstep run --installation nuget-6 --command update --args "-Safe"
  nugetstep run --job restore.toml --var CONFIGURATION=Release
  nugetstep installation add nuget-6 --home 'C:\tools\nuget.exe'
  nugetstep config show`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(app.stderr, app.verbose)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/nugetstep/config.cue)")

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.AddCommand(newRunCommand(app))
	rootCmd.AddCommand(newInstallationCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process. It is called by main.main().
func Execute() {
	os.Exit(Main())
}

// Main runs the CLI with production dependencies and returns the process exit code.
func Main() int {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		return 1
	}
	return run(context.Background(), app, os.Args[1:])
}

func run(ctx context.Context, app *App, args []string) int {
	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
	return exitCode(app.stderr, err, app.issueStyle())
}

// exitCode renders the help attached to err and maps it to a process exit code.
func exitCode(stderr io.Writer, err error, style string) int {
	if err == nil {
		return 0
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		renderServiceError(stderr, svcErr, style)
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.processExitCode()
	}
	return 1
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// errorDetails renders err for a ServiceError's styled message.
func errorDetails(err error, verboseMode bool) string {
	return ErrorStyle.Render("Error:") + " " + formatErrorForDisplay(err, verboseMode) + "\n"
}
