// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/nugetstep/nugetstep/internal/config"
	"github.com/nugetstep/nugetstep/internal/installation"
	"github.com/nugetstep/nugetstep/internal/installer"
	"github.com/nugetstep/nugetstep/internal/issue"
	"github.com/nugetstep/nugetstep/internal/logging"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root
	// for the CLI layer: all Cobra command handlers receive an App reference and
	// reach configuration, the auto-installer and the output streams through it.
	App struct {
		Config      ConfigProvider
		Provisioner installation.Provisioner
		environ     func() []string
		stdout      io.Writer
		stderr      io.Writer

		// Global flag values, bound by NewRootCommand.
		configPath string
		verbose    bool

		colorScheme config.ColorScheme
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config      ConfigProvider
		Provisioner installation.Provisioner
		// Environ returns the host environment; os.Environ when nil.
		Environ func() []string
		Stdout  io.Writer
		Stderr  io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Provisioner == nil {
		deps.Provisioner = installer.New(installer.WithUserAgent(config.AppName + "/" + Version))
	}
	if deps.Environ == nil {
		deps.Environ = os.Environ
	}

	return &App{
		Config:      deps.Config,
		Provisioner: deps.Provisioner,
		environ:     deps.Environ,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
	}, nil
}

// loadOptions returns the config loading inputs selected by the global flags.
func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: a.configPath}
}

// loadConfig loads the configuration and turns on debug logging when the file
// asks for it and --verbose was not given.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	return a.loadConfigWith(ctx, a.loadOptions())
}

// loadConfigForEdit loads the configuration as stored on disk, without
// NUGETSTEP_* overrides, for commands that save it back.
func (a *App) loadConfigForEdit(ctx context.Context) (*config.Config, error) {
	opts := a.loadOptions()
	opts.IgnoreEnv = true
	return a.loadConfigWith(ctx, opts)
}

func (a *App) loadConfigWith(ctx context.Context, opts config.LoadOptions) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, opts)
	if err != nil {
		return nil, newServiceError(err, issue.ConfigLoadFailedId, errorDetails(err, a.verbose))
	}

	a.colorScheme = cfg.UI.ColorScheme
	if cfg.UI.Verbose && !a.verbose {
		a.verbose = true
		logging.Setup(a.stderr, true)
	}

	return cfg, nil
}

// issueStyle returns the glamour style for issue help text. Only an explicit
// light scheme switches away from the dark style.
func (a *App) issueStyle() string {
	if a.colorScheme == config.ColorSchemeLight {
		return "light"
	}
	return "dark"
}
