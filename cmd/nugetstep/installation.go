// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/nugetstep/nugetstep/internal/config"
	"github.com/nugetstep/nugetstep/internal/issue"

	"github.com/spf13/cobra"
)

// installationAddOptions holds the `installation add` flag values.
type installationAddOptions struct {
	home            string
	defaultArgs     string
	installerURL    string
	installerSHA256 string
}

// newInstallationCommand creates the `nugetstep installation` command tree.
func newInstallationCommand(app *App) *cobra.Command {
	instCmd := &cobra.Command{
		Use:     "installation",
		Aliases: []string{"installations", "inst"},
		Short:   "Manage NuGet installations",
		Long: `Manage the NuGet installations steps can refer to with --installation.

An installation has a unique name, the path to nuget.exe ("home") and
optional default arguments appended to every command line. The home may
contain $VAR, ${VAR} or %VAR% placeholders, expanded when a step runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	instCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List configured installations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listInstallations(cmd.Context(), app)
		},
	})

	addOpts := &installationAddOptions{}
	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an installation",
		Example: `  nugetstep installation add nuget-6 --home 'C:\tools\nuget-6\nuget.exe'
  nugetstep installation add nuget-latest --home '${TOOLS}/nuget.exe' --default-args "-NonInteractive"
  nugetstep installation add nuget-dl --installer-url https://dist.nuget.org/win-x86-commandline/latest/nuget.exe`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return addInstallation(cmd.Context(), app, args[0], addOpts)
		},
	}
	addCmd.Flags().StringVar(&addOpts.home, "home", "", "path to nuget.exe")
	addCmd.Flags().StringVar(&addOpts.defaultArgs, "default-args", "", "arguments appended to every command line")
	addCmd.Flags().StringVar(&addOpts.installerURL, "installer-url", "", "download nuget.exe from this URL when home is missing")
	addCmd.Flags().StringVar(&addOpts.installerSHA256, "installer-sha256", "", "expected SHA-256 of the download")
	instCmd.AddCommand(addCmd)

	instCmd.AddCommand(&cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove an installation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return removeInstallation(cmd.Context(), app, args[0])
		},
	})

	return instCmd
}

func listInstallations(ctx context.Context, app *App) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}

	w := app.stdout
	fmt.Fprintln(w, TitleStyle.Render("Installations"))
	fmt.Fprintln(w)

	if len(cfg.Installations) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none configured, steps use nuget.exe from PATH)"))
		return nil
	}

	for _, inst := range cfg.Installations {
		fmt.Fprintf(w, "%s\n", CmdStyle.Render(inst.Name))
		home := SubtitleStyle.Render("(not set)")
		if inst.Home != "" {
			home = SuccessStyle.Render(inst.Home)
		}
		fmt.Fprintf(w, "  home: %s\n", home)
		if inst.DefaultArgs != "" {
			fmt.Fprintf(w, "  default_args: %s\n", SuccessStyle.Render(inst.DefaultArgs))
		}
		if inst.Installer != nil {
			fmt.Fprintf(w, "  installer: %s\n", SuccessStyle.Render(inst.Installer.URL))
		}
	}

	return nil
}

func addInstallation(ctx context.Context, app *App, name string, opts *installationAddOptions) error {
	cfg, err := app.loadConfigForEdit(ctx)
	if err != nil {
		return err
	}

	entry := config.InstallationConfig{
		Name:        name,
		Home:        opts.home,
		DefaultArgs: opts.defaultArgs,
	}
	if opts.installerURL != "" || opts.installerSHA256 != "" {
		entry.Installer = &config.InstallerConfig{URL: opts.installerURL, SHA256: opts.installerSHA256}
	}

	if valid, errs := entry.IsValid(); !valid {
		return issue.NewErrorContext().
			WithOperation("add installation").
			WithResource(name).
			WithSuggestion("Names must not be empty, padded or a Windows reserved name").
			WithSuggestion("--installer-sha256 must be 64 hex characters").
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	store, err := cfg.Store()
	if err != nil {
		return err
	}
	if err := store.Add(entry.Installation()); err != nil {
		return issue.NewErrorContext().
			WithOperation("add installation").
			WithResource(name).
			WithSuggestion("Remove the existing installation first with 'nugetstep installation remove " + name + "'").
			Wrap(err).
			BuildError()
	}

	cfg.Installations = append(cfg.Installations, entry)
	if err := config.Save(cfg, app.loadOptions()); err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "%s Added installation %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(name))
	return nil
}

func removeInstallation(ctx context.Context, app *App, name string) error {
	cfg, err := app.loadConfigForEdit(ctx)
	if err != nil {
		return err
	}

	store, err := cfg.Store()
	if err != nil {
		return err
	}
	if !store.Remove(name) {
		return issue.NewErrorContext().
			WithOperation("remove installation").
			WithResource(name).
			WithSuggestion("Run 'nugetstep installation list' to see configured installations").
			Wrap(fmt.Errorf("installation %q is not configured", name)).
			BuildError()
	}

	cfg.Installations = slices.DeleteFunc(cfg.Installations, func(inst config.InstallationConfig) bool {
		return inst.Name == name
	})
	if err := config.Save(cfg, app.loadOptions()); err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "%s Removed installation %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(name))
	return nil
}
