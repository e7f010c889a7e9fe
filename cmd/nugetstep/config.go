// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/nugetstep/nugetstep/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `nugetstep config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage nugetstep configuration",
		Long: `Manage nugetstep configuration.

Configuration is stored in:
  - Linux: ~/.config/nugetstep/config.cue
  - macOS: ~/Library/Application Support/nugetstep/config.cue
  - Windows: %APPDATA%\nugetstep\config.cue

Values can be overridden with NUGETSTEP_* environment variables,
e.g. NUGETSTEP_UI_VERBOSE=true.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := app.loadOptions().FilePath()
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, cfgPath)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}

	w := app.stdout
	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	none := SubtitleStyle.Render("(none configured)")

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	cfgFile := SubtitleStyle.Render("(using defaults)")
	if cfg.Path() != "" {
		cfgFile = cfg.Path()
	}
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), cfgFile)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s:\n", keyStyle.Render("installations"))
	if len(cfg.Installations) == 0 {
		fmt.Fprintf(w, "  %s\n", none)
	}
	for _, inst := range cfg.Installations {
		fmt.Fprintf(w, "  - %s: %s\n", inst.Name, valueStyle.Render(inst.Home))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("nodes"))
	if len(cfg.Nodes) == 0 {
		fmt.Fprintf(w, "  %s\n", none)
	}
	for _, n := range cfg.Nodes {
		osName := n.OS
		if osName == "" {
			osName = "host"
		}
		fmt.Fprintf(w, "  - %s (%s)", n.Name, valueStyle.Render(osName))
		if len(n.ToolLocations) > 0 {
			overrides := make([]string, 0, len(n.ToolLocations))
			for _, loc := range n.ToolLocations {
				overrides = append(overrides, loc.Installation)
			}
			fmt.Fprintf(w, " tool_locations: %s", valueStyle.Render(strings.Join(overrides, ", ")))
		}
		fmt.Fprintln(w)
	}

	defaultNode := cfg.DefaultNode
	if defaultNode == "" {
		defaultNode = config.LocalNodeName
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("default_node"), valueStyle.Render(defaultNode))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	return nil
}

func initConfig(app *App) error {
	cfgPath, created, err := config.CreateDefaultConfig(app.loadOptions())
	if err != nil {
		return err
	}

	if !created {
		fmt.Fprintf(app.stdout, "Config file already exists at: %s\n", cfgPath)
		return nil
	}

	fmt.Fprintf(app.stdout, "%s Created config file: %s\n", SuccessStyle.Render("✓"), cfgPath)
	return nil
}
