// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/nugetstep/nugetstep/internal/installation"
	"github.com/nugetstep/nugetstep/internal/issue"
	"github.com/nugetstep/nugetstep/internal/node"
	"github.com/nugetstep/nugetstep/pkg/cueutil"
	"github.com/nugetstep/nugetstep/pkg/platform"

	"cuelang.org/go/cue/literal"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "nugetstep"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. NUGETSTEP_UI_VERBOSE.
	EnvPrefix = "NUGETSTEP"
	// LocalNodeName names the host machine when no node is configured for it.
	LocalNodeName = node.DefaultName
)

// ErrUnknownNode is returned when a node name is not configured.
var ErrUnknownNode = errors.New("unknown node")

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the nugetstep configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// loadWithOptions performs option-driven config loading and returns the
// config together with the file it was read from ("" when only defaults apply).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	if !opts.IgnoreEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	defaults := DefaultConfig()
	v.SetDefault("installations", []any{})
	v.SetDefault("nodes", []any{})
	v.SetDefault("default_node", defaults.DefaultNode)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	resolvedPath := ""

	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Run 'nugetstep config init --config <path>' to create it").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		if err := loadCUEIntoViper(v, opts.ConfigFilePath); err != nil {
			return nil, "", loadError(opts.ConfigFilePath, err)
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
		if err != nil {
			return nil, "", err
		}

		cuePath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
		localCuePath := ConfigFileName + "." + ConfigFileExt
		switch {
		case fileExists(cuePath):
			resolvedPath = cuePath
		case opts.ConfigDirPath == "" && fileExists(localCuePath):
			if resolvedPath, err = filepath.Abs(localCuePath); err != nil {
				return nil, "", fmt.Errorf("failed to resolve %s: %w", localCuePath, err)
			}
		}
		if resolvedPath != "" {
			if err := loadCUEIntoViper(v, resolvedPath); err != nil {
				return nil, "", loadError(resolvedPath, err)
			}
		}
		// If no config file found, use defaults (no error)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	migrateLegacyInstallations(&cfg)

	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Give every installation and node a unique, non-empty name").
			WithSuggestion("Use 'nugetstep config show' to inspect the effective configuration").
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

func loadError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithSuggestion("Check that the file contains valid CUE syntax").
		WithSuggestion("Verify the configuration values match the expected schema").
		WithSuggestion("See 'nugetstep config --help' for configuration options").
		Wrap(err).
		BuildError()
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper validates a CUE file against the #Config schema and merges
// its contents into Viper.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := cueutil.DecodeToMap(configSchema, "#Config", data, path)
	if err != nil {
		return err
	}

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// Path returns the file the config was loaded from, or "" when only defaults
// applied.
func (c *Config) Path() string {
	return c.path
}

// Store builds the installation registry from the configured installations.
func (c *Config) Store() (*installation.Store, error) {
	list := make([]installation.Installation, 0, len(c.Installations))
	for _, inst := range c.Installations {
		list = append(list, inst.Installation())
	}
	return installation.NewStore(list)
}

// Node builds the execution node called name. An empty name selects
// DefaultNode, then the local machine.
func (c *Config) Node(name string) (*node.Local, error) {
	if name == "" {
		name = c.DefaultNode
	}
	if name == "" {
		name = LocalNodeName
	}

	for _, n := range c.Nodes {
		if n.Name != name {
			continue
		}
		opts := []node.Option{node.WithName(n.Name), node.WithToolLocations(n.ToolLocationMap())}
		if n.OS != "" {
			opts = append(opts, node.WithOS(n.OS))
		}
		if n.ToolsDir != "" {
			opts = append(opts, node.WithToolsDir(n.ToolsDir))
		}
		return node.NewLocal(opts...), nil
	}

	if name == LocalNodeName {
		return node.NewLocal(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownNode, name)
}

// CreateDefaultConfig writes a default config file at the location opts
// points to unless one already exists. It returns the path and whether the
// file was created.
func CreateDefaultConfig(opts LoadOptions) (string, bool, error) {
	cfgPath, err := opts.FilePath()
	if err != nil {
		return "", false, err
	}

	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}

	if err := writeConfig(cfgPath, DefaultConfig()); err != nil {
		return "", false, err
	}
	return cfgPath, true, nil
}

// Save writes cfg back to the file it was loaded from, or to the config file
// opts points to when cfg was not read from a file.
func Save(cfg *Config, opts LoadOptions) error {
	cfgPath := cfg.path
	if cfgPath == "" {
		var err error
		if cfgPath, err = opts.FilePath(); err != nil {
			return err
		}
	}
	return writeConfig(cfgPath, cfg)
}

func writeConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateCUE generates a CUE representation of the configuration.
// Legacy path_to_nuget fields are never written.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// nugetstep configuration file\n")
	sb.WriteString("// Manage installations with 'nugetstep installation add|remove'.\n\n")

	if len(cfg.Installations) > 0 {
		sb.WriteString("installations: [\n")
		for _, inst := range cfg.Installations {
			sb.WriteString("\t{\n")
			fmt.Fprintf(&sb, "\t\tname: %s\n", quote(inst.Name))
			if inst.Home != "" {
				fmt.Fprintf(&sb, "\t\thome: %s\n", quote(inst.Home))
			}
			if inst.DefaultArgs != "" {
				fmt.Fprintf(&sb, "\t\tdefault_args: %s\n", quote(inst.DefaultArgs))
			}
			if inst.Installer != nil {
				if inst.Installer.SHA256 != "" {
					fmt.Fprintf(&sb, "\t\tinstaller: {url: %s, sha256: %s}\n", quote(inst.Installer.URL), quote(inst.Installer.SHA256))
				} else {
					fmt.Fprintf(&sb, "\t\tinstaller: {url: %s}\n", quote(inst.Installer.URL))
				}
			}
			sb.WriteString("\t},\n")
		}
		sb.WriteString("]\n\n")
	}

	if len(cfg.Nodes) > 0 {
		sb.WriteString("nodes: [\n")
		for _, n := range cfg.Nodes {
			sb.WriteString("\t{\n")
			fmt.Fprintf(&sb, "\t\tname: %s\n", quote(n.Name))
			if n.OS != "" {
				fmt.Fprintf(&sb, "\t\tos: %s\n", quote(n.OS))
			}
			if n.ToolsDir != "" {
				fmt.Fprintf(&sb, "\t\ttools_dir: %s\n", quote(n.ToolsDir))
			}
			if len(n.ToolLocations) > 0 {
				sb.WriteString("\t\ttool_locations: [\n")
				for _, loc := range n.ToolLocations {
					fmt.Fprintf(&sb, "\t\t\t{installation: %s, home: %s},\n", quote(loc.Installation), quote(loc.Home))
				}
				sb.WriteString("\t\t]\n")
			}
			sb.WriteString("\t},\n")
		}
		sb.WriteString("]\n\n")
	}

	if cfg.DefaultNode != "" {
		fmt.Fprintf(&sb, "default_node: %s\n\n", quote(cfg.DefaultNode))
	}

	sb.WriteString("ui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %s\n", quote(string(cfg.UI.ColorScheme)))
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

func quote(s string) string {
	return literal.String.Quote(s)
}
