// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nugetstep/nugetstep/internal/installation"
	"github.com/nugetstep/nugetstep/internal/installer"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidInstallationConfig is the sentinel error wrapped by InvalidInstallationConfigError.
	ErrInvalidInstallationConfig = errors.New("invalid installation config")
	// ErrInvalidNodeConfig is the sentinel error wrapped by InvalidNodeConfigError.
	ErrInvalidNodeConfig = errors.New("invalid node config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidInstallationConfigError is returned when an InstallationConfig has
	// invalid fields. It collects field-level validation errors.
	InvalidInstallationConfigError struct {
		Name        string
		FieldErrors []error
	}

	// InvalidNodeConfigError is returned when a NodeConfig has invalid fields.
	InvalidNodeConfigError struct {
		Name        string
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// InstallerConfig describes the auto-installer of an installation.
	InstallerConfig struct {
		// URL is the download location of nuget.exe.
		URL string `json:"url" mapstructure:"url"`
		// SHA256 is the optional hex digest of the download.
		SHA256 string `json:"sha256,omitempty" mapstructure:"sha256"`
	}

	// InstallationConfig is one configured NuGet installation.
	InstallationConfig struct {
		// Name is the unique logical name steps refer to.
		Name string `json:"name" mapstructure:"name"`
		// Home is the path to nuget.exe. It may contain $VAR, ${VAR} or %VAR%.
		Home string `json:"home,omitempty" mapstructure:"home"`
		// DefaultArgs are appended to every command line using this installation.
		DefaultArgs string `json:"default_args,omitempty" mapstructure:"default_args"`
		// Installer downloads nuget.exe when Home is empty or missing on a node.
		Installer *InstallerConfig `json:"installer,omitempty" mapstructure:"installer"`
		// PathToNuGet is the legacy single-path field; it is moved to Home at load.
		PathToNuGet string `json:"path_to_nuget,omitempty" mapstructure:"path_to_nuget"`
	}

	// ToolLocation overrides an installation's home on one node.
	ToolLocation struct {
		Installation string `json:"installation" mapstructure:"installation"`
		Home         string `json:"home" mapstructure:"home"`
	}

	// NodeConfig describes an execution node.
	NodeConfig struct {
		// Name identifies the node for --node and default_node.
		Name string `json:"name" mapstructure:"name"`
		// OS is a GOOS value; empty means the host OS.
		OS string `json:"os,omitempty" mapstructure:"os"`
		// ToolsDir is where auto-installed tools are cached.
		ToolsDir string `json:"tools_dir,omitempty" mapstructure:"tools_dir"`
		// ToolLocations override installation homes on this node.
		ToolLocations []ToolLocation `json:"tool_locations,omitempty" mapstructure:"tool_locations"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// Config holds the application configuration.
	Config struct {
		// Installations are the configured NuGet installations, in order.
		Installations []InstallationConfig `json:"installations" mapstructure:"installations"`
		// Nodes are the configured execution nodes.
		Nodes []NodeConfig `json:"nodes" mapstructure:"nodes"`
		// DefaultNode is used when no --node flag is given.
		DefaultNode string `json:"default_node,omitempty" mapstructure:"default_node"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`

		// path is the file the config was loaded from, empty for defaults.
		path string
	}
)

// Installation converts the entry into a domain Installation.
func (c InstallationConfig) Installation() installation.Installation {
	inst := installation.New(c.Name, c.Home, c.DefaultArgs)
	if c.Installer != nil {
		inst = inst.WithInstaller(&installation.Installer{URL: c.Installer.URL, SHA256: c.Installer.SHA256})
	}
	return inst
}

// IsValid returns whether the InstallationConfig has valid fields.
func (c InstallationConfig) IsValid() (bool, []error) {
	var errs []error
	if err := installation.ValidateName(c.Name); err != nil {
		errs = append(errs, err)
	}
	if c.Installer != nil {
		if strings.TrimSpace(c.Installer.URL) == "" {
			errs = append(errs, errors.New("installer url must not be empty"))
		}
		if err := installer.ValidateChecksum(c.Installer.SHA256); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidInstallationConfigError{Name: c.Name, FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidInstallationConfigError.
func (e *InvalidInstallationConfigError) Error() string {
	return fmt.Sprintf("invalid installation %q: %v", e.Name, errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidInstallationConfig and the field errors.
func (e *InvalidInstallationConfigError) Unwrap() []error {
	return append([]error{ErrInvalidInstallationConfig}, e.FieldErrors...)
}

// ToolLocationMap returns the node's tool locations keyed by installation name.
func (c NodeConfig) ToolLocationMap() map[string]string {
	m := make(map[string]string, len(c.ToolLocations))
	for _, loc := range c.ToolLocations {
		m[loc.Installation] = loc.Home
	}
	return m
}

// IsValid returns whether the NodeConfig has valid fields.
func (c NodeConfig) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, errors.New("node name must not be empty"))
	}
	seen := make(map[string]bool, len(c.ToolLocations))
	for _, loc := range c.ToolLocations {
		if seen[loc.Installation] {
			errs = append(errs, fmt.Errorf("duplicate tool location for %q", loc.Installation))
		}
		seen[loc.Installation] = true
	}
	if len(errs) > 0 {
		return false, []error{&InvalidNodeConfigError{Name: c.Name, FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidNodeConfigError.
func (e *InvalidNodeConfigError) Error() string {
	return fmt.Sprintf("invalid node %q: %v", e.Name, errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidNodeConfig and the field errors.
func (e *InvalidNodeConfigError) Unwrap() []error {
	return append([]error{ErrInvalidNodeConfig}, e.FieldErrors...)
}

// IsValid returns whether the UIConfig has valid fields.
func (c UIConfig) IsValid() (bool, []error) {
	return c.ColorScheme.IsValid()
}

// IsValid returns whether the Config has valid fields. Installation and node
// names must be unique.
func (c Config) IsValid() (bool, []error) {
	var errs []error

	names := make(map[string]bool, len(c.Installations))
	for _, inst := range c.Installations {
		if valid, fieldErrs := inst.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
		if names[inst.Name] {
			errs = append(errs, fmt.Errorf("%w: %q", installation.ErrDuplicateName, inst.Name))
		}
		names[inst.Name] = true
	}

	nodes := make(map[string]bool, len(c.Nodes))
	for _, n := range c.Nodes {
		if valid, fieldErrs := n.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
		if nodes[n.Name] {
			errs = append(errs, fmt.Errorf("duplicate node name %q", n.Name))
		}
		nodes[n.Name] = true
	}

	if c.DefaultNode != "" && !nodes[c.DefaultNode] && c.DefaultNode != LocalNodeName {
		errs = append(errs, fmt.Errorf("default_node %q is not a configured node", c.DefaultNode))
	}

	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}

	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig and the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Installations: []InstallationConfig{},
		Nodes:         []NodeConfig{},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
