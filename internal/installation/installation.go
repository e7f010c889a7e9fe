// SPDX-License-Identifier: MPL-2.0

package installation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/nugetstep/nugetstep/internal/macro"
	"github.com/nugetstep/nugetstep/pkg/platform"
)

var (
	// ErrInvalidName is the sentinel error wrapped by InvalidNameError.
	ErrInvalidName = errors.New("invalid installation name")
	// ErrTranslate is wrapped by every ForNode failure.
	ErrTranslate = errors.New("node translation failed")
)

type (
	// Installer describes how to obtain the executable when a node has no
	// usable home for the installation.
	Installer struct {
		// URL is the download location of nuget.exe.
		URL string
		// SHA256 is the optional hex digest the download must match.
		SHA256 string
	}

	// Installation is a named NuGet installation record.
	Installation struct {
		name        string
		home        string
		defaultArgs string
		installer   *Installer
	}

	// InvalidNameError is returned when an installation name is empty, padded
	// with whitespace, contains control characters or is a Windows reserved name.
	InvalidNameError struct {
		Value  string
		Reason string
	}

	// Node is the part of an execution node that translation needs.
	Node interface {
		// Name identifies the node in diagnostics.
		Name() string
		// ToolHome returns a node-specific home override for the installation.
		ToolHome(installation string) (string, bool)
		// Exists reports whether path is an existing file on the node.
		Exists(ctx context.Context, path string) (bool, error)
	}

	// Provisioner installs the executable for an installation on a node and
	// returns its home. Implementations may block on network I/O.
	Provisioner interface {
		Provision(ctx context.Context, inst Installation, node Node) (string, error)
	}
)

// New creates an Installation. An empty or whitespace-only defaultArgs is
// normalized to "no default arguments".
func New(name, home, defaultArgs string) Installation {
	if strings.TrimSpace(defaultArgs) == "" {
		defaultArgs = ""
	}
	return Installation{name: name, home: home, defaultArgs: defaultArgs}
}

// WithInstaller returns a copy of i that uses inst as its auto-installer.
func (i Installation) WithInstaller(inst *Installer) Installation {
	if inst != nil {
		cp := *inst
		inst = &cp
	}
	i.installer = inst
	return i
}

// Name returns the unique installation name.
func (i Installation) Name() string { return i.name }

// Home returns the executable path, possibly empty or containing placeholders.
func (i Installation) Home() string { return i.home }

// DefaultArgs returns the default argument string ("" when absent).
func (i Installation) DefaultArgs() string { return i.defaultArgs }

// Installer returns a copy of the auto-installer settings, or nil.
func (i Installation) Installer() *Installer {
	if i.installer == nil {
		return nil
	}
	cp := *i.installer
	return &cp
}

// ForNode returns a copy of i whose home is translated for node.
//
// A tool-location override configured on the node replaces the home. When the
// resulting home is empty or missing on the node and an installer is configured,
// provisioner supplies the home. Cancellation of ctx and any I/O failure are
// returned as errors wrapping ErrTranslate; they must abort the step.
func (i Installation) ForNode(ctx context.Context, node Node, provisioner Provisioner) (Installation, error) {
	if err := ctx.Err(); err != nil {
		return Installation{}, fmt.Errorf("%w: %s on %s: %w", ErrTranslate, i.name, node.Name(), err)
	}

	home := i.home
	if override, ok := node.ToolHome(i.name); ok {
		home = override
	}

	if i.installer != nil && provisioner != nil {
		needed := home == ""
		if !needed {
			exists, err := node.Exists(ctx, home)
			if err != nil {
				return Installation{}, fmt.Errorf("%w: %s on %s: %w", ErrTranslate, i.name, node.Name(), err)
			}
			needed = !exists
		}
		if needed {
			installed, err := provisioner.Provision(ctx, i, node)
			if err != nil {
				return Installation{}, fmt.Errorf("%w: %s on %s: %w", ErrTranslate, i.name, node.Name(), err)
			}
			home = installed
		}
	}

	out := i
	out.home = home
	return out, nil
}

// ForEnvironment returns a copy of i whose home has $VAR, ${VAR} and %VAR%
// placeholders expanded from env. Unknown placeholders are kept.
func (i Installation) ForEnvironment(env map[string]string) Installation {
	out := i
	out.home = macro.Expand(i.home, env)
	return out
}

// ValidateName checks that name can identify an installation.
func ValidateName(name string) error {
	switch {
	case name == "":
		return &InvalidNameError{Value: name, Reason: "must not be empty"}
	case strings.TrimSpace(name) != name:
		return &InvalidNameError{Value: name, Reason: "must not start or end with whitespace"}
	case strings.IndexFunc(name, unicode.IsControl) >= 0:
		return &InvalidNameError{Value: name, Reason: "must not contain control characters"}
	case platform.IsWindowsReservedName(name):
		return &InvalidNameError{Value: name, Reason: "is a reserved Windows filename"}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid installation name %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidName for errors.Is() compatibility.
func (e *InvalidNameError) Unwrap() error { return ErrInvalidName }
