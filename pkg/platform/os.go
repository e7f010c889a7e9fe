// SPDX-License-Identifier: MPL-2.0

package platform

import "runtime"

// OS name constants for runtime.GOOS comparisons.
// Centralizes the string literals to avoid scattered magic strings.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// IsUnix reports whether goos is a Unix-like operating system.
// Everything except Windows (and Plan 9, which has its own shell semantics) counts.
func IsUnix(goos string) bool {
	switch goos {
	case Windows, "plan9":
		return false
	default:
		return true
	}
}

// CurrentIsUnix reports whether the running process is on a Unix-like OS.
func CurrentIsUnix() bool {
	return IsUnix(runtime.GOOS)
}
