// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// It centralizes GOOS names, the Unix-versus-other classification used to decide
// whether a launched tool must be wrapped in cmd.exe, and Windows reserved
// filenames that cannot be used as on-disk directory names for installations.
package platform
