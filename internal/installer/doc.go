// SPDX-License-Identifier: MPL-2.0

// Package installer provisions nuget.exe for installations that declare an
// auto-installer. It downloads the executable over HTTP, verifies an optional
// SHA-256 digest and caches the result under the node's tools directory so
// later builds reuse it.
//
// The package is organized into two concerns:
//   - checksum.go: SHA-256 computation and verification
//   - installer.go: Installer type implementing installation.Provisioner
package installer
