// SPDX-License-Identifier: MPL-2.0

// Package installation models named NuGet installations and resolves them for
// an execution node and environment.
//
// An Installation is an immutable value. ForNode and ForEnvironment return new
// values with a translated home; they must be applied in that order because
// node translation may rely on placeholders meant for the node, while
// environment expansion targets the final local path.
//
// Store is the explicitly-owned installation registry built from configuration.
// It is written only by configuration commands and read during execution.
package installation
