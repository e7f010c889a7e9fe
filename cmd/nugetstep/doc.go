// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for nugetstep.
//
// This package implements the Cobra command hierarchy for the nugetstep CLI:
// the root command, `run` for executing a build step, and the `installation`
// and `config` commands for managing the configuration file.
package cmd
