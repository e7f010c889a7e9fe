// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE validation utilities.
//
// The nugetstep configuration file is validated in three steps:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify with the schema definition
//  3. Validate (non-concrete) and decode to a Go map for viper
//
// Errors are reported with JSON-path prefixes (e.g. "installations[1].name")
// so users can find the offending entry quickly.
package cueutil
