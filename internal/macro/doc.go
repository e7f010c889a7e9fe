// SPDX-License-Identifier: MPL-2.0

// Package macro turns free-form step text into process arguments.
//
// Text flows through Normalize (control-whitespace runs become one space),
// Expand (placeholder substitution, applied once per variable source) and
// Tokenize (quote-aware splitting). Quote renders an argument vector for logs.
package macro
