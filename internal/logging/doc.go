// SPDX-License-Identifier: MPL-2.0

// Package logging configures the process-wide slog logger.
package logging
