// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. The issue catalog maps fatal failure categories (missing
// executable, unreadable configuration, failed auto-install) to Markdown help
// rendered with glamour.
package issue
