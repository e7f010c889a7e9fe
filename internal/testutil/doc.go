// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include environment variable management (MustSetenv, MustUnsetenv),
// filesystem operations (MustChdir, MustMkdirAll, MustWriteFile), the home directory
// (SetHomeDir) and fake tool scripts standing in for nuget.exe (WriteFakeTool).
package testutil
