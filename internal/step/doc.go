// SPDX-License-Identifier: MPL-2.0

// Package step runs a single NuGet build step.
//
// An Executor resolves the step's installation, builds the argument vector
// from the step's command, target file and arguments, picks the working
// directory and launches nuget.exe on a node. The step succeeds when the
// process exits with code 0.
//
// Argument vector layout:
//
//	[exe, command, file?, args..., defaultArgs...]
//
// On non-Unix nodes the vector is wrapped as
// "cmd.exe /C <args> && exit %ERRORLEVEL%" so the caller observes the tool's
// exit code rather than the shell's.
package step
