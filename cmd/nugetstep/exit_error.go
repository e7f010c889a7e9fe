// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/nugetstep/nugetstep/pkg/types"
)

// interruptedExitCode is the conventional exit code after SIGINT.
const interruptedExitCode types.ExitCode = 130

// ExitError carries the status nugetstep exits with out of a RunE handler:
// the exit code of nuget.exe when the tool ran and failed, 1 when no tool
// could be launched, or interruptedExitCode.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("nuget exited with code %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// processExitCode returns Code clamped to a process exit status. An
// ExitError always means failure, so a zero or out-of-range code becomes 1.
func (e *ExitError) processExitCode() int {
	if code := e.Code.ProcessExitCode(); code != 0 {
		return code
	}
	return 1
}
