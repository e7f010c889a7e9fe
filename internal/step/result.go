// SPDX-License-Identifier: MPL-2.0

package step

// BuildResult is the overall outcome recorded on an ExecutionContext.
type BuildResult int

const (
	// ResultSuccess is the initial result of a build.
	ResultSuccess BuildResult = iota
	// ResultFailure marks a build that failed for reasons other than a
	// non-zero tool exit, such as a launch I/O error.
	ResultFailure
)

// String returns "SUCCESS" or "FAILURE".
func (r BuildResult) String() string {
	if r == ResultFailure {
		return "FAILURE"
	}
	return "SUCCESS"
}
