// SPDX-License-Identifier: MPL-2.0

package macro

import "regexp"

var controlWhitespace = regexp.MustCompile(`[\t\r\n]+`)

// Normalize collapses every run of tab, carriage-return and newline characters
// into a single space. Plain spaces are left alone, so the result contains no
// control whitespace and Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	return controlWhitespace.ReplaceAllString(s, " ")
}
