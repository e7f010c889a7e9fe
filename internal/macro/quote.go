// SPDX-License-Identifier: MPL-2.0

package macro

import (
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Quote renders args as a single shell-readable line for logs, quoting only
// the arguments that need it.
func Quote(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		q, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			// Quote rejects strings bash cannot represent (e.g. NUL bytes).
			q = strconv.Quote(arg)
		}
		quoted[i] = q
	}
	return strings.Join(quoted, " ")
}
