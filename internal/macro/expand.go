// SPDX-License-Identifier: MPL-2.0

package macro

import "regexp"

// placeholder matches ${NAME} (dots allowed), $NAME and %NAME%.
var placeholder = regexp.MustCompile(`\$\{([A-Za-z0-9_.]+)\}|\$([A-Za-z0-9_]+)|%([A-Za-z0-9_]+)%`)

// Expand replaces placeholders in s with values from vars.
//
// Placeholders whose name is not in vars are left verbatim, so a later Expand
// against another source can still resolve them. Substituted values are not
// rescanned within the same call.
func Expand(s string, vars map[string]string) string {
	if len(vars) == 0 || s == "" {
		return s
	}
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		sub := placeholder.FindStringSubmatch(m)
		name := sub[1] + sub[2] + sub[3]
		if v, ok := vars[name]; ok {
			return v
		}
		return m
	})
}

// ExpandAll applies Expand once per source, in order. A value substituted by
// an earlier source may itself contain placeholders for a later one.
func ExpandAll(s string, sources ...map[string]string) string {
	for _, vars := range sources {
		s = Expand(s, vars)
	}
	return s
}
