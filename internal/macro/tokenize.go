// SPDX-License-Identifier: MPL-2.0

package macro

import "strings"

// Tokenize splits s into arguments on unquoted whitespace.
//
// Single and double quotes group text and are removed; adjacent quoted and bare
// segments join into one token, and an empty pair ("" or '') yields an empty
// token. Backslashes are literal except before '"' or '\' inside double quotes,
// so Windows paths such as C:\tools\nuget.exe survive unchanged. An unterminated
// quote extends to the end of the input.
func Tokenize(s string) []string {
	var (
		tokens  []string
		cur     strings.Builder
		inToken bool
		quote   rune
	)

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case quote == '\'':
			if r == '\'' {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case quote == '"':
			switch {
			case r == '"':
				quote = 0
			case r == '\\' && i+1 < len(runes) && (runes[i+1] == '"' || runes[i+1] == '\\'):
				i++
				cur.WriteRune(runes[i])
			default:
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inToken = true
		case isSpace(r):
			if inToken {
				tokens = append(tokens, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}

	if inToken {
		tokens = append(tokens, cur.String())
	}

	return tokens
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	default:
		return false
	}
}
