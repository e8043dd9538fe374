// Copyright (c) 2026 the Costimizer authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package guide

import "strings"

// Sanitize strips two common generative-model JSON artifacts from raw
// output: // line comments and trailing commas immediately before a
// closing brace or bracket.
//
// It is a best-effort textual repair, not a parser: unbalanced braces,
// missing quotes, and truncated output pass through untouched and are left
// for the validator to reject. Both passes are string-aware so that "//"
// or "," inside a JSON string (e.g. a URL) survives. Idempotent: the
// comment pass runs first so that a comma it exposes is still caught by
// the trailing-comma pass.
func Sanitize(raw string) string {
	return strings.TrimSpace(stripTrailingCommas(stripLineComments(raw)))
}

// stripLineComments removes // comments outside JSON strings, keeping the
// line break.
func stripLineComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			b.WriteByte(c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}

		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}

		if c == '/' && i+1 < len(s) && s[i+1] == '/' {
			for i < len(s) && s[i] != '\n' {
				i++
			}
			if i < len(s) {
				b.WriteByte('\n')
			}
			continue
		}

		b.WriteByte(c)
	}

	return b.String()
}

// stripTrailingCommas drops a comma outside JSON strings when the next
// non-whitespace character closes an object or array.
func stripTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			b.WriteByte(c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}

		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}

		if c == ',' {
			j := i + 1
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}

		b.WriteByte(c)
	}

	return b.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
