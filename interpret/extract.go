/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package interpret

import (
	"regexp"
	"strings"
)

var (
	thinkingBlock = regexp.MustCompile(`(?is)<thinking>.*?</thinking>`)
	fenceOpen     = regexp.MustCompile("(?i)^```\\s*(json)?\\s*$")
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
)

// candidates returns the strings worth decoding, most specific first:
// the reply with its outer fences removed, the first fenced block, the first
// balanced object and a comma-repaired copy of that object.
func candidates(raw string) []string {
	text := strings.TrimSpace(thinkingBlock.ReplaceAllString(raw, ""))

	out := []string{StripFences(text)}
	if block, ok := FencedBlock(text); ok {
		out = append(out, block)
	}
	if obj, ok := FirstObject(text); ok {
		out = append(out, obj)
		if repaired := trailingComma.ReplaceAllString(obj, "$1"); repaired != obj {
			out = append(out, repaired)
		}
	}
	return out
}

// StripFences removes a leading ``` line (with any language tag) and a
// trailing ``` marker.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// FencedBlock returns the body of the first ```json (or bare ```) block.
func FencedBlock(s string) (string, bool) {
	var body []string
	inside := false
	for line := range strings.SplitSeq(s, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case !inside && fenceOpen.MatchString(trimmed):
			inside = true
		case inside && trimmed == "```":
			return strings.TrimSpace(strings.Join(body, "\n")), true
		case inside:
			body = append(body, line)
		}
	}
	return "", false
}

// FirstObject returns the first balanced {...} span of s. Braces inside JSON
// strings do not count.
func FirstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
