// SPDX-License-Identifier: MIT
// Package strutil provides small string helpers shared across TagScout.
package strutil

import "strings"

// SplitCSV splits a comma-separated flag value, trimming whitespace and
// dropping empty elements.
func SplitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// FirstLine returns everything before the first newline, trimmed.
func FirstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// ShortCommit abbreviates a commit id to its first 7 characters.
func ShortCommit(commitID string) string {
	if len(commitID) <= 7 {
		return commitID
	}
	return commitID[:7]
}

// ExtractEmail pulls the address out of a "Name <email>" author string.
// It returns an empty string when no well-formed address is present.
func ExtractEmail(author string) string {
	start := strings.IndexByte(author, '<')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(author[start:], '>')
	if end <= 1 {
		return ""
	}
	return author[start+1 : start+end]
}
