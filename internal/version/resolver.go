// Package version resolves user-supplied version identifiers into the
// concrete tag names and match predicates used by a scan.
package version

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidPattern indicates an empty or malformed version input.
var ErrInvalidPattern = errors.New("invalid version pattern")

// Matcher reports whether a tag name matches a resolved version pattern.
type Matcher func(tagName string) bool

// ResolveExact returns the literal tag candidates for a version string, in
// membership-test priority order. When includeVPrefix is set and the version
// does not already start with "v", the v-prefixed form is appended after the
// exact form.
func ResolveExact(version string, includeVPrefix bool) ([]string, error) {
	if strings.TrimSpace(version) == "" {
		return nil, fmt.Errorf("%w: empty version", ErrInvalidPattern)
	}
	candidates := []string{version}
	if includeVPrefix && !strings.HasPrefix(version, "v") {
		candidates = append(candidates, "v"+version)
	}
	return candidates, nil
}

// ResolvePattern compiles a version-prefix matcher. A tag matches when it
// equals the pattern (with or without a leading "v") or starts with the
// pattern followed by a "." separator, so "0.75" matches "0.75.5" and
// "v0.75" but not "0.750". The pattern is treated as a literal string.
func ResolvePattern(pattern string) (Matcher, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}

	escaped := regexp.QuoteMeta(pattern)
	re, err := regexp.Compile(fmt.Sprintf(`^v?%s(\.|$)`, escaped))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return re.MatchString, nil
}
