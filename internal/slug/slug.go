// Package slug turns post titles into URL-safe identifiers.
package slug

import (
	"regexp"
	"strings"
)

var (
	disallowed = regexp.MustCompile(`[^\w\s\v\p{Z}-]`)
	spaceRuns  = regexp.MustCompile(`[\s\v\p{Z}]+`)
	hyphenRuns = regexp.MustCompile(`-+`)
	storable   = regexp.MustCompile(`^[a-z0-9_-]*[a-z0-9_][a-z0-9_-]*$`)
)

// Derive maps a title to its slug. It never fails; symbol-only titles yield "" or bare hyphens,
// which Valid rejects.
func Derive(title string) string {
	s := strings.TrimSpace(strings.ToLower(title))
	s = disallowed.ReplaceAllString(s, "")
	s = spaceRuns.ReplaceAllString(s, "-")
	return hyphenRuns.ReplaceAllString(s, "-")
}

// Valid reports whether s can key a stored post.
func Valid(s string) bool {
	return storable.MatchString(s)
}
