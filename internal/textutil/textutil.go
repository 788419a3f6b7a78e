// Package textutil provides the text normalization primitives backing the
// mapping transforms and the derived movie key.
package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// CollapseWhitespace trims the string and folds internal whitespace runs
// into single spaces.
func CollapseWhitespace(value string) string {
	return whitespacePattern.ReplaceAllString(strings.TrimSpace(value), " ")
}

// TitleCase converts a string to title case using Unicode casing rules.
func TitleCase(value string) string {
	return cases.Title(language.Und).String(value)
}

// Ternary is a generic conditional helper that returns a if cond is true, b otherwise.
func Ternary[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}
