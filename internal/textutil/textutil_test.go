package textutil_test

import (
	"testing"

	"cinelake/internal/textutil"
)

func TestCollapseWhitespace(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  The   Godfather  ", "The Godfather"},
		{"no-change", "no-change"},
		{"tabs\tand\nnewlines", "tabs and newlines"},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := textutil.CollapseWhitespace(tc.in); got != tc.want {
			t.Fatalf("CollapseWhitespace(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	if got := textutil.TitleCase("the dark knight"); got != "The Dark Knight" {
		t.Fatalf("TitleCase = %q", got)
	}
}
