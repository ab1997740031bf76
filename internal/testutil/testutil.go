// Package testutil holds small helpers shared by TUI tests.
package testutil

import (
	"regexp"
	"strings"
	"testing"
)

// ansiRegex matches ANSI escape sequences.
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]|\x1b\][^\x07]*\x07`)

// StripANSI removes ANSI escape sequences from a string.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// AssertContains fails the test if output, after stripping ANSI codes,
// does not contain expected.
func AssertContains(t *testing.T, output, expected string) {
	t.Helper()
	plain := StripANSI(output)
	if !strings.Contains(plain, expected) {
		t.Errorf("output does not contain %q\nIn output:\n%s", expected, truncateForError(plain))
	}
}

// AssertNotContains fails the test if output, after stripping ANSI
// codes, contains unexpected.
func AssertNotContains(t *testing.T, output, unexpected string) {
	t.Helper()
	plain := StripANSI(output)
	if strings.Contains(plain, unexpected) {
		t.Errorf("output contains unexpected %q\nIn output:\n%s", unexpected, truncateForError(plain))
	}
}

func truncateForError(s string) string {
	const max = 2000
	if len(s) <= max {
		return s
	}
	return s[:max] + "\n... (truncated)"
}
