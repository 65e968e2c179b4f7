// Package testkit holds small assertions shared by package tests
package testkit

import (
	"strings"
	"testing"
)

// MustPanic fails t unless fn panics
func MustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic, got none")
		}
	}()
	fn()
}

// MustContain fails t when needle is missing from haystack. Long output is
// truncated in the failure message
func MustContain(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		return
	}
	shown := haystack
	if len(shown) > 2048 {
		shown = shown[:2048] + "..."
	}
	t.Fatalf("expected output to contain %q\ngot:\n%s", needle, shown)
}
