package logutil

import (
	"strings"
	"testing"
)

func TestSafeText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello", `"hello"`},
		{"", `""`},
		{"line1\nINFO forged", `"line1\nINFO forged"`},
		{"tab\there", `"tab\there"`},
	}

	for _, tt := range tests {
		if got := SafeText(tt.input); got != tt.expected {
			t.Errorf("SafeText(%q) = %s, expected %s", tt.input, got, tt.expected)
		}
	}
}

func TestSafeTextTruncates(t *testing.T) {
	long := strings.Repeat("é", 250)
	got := SafeText(long)
	if !strings.HasSuffix(got, "...(250 chars)") {
		t.Errorf("SafeText(long) = %q, expected a length suffix", got)
	}
	if strings.Count(got, "é") != safeTextLimit {
		t.Errorf("SafeText kept %d runes, expected %d", strings.Count(got, "é"), safeTextLimit)
	}
}
