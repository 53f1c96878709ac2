package cli

import (
	"strings"
	"testing"
)

func TestColorsWrapWhenEnabled(t *testing.T) {
	old := colorEnabled
	colorEnabled = true
	defer func() { colorEnabled = old }()

	tests := []struct {
		name string
		fn   func(string) string
		code string
	}{
		{"Green", Green, "\033[32m"},
		{"Yellow", Yellow, "\033[33m"},
		{"Red", Red, "\033[31m"},
		{"Bold", Bold, "\033[1m"},
	}
	for _, tt := range tests {
		got := tt.fn("text")
		if !strings.HasPrefix(got, tt.code) || !strings.HasSuffix(got, "\033[0m") {
			t.Errorf("%s(%q) = %q", tt.name, "text", got)
		}
	}
}

func TestColorsPassThroughWhenDisabled(t *testing.T) {
	old := colorEnabled
	colorEnabled = false
	defer func() { colorEnabled = old }()

	for _, fn := range []func(string) string{Green, Yellow, Red, Bold} {
		if got := fn("plain"); got != "plain" {
			t.Errorf("disabled color returned %q", got)
		}
	}
}
