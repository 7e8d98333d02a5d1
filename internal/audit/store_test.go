package audit

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "Nguyễn", 500, "Nguyễn"},
		{"ascii", "abcdef", 3, "abc"},
		{"cut inside a rune backs off", "aễ", 2, "a"},
		{"cut on a rune boundary", "aễb", 4, "aễ"},
		{"long vietnamese message", `"` + strings.Repeat("a", 498) + `ễn"`, 500, `"` + strings.Repeat("a", 498)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			if got != tt.want {
				t.Errorf("truncate() = %q, want %q", got, tt.want)
			}
			if len(got) > tt.n || !utf8.ValidString(got) {
				t.Errorf("truncate() = %q (len %d) is not valid UTF-8 within %d bytes", got, len(got), tt.n)
			}
		})
	}
}
