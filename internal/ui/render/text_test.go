package render

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean text unchanged", "Voice note", "Voice note"},
		{"control characters dropped", "Voice\x00 note\x1b", "Voice note"},
		{"tab becomes space", "a\tb", "a b"},
		{"nbsp becomes space", "a\u00a0b", "a b"},
		{"invalid bytes dropped", "a\xffb", "ab"},
		{"wide characters kept", "日本語", "日本語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		want     string
	}{
		{"fits", "hello", 10, "hello"},
		{"exact fit", "hello", 5, "hello"},
		{"cut with ellipsis", "hello world", 6, "hello…"},
		{"zero width", "hello", 0, ""},
		{"empty", "", 4, ""},
		{"sanitized before measuring", "ab\x00cd", 4, "abcd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.maxWidth); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxWidth, got, tt.want)
			}
		})
	}
}

func TestTruncate_WideCharacters(t *testing.T) {
	got := Truncate("日本語のタイトル", 7)
	if w := runewidth.StringWidth(got); w > 7 {
		t.Errorf("Truncate() width = %d, want <= 7 (%q)", w, got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("Truncate() = %q, want ellipsis suffix", got)
	}
}

func TestRow(t *testing.T) {
	got := Row("left", "right", 20)
	if len(got) != 20 {
		t.Errorf("Row() length = %d, want 20", len(got))
	}
	if !strings.HasPrefix(got, "left") || !strings.HasSuffix(got, "right") {
		t.Errorf("Row() = %q, want left and right at the ends", got)
	}

	if got := Row("left", "right", 5); got != "left right" {
		t.Errorf("Row() tight = %q, want a single space gap", got)
	}
}
