package markdown

import (
	"strings"
	"testing"
)

func TestRender_Basic(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "<p>plain text</p>"},
		{"**bold**", "<strong>bold</strong>"},
		{"*italic*", "<em>italic</em>"},
		{"# Heading", "<h1>Heading</h1>"},
	}

	for _, tt := range tests {
		if got := Render(tt.in); !strings.Contains(got, tt.want) {
			t.Fatalf("Render(%q) = %q, want it to contain %q", tt.in, got, tt.want)
		}
	}
}

func TestRender_Empty(t *testing.T) {
	if got := Render(""); got != "" {
		t.Fatalf("expected empty output for empty input, got %q", got)
	}
	if got := Render("   \n"); got != "" {
		t.Fatalf("expected empty output for whitespace input, got %q", got)
	}
}

func TestRender_Deterministic(t *testing.T) {
	const in = "A **list**:\n\n- one\n- two\n"
	first := Render(in)
	for i := 0; i < 10; i++ {
		if got := Render(in); got != first {
			t.Fatalf("render not deterministic: %q vs %q", got, first)
		}
	}
}
