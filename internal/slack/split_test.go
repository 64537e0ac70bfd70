package slack

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want []string
	}{
		{"short", "a\nb", 10, []string{"a\nb"}},
		{"at line breaks", "aaa\nbbb\nccc", 8, []string{"aaa\nbbb", "ccc"}},
		{"long line", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"empty", "", 4, []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.text, tt.max)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("Split(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.want)
			}
		})
	}
}

func TestSplit_RuneBoundary(t *testing.T) {
	text := strings.Repeat("é", 10) // 2 bytes each
	for _, chunk := range Split(text, 5) {
		if !utf8.ValidString(chunk) {
			t.Errorf("chunk %q is not valid UTF-8", chunk)
		}
		if len(chunk) > 5 {
			t.Errorf("chunk %q exceeds max", chunk)
		}
	}
}

func TestSplit_CodeBlock(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("*export.csv*\n```\n")
	for i := 0; i < 12; i++ {
		sb.WriteString("ZTEG0000,123456\n")
	}
	sb.WriteString("```")

	chunks := Split(sb.String(), 48)
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %q", chunks)
	}
	rows := 0
	for _, c := range chunks {
		if len(c) > 48 {
			t.Errorf("chunk %q exceeds max", c)
		}
		if strings.Count(c, "```")%2 != 0 {
			t.Errorf("chunk %q leaves a code block open", c)
		}
		rows += strings.Count(c, "ZTEG0000,123456")
	}
	if rows != 12 {
		t.Errorf("rows across chunks = %d, want 12", rows)
	}
}
