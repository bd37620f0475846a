package mdast_test

import (
	"testing"

	"github.com/yaklabco/gomdedit/pkg/mdast"
)

func TestBuildLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		expected []mdast.LineInfo
	}{
		{
			name:     "empty content",
			content:  "",
			expected: []mdast.LineInfo{},
		},
		{
			name:    "single line no newline",
			content: "hello",
			expected: []mdast.LineInfo{
				{StartOffset: 0, NewlineStart: 5, EndOffset: 5},
			},
		},
		{
			name:    "single line with LF",
			content: "hello\n",
			expected: []mdast.LineInfo{
				{StartOffset: 0, NewlineStart: 5, EndOffset: 6},
				{StartOffset: 6, NewlineStart: 6, EndOffset: 6},
			},
		},
		{
			name:    "single line with CRLF",
			content: "hello\r\n",
			expected: []mdast.LineInfo{
				{StartOffset: 0, NewlineStart: 5, EndOffset: 7},
				{StartOffset: 7, NewlineStart: 7, EndOffset: 7},
			},
		},
		{
			name:    "multiple lines LF",
			content: "line1\nline2\nline3",
			expected: []mdast.LineInfo{
				{StartOffset: 0, NewlineStart: 5, EndOffset: 6},
				{StartOffset: 6, NewlineStart: 11, EndOffset: 12},
				{StartOffset: 12, NewlineStart: 17, EndOffset: 17},
			},
		},
		{
			name:    "blank lines",
			content: "a\n\nb",
			expected: []mdast.LineInfo{
				{StartOffset: 0, NewlineStart: 1, EndOffset: 2},
				{StartOffset: 2, NewlineStart: 2, EndOffset: 3},
				{StartOffset: 3, NewlineStart: 4, EndOffset: 4},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lines := mdast.BuildLines(tt.content)

			if len(lines) != len(tt.expected) {
				t.Fatalf("got %d lines, want %d", len(lines), len(tt.expected))
			}
			for i, line := range lines {
				if line != tt.expected[i] {
					t.Errorf("line %d = %+v, want %+v", i, line, tt.expected[i])
				}
			}
		})
	}
}

func TestLineAt_Content(t *testing.T) {
	t.Parallel()

	text := "first\r\nsecond\nthird"

	tests := []struct {
		offset int
		want   string
	}{
		{0, "first"},
		{7, "second"},
		{14, "third"},
	}

	for _, tt := range tests {
		line := mdast.LineAt(text, tt.offset)
		if got := line.Content(text); got != tt.want {
			t.Errorf("LineAt(%d).Content() = %q, want %q", tt.offset, got, tt.want)
		}
	}
}

func TestLineStart(t *testing.T) {
	t.Parallel()

	text := "ab\ncd\n"

	tests := []struct {
		offset int
		want   int
	}{
		{0, 0},
		{2, 0},
		{3, 3},
		{5, 3},
		{6, 6},
	}

	for _, tt := range tests {
		if got := mdast.LineStart(text, tt.offset); got != tt.want {
			t.Errorf("LineStart(%d) = %d, want %d", tt.offset, got, tt.want)
		}
	}
}
