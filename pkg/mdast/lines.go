package mdast

import "strings"

// LineInfo holds metadata for a single line.
type LineInfo struct {
	// StartOffset is the byte index of the line start.
	StartOffset int

	// NewlineStart is the byte index where newline characters begin.
	// For lines without a trailing newline (e.g., last line), this equals EndOffset.
	NewlineStart int

	// EndOffset is the byte index just after the newline (or end of text).
	EndOffset int
}

// Content returns the line's text without its terminator.
func (l LineInfo) Content(text string) string {
	return text[l.StartOffset:l.NewlineStart]
}

// LineAt returns the line that starts at offset in text.
// It handles both LF (\n) and CRLF (\r\n) line endings.
func LineAt(text string, offset int) LineInfo {
	idx := strings.IndexByte(text[offset:], '\n')
	if idx < 0 {
		return LineInfo{StartOffset: offset, NewlineStart: len(text), EndOffset: len(text)}
	}

	newline := offset + idx
	newlineStart := newline
	if newline > offset && text[newline-1] == '\r' {
		newlineStart = newline - 1
	}

	return LineInfo{StartOffset: offset, NewlineStart: newlineStart, EndOffset: newline + 1}
}

// LineStart returns the offset of the start of the line containing offset.
func LineStart(text string, offset int) int {
	return strings.LastIndexByte(text[:offset], '\n') + 1
}

// BuildLines constructs line metadata for every line of text.
func BuildLines(text string) []LineInfo {
	if len(text) == 0 {
		return []LineInfo{}
	}

	var lines []LineInfo
	for offset := 0; offset < len(text); {
		line := LineAt(text, offset)
		lines = append(lines, line)
		offset = line.EndOffset
	}

	// A trailing newline starts a final empty line.
	if text[len(text)-1] == '\n' {
		lines = append(lines, LineInfo{StartOffset: len(text), NewlineStart: len(text), EndOffset: len(text)})
	}

	return lines
}
