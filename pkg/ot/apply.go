package ot

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yaklabco/gomdedit/pkg/mdast"
)

// ValidationError describes an operation that cannot be applied or decoded.
type ValidationError struct {
	Op      Operation
	Message string
}

func (e *ValidationError) Error() string {
	if e.Op == (Operation{}) {
		return "invalid operation: " + e.Message
	}
	return fmt.Sprintf("invalid operation %s: %s", e.Op, e.Message)
}

// Validate checks that op fits text of the given length.
func Validate(op Operation, contentLen int) error {
	if op.Location < 0 {
		return &ValidationError{Op: op, Message: "location is negative"}
	}
	if op.Kind == Remove && op.Length < 0 {
		return &ValidationError{Op: op, Message: "length is negative"}
	}
	if end := op.Range().End; end > contentLen {
		return &ValidationError{
			Op:      op,
			Message: fmt.Sprintf("end offset %d exceeds content length %d", end, contentLen),
		}
	}
	return nil
}

// Apply returns text with op applied.
func Apply(text string, op Operation) (string, error) {
	if err := Validate(op, len(text)); err != nil {
		return text, err
	}

	r := op.Range()
	replacement := op.Replacement()

	var out strings.Builder
	out.Grow(len(text) - r.Len() + len(replacement))
	out.WriteString(text[:r.Start])
	out.WriteString(replacement)
	out.WriteString(text[r.End:])

	return out.String(), nil
}

// ApplyAll applies ops in order. It stops at the first invalid operation and
// returns the text as it stood before it.
func ApplyAll(text string, ops []Operation) (string, error) {
	for i, op := range ops {
		next, err := Apply(text, op)
		if err != nil {
			return text, fmt.Errorf("operation %d: %w", i, err)
		}
		text = next
	}
	return text, nil
}

// Diff returns the operations that turn a into b, touching only the span
// between their common prefix and suffix. The span never splits a rune.
func Diff(a, b string) []Operation {
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	for prefix > 0 && !(boundary(a, prefix) && boundary(b, prefix)) {
		prefix--
	}

	suffix := 0
	for suffix < len(a)-prefix && suffix < len(b)-prefix && a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}
	for suffix > 0 && !(boundary(a, len(a)-suffix) && boundary(b, len(b)-suffix)) {
		suffix--
	}

	return FromReplace(mdast.Range{Start: prefix, End: len(a) - suffix}, b[prefix:len(b)-suffix])
}

// boundary reports whether offset falls between runes of s.
func boundary(s string, offset int) bool {
	return offset == len(s) || utf8.RuneStart(s[offset])
}
