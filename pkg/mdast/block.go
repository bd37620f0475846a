package mdast

import "strings"

// ObjectReplacement is the presentation text an attachment token is replaced with.
const ObjectReplacement = "\uFFFC"

// Segment is one run of a block's projection into presentation space.
// Runs that are not replaced are copied verbatim.
type Segment struct {
	// Range is the backing range of the run, relative to the block start.
	Range Range

	// Replaced is true when the run is shown as Replacement instead of its source.
	Replaced bool

	// Replacement is the presentation text of a replaced run (empty when hidden).
	Replacement string
}

// Block is an immutable snapshot of one top-level block: a single line, or a
// whole fenced code block. Blocks tile the backing string and include their
// terminating newline.
type Block struct {
	Node

	// Source is the block's backing text.
	Source string

	// Segments projects the block into presentation space, in order.
	Segments []Segment

	// Display is the block's presentation text.
	Display string
}

// NewBlock assembles a block from its root node and source, filling in the
// projection segments from the hidden and replaced ranges. Hidden ranges must be
// sorted and non-overlapping.
func NewBlock(node Node, source string, hidden []Segment) *Block {
	block := &Block{Node: node, Source: source}

	cursor := 0
	for _, seg := range hidden {
		if seg.Range.Start > cursor {
			block.Segments = append(block.Segments, Segment{Range: Range{Start: cursor, End: seg.Range.Start}})
		}
		seg.Replaced = true
		block.Segments = append(block.Segments, seg)
		cursor = seg.Range.End
	}
	if cursor < len(source) {
		block.Segments = append(block.Segments, Segment{Range: Range{Start: cursor, End: len(source)}})
	}

	var display strings.Builder
	display.Grow(len(source))
	for _, seg := range block.Segments {
		if seg.Replaced {
			display.WriteString(seg.Replacement)
		} else {
			display.WriteString(source[seg.Range.Start:seg.Range.End])
		}
	}
	block.Display = display.String()

	return block
}

// Len returns the block's length in the backing string.
func (b *Block) Len() int {
	return len(b.Source)
}

// HasNewline reports whether the block ends with a line terminator.
func (b *Block) HasNewline() bool {
	return strings.HasSuffix(b.Source, "\n")
}

// ContentEnd returns the relative offset where the block's trailing newline begins.
func (b *Block) ContentEnd() int {
	if b.HasNewline() {
		return len(b.Source) - 1
	}
	return len(b.Source)
}

// PresentationOffset maps a block-relative backing offset into block-relative
// presentation space. Offsets inside a replaced run snap to the run's start, or
// to its end when up is true.
func (b *Block) PresentationOffset(offset int, up bool) int {
	pos := 0
	for _, seg := range b.Segments {
		outLen := seg.Range.Len()
		if seg.Replaced {
			outLen = len(seg.Replacement)
		}
		switch {
		case offset >= seg.Range.End:
			pos += outLen
			continue
		case offset <= seg.Range.Start:
			return pos
		case !seg.Replaced:
			return pos + offset - seg.Range.Start
		case up:
			return pos + outLen
		default:
			return pos
		}
	}
	return pos
}

// PresentationRange maps a block-relative backing range into block-relative
// presentation space, widening partially covered replaced runs.
func (b *Block) PresentationRange(r Range) Range {
	if r.IsEmpty() {
		offset := b.PresentationOffset(r.Start, false)
		return Range{Start: offset, End: offset}
	}
	return Range{Start: b.PresentationOffset(r.Start, false), End: b.PresentationOffset(r.End, true)}
}

// Equal reports whether two blocks were produced from the same source with the same kind.
func (b *Block) Equal(other *Block) bool {
	if b == other {
		return true
	}
	if b == nil || other == nil {
		return false
	}
	return b.Kind == other.Kind && b.Source == other.Source
}
