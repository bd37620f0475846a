package editor

import (
	"strings"

	"github.com/yaklabco/gomdedit/pkg/mdast"
)

// Annotation is a decoration drawn next to a block: a bullet, a number, a
// checkbox or a rule.
type Annotation struct {
	// BlockIndex is the index of the decorated block.
	BlockIndex int

	// Kind is the decorated block's kind.
	Kind mdast.NodeKind

	// Range is the block's content in presentation space.
	Range mdast.Range

	// Checked is set for checked checklist items.
	Checked bool

	// Ordinal is the number of an ordered list item.
	Ordinal int

	// Depth is the nesting level derived from the item's indentation.
	Depth int
}

// Layout reports where presentation offsets are drawn.
type Layout interface {
	// LineOffset returns the vertical offset of the line holding loc.
	LineOffset(loc int) float64
}

// Frame positions one annotation.
type Frame struct {
	Annotation Annotation
	Y          float64
}

// Annotations returns the annotation of every annotatable block.
func (c *Controller) Annotations() []Annotation {
	var out []Annotation
	for i, block := range c.doc.Blocks() {
		if !block.Kind.Caps().Annotatable {
			continue
		}
		base := c.doc.PresentationStart(i)
		out = append(out, Annotation{
			BlockIndex: i,
			Kind:       block.Kind,
			Range:      block.PresentationRange(block.Visible).Shift(base),
			Checked:    block.Attrs.Checked,
			Ordinal:    block.Attrs.Ordinal,
			Depth:      depth(block.Attrs.Indent),
		})
	}
	return out
}

// AnnotationFrames positions the current annotations using layout.
func (c *Controller) AnnotationFrames(layout Layout) []Frame {
	annotations := c.Annotations()
	frames := make([]Frame, len(annotations))
	for i, a := range annotations {
		frames[i] = Frame{Annotation: a, Y: layout.LineOffset(a.Range.Start)}
	}
	return frames
}

// depth counts indentation levels, two spaces or one tab each.
func depth(indent string) int {
	width := strings.Count(indent, " ") + 2*strings.Count(indent, "\t")
	return width / 2
}
