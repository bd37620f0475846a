package editor

import (
	"fmt"
	"strings"

	"github.com/yaklabco/gomdedit/pkg/mdast"
)

// rewrite applies the markdown heuristics to a backing replacement.
func (c *Controller) rewrite(r mdast.Range, text string) rewrite {
	if text == "\n" && r.IsEmpty() {
		if rw, ok := c.completeReturn(r.Start); ok {
			return rw
		}
		if rw, ok := c.closeFence(r.Start); ok {
			return rw
		}
	}
	rw := rewrite{Range: r, Text: text, Caret: -1}
	if text != "" {
		rw = c.separateAttachment(rw)
	}
	return rw
}

// completeReturn continues a list item on the next line, or ends the list
// when the item is empty.
func (c *Controller) completeReturn(offset int) (rewrite, bool) {
	i, block, ok := c.doc.BlockForCaret(offset)
	if !ok || !block.Kind.Caps().ReturnCompletable {
		return rewrite{}, false
	}
	start := c.doc.BlockStart(i)
	if offset-start < block.Visible.Start {
		return rewrite{}, false
	}

	if strings.TrimSpace(block.VisibleText(block.Source)) == "" {
		marker := mdast.Range{Start: start, End: start + block.Visible.End}
		return rewrite{Range: marker, Text: "", Caret: -1}, true
	}

	at := mdast.Range{Start: offset, End: offset}
	return rewrite{Range: at, Text: "\n" + continuation(block), Caret: -1}, true
}

// continuation returns the marker that starts the item after block. Ordered
// items count up and checklist items start unchecked.
func continuation(block *mdast.Block) string {
	attrs := block.Attrs
	switch {
	case block.Kind == mdast.NodeChecklistItem:
		return attrs.Indent + string(attrs.Bullet) + " [ ] "
	case attrs.IsOrdered():
		return fmt.Sprintf("%s%d%c ", attrs.Indent, attrs.Ordinal+1, attrs.Delimiter)
	default:
		return attrs.Indent + string(attrs.Bullet) + " "
	}
}

// closeFence turns return at the end of an unclosed opening fence into a
// complete code block with the caret on its empty body line.
func (c *Controller) closeFence(offset int) (rewrite, bool) {
	i, block, ok := c.doc.BlockForCaret(offset)
	if !ok || block.Kind != mdast.NodeCodeBlock || block.Attrs.Closed {
		return rewrite{}, false
	}

	start := c.doc.BlockStart(i)
	lineEnd := strings.IndexByte(block.Source, '\n')
	if lineEnd < 0 {
		lineEnd = len(block.Source)
	}
	if offset != start+lineEnd {
		return rewrite{}, false
	}

	fence := "```"
	if strings.Contains(block.Attrs.Info, "`") {
		fence = "~~~"
	}
	opening := fence + block.Attrs.Info
	return rewrite{
		Range: mdast.Range{Start: start, End: offset},
		Text:  opening + "\n\n" + fence,
		Caret: start + len(opening) + 1,
	}, true
}

// separateAttachment keeps text typed next to an attachment block on a line
// of its own.
func (c *Controller) separateAttachment(rw rewrite) rewrite {
	r := rw.Range

	if i, block, ok := c.doc.BlockForCaret(r.Start); ok && block.Kind.Caps().Attachable &&
		r.Start == c.doc.BlockStart(i)+block.ContentEnd() && !strings.HasPrefix(rw.Text, "\n") {
		rw.Text = "\n" + rw.Text
	}

	if i, block, ok := c.doc.BlockAt(r.End); ok && block.Kind.Caps().Attachable &&
		r.End == c.doc.BlockStart(i) && !strings.HasSuffix(rw.Text, "\n") {
		rw.Text += "\n"
		rw.Caret = r.Start + len(rw.Text) - 1
	}

	return rw
}
