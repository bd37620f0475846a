// Package selection moves a selection across a text replacement.
package selection

import "github.com/yaklabco/gomdedit/pkg/mdast"

// Adjust returns where sel lands after replaced is overwritten with length bytes.
//
// A replacement entirely before the selection shifts it; one entirely after
// leaves it alone; one covering it collapses it to the end of the inserted
// text. Edges that fall inside a partial overlap are pulled out of the
// replaced span before shifting.
func Adjust(sel, replaced mdast.Range, length int) mdast.Range {
	delta := length - replaced.Len()

	switch {
	case replaced.End <= sel.Start:
		return sel.Shift(delta)

	case replaced.Start >= sel.End:
		return sel

	case replaced.Start <= sel.Start && replaced.End >= sel.End:
		caret := replaced.Start + length
		return mdast.Range{Start: caret, End: caret}
	}

	start, end := sel.Start, sel.End
	if start > replaced.Start && start < replaced.End {
		start = replaced.End
	}
	if end > replaced.Start && end < replaced.End {
		end = replaced.Start
	}
	if start >= replaced.End {
		start += delta
	}
	if end >= replaced.End {
		end += delta
	}
	if end < start {
		end = start
	}
	return mdast.Range{Start: start, End: end}
}
