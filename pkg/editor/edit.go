package editor

import (
	"fmt"

	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/pkg/mdast"
	"github.com/yaklabco/gomdedit/pkg/ot"
)

// rewrite is a backing replacement after markdown heuristics. Caret, when not
// negative, is the backing offset the selection collapses to afterwards.
type rewrite struct {
	Range mdast.Range
	Text  string
	Caret int
}

// Edit applies a replacement typed by the user. r is in presentation space.
// The edit is rewritten by the markdown heuristics, committed, and sent to
// the transport as operations.
func (c *Controller) Edit(r mdast.Range, text string) error {
	return c.mutate("edit", func() error {
		backing, err := c.doc.ToBacking(r)
		if err != nil {
			return fmt.Errorf("edit: %w", err)
		}
		return c.commitLocal(c.rewrite(backing, text))
	})
}

// ToggleChecklist flips the check mark of the checklist item at block index.
func (c *Controller) ToggleChecklist(index int) error {
	return c.mutate("toggle checklist", func() error {
		blocks := c.doc.Blocks()
		if index < 0 || index >= len(blocks) || blocks[index].Kind != mdast.NodeChecklistItem {
			return fmt.Errorf("toggle checklist: block %d is not a checklist item", index)
		}

		block := blocks[index]
		mark := "x"
		if block.Attrs.Checked {
			mark = " "
		}
		r := block.Attrs.CheckRange.Shift(c.doc.BlockStart(index))
		return c.commitLocal(rewrite{Range: r, Text: mark, Caret: -1})
	})
}

// ExpandSelection grows the selection to the smallest node that strictly
// contains it. It reports false when there is no selection or nothing larger.
func (c *Controller) ExpandSelection() (mdast.Range, bool) {
	current, ok := c.backingSelection()
	if !ok {
		return mdast.Range{}, false
	}

	var (
		best  mdast.Range
		found bool
	)
	for _, ref := range c.doc.NodesIn(current) {
		if ref.Range.Start > current.Start || ref.Range.End < current.End || ref.Range == current {
			continue
		}
		p, err := c.doc.ToPresentation(ref.Range)
		if err != nil || p == c.sel {
			continue
		}
		if !found || ref.Range.Len() <= best.Len() {
			best, found = ref.Range, true
		}
	}
	if !found {
		return mdast.Range{}, false
	}

	sel, err := c.doc.ToPresentation(best)
	if err != nil {
		return mdast.Range{}, false
	}
	c.sel = sel
	c.scheduleRefresh()
	return sel, true
}

// commitLocal commits a local replacement and sends it to the transport.
func (c *Controller) commitLocal(rw rewrite) error {
	before := c.doc.Text()
	if err := c.replace(rw.Range, rw.Text, rw.Caret); err != nil {
		return err
	}
	c.emit(before, ot.FromReplace(rw.Range, rw.Text))
	return nil
}

// emit submits ops, converted to the wire unit against before. Without a live
// session the operations are dropped. A controller without a transport edits
// offline and drops them silently.
func (c *Controller) emit(before string, ops []ot.Operation) {
	if c.transport == nil {
		return
	}
	for _, op := range ops {
		if !c.connected {
			c.logger.Warn("operation dropped", logging.FieldOp, op, logging.FieldError, ErrTransportUnavailable)
			continue
		}
		wire := ot.ToWire(before, op, c.unit)
		if err := c.transport.Submit(wire); err != nil {
			c.logger.Warn("submit failed", logging.FieldOp, op, logging.FieldError, err)
		}
	}
}
