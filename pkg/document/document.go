// Package document owns the backing markdown string, its parsed block list,
// and the presentation string derived from it.
package document

import (
	"sort"
	"strings"

	"github.com/yaklabco/gomdedit/pkg/mdast"
	"github.com/yaklabco/gomdedit/pkg/rangemap"
)

// Parser produces the block starting at offset in text. first reports whether
// the block will be the first of the document.
//
// Block must be deterministic and must consume at least one byte.
type Parser interface {
	Block(text string, offset int, first bool) *mdast.Block
}

// EventKind identifies a block-level change.
type EventKind int

const (
	// BlockInserted means a block was inserted at Index.
	BlockInserted EventKind = iota

	// BlockRemoved means the block at Index was removed.
	BlockRemoved

	// BlockReplaced means the block at Index was replaced by a new one.
	BlockReplaced
)

func (k EventKind) String() string {
	switch k {
	case BlockInserted:
		return "inserted"
	case BlockRemoved:
		return "removed"
	case BlockReplaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// BlockEvent describes one block-level change. Index refers to the block list
// as it stands after all earlier events of the same change have been applied.
type BlockEvent struct {
	Kind  EventKind
	Index int

	// Block is the inserted or replacing block, or the removed block.
	Block *mdast.Block

	// Old is the replaced block for BlockReplaced events.
	Old *mdast.Block
}

// Change summarises one committed replacement.
type Change struct {
	// Range is the replaced backing range, in the old text.
	Range mdast.Range

	// Text is the inserted text.
	Text string

	// Events lists the block-level changes in the order they were emitted.
	Events []BlockEvent
}

// Delta returns how much the backing string grew.
func (c Change) Delta() int {
	return len(c.Text) - c.Range.Len()
}

// Listener observes document mutations. WillUpdate runs before any state
// changes; block events and DidUpdate run after the new state is in place.
type Listener interface {
	WillUpdate(doc *Document)
	BlockChanged(doc *Document, event BlockEvent)
	DidUpdate(doc *Document, change Change)
}

// Document is the single owner of the backing string. It is not safe for
// concurrent use.
type Document struct {
	parser    Parser
	listeners []Listener

	text         string
	blocks       []*mdast.Block
	starts       []int
	pstarts      []int
	presentation string
	table        *rangemap.Table
}

// New returns an empty document that parses with parser.
func New(parser Parser) *Document {
	return &Document{
		parser: parser,
		table:  rangemap.Identity(0),
	}
}

// AddListener registers l for mutation events.
func (d *Document) AddListener(l Listener) {
	d.listeners = append(d.listeners, l)
}

// RemoveListener unregisters l.
func (d *Document) RemoveListener(l Listener) {
	for i, existing := range d.listeners {
		if existing == l {
			d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
			return
		}
	}
}

// Text returns the backing string.
func (d *Document) Text() string {
	return d.text
}

// Len returns the length of the backing string.
func (d *Document) Len() int {
	return len(d.text)
}

// Presentation returns the presentation string.
func (d *Document) Presentation() string {
	return d.presentation
}

// Blocks returns the current block list. Callers must not modify it.
func (d *Document) Blocks() []*mdast.Block {
	return d.blocks
}

// BlockStart returns the backing offset of block i.
func (d *Document) BlockStart(i int) int {
	return d.starts[i]
}

// PresentationStart returns the presentation offset of block i.
func (d *Document) PresentationStart(i int) int {
	return d.pstarts[i]
}

// Table returns the range table for the current state.
func (d *Document) Table() *rangemap.Table {
	return d.table
}

// ToPresentation maps a backing range into presentation space.
func (d *Document) ToPresentation(r mdast.Range) (mdast.Range, error) {
	return d.table.ToPresentation(r)
}

// ToBacking maps a presentation range into backing space.
func (d *Document) ToBacking(r mdast.Range) (mdast.Range, error) {
	return d.table.ToBacking(r)
}

// Title returns the visible text of the title block, or "" when the document
// does not start with one.
func (d *Document) Title() string {
	if len(d.blocks) == 0 || d.blocks[0].Kind != mdast.NodeTitle {
		return ""
	}
	return strings.TrimSpace(d.blocks[0].VisibleText(d.blocks[0].Source))
}

// SetText replaces the whole backing string.
func (d *Document) SetText(text string) (Change, error) {
	return d.Replace(mdast.Range{Start: 0, End: len(d.text)}, text)
}

// Replace overwrites the backing range r with text, reparses the affected
// blocks, and notifies listeners. Blocks outside the affected region keep
// their identity.
func (d *Document) Replace(r mdast.Range, text string) (Change, error) {
	if !r.Valid(len(d.text)) {
		return Change{}, &rangemap.RangeError{Range: r, Bound: len(d.text), Space: rangemap.Backing}
	}

	newText := d.text[:r.Start] + text + d.text[r.End:]
	first, fresh, resume := d.rescan(newText, r, len(text))

	change := Change{Range: r, Text: text}
	old := d.blocks[first:resume]
	change.Events = diff(first, old, fresh)

	blocks := make([]*mdast.Block, 0, first+len(fresh)+len(d.blocks)-resume)
	blocks = append(blocks, d.blocks[:first]...)
	blocks = append(blocks, fresh...)
	blocks = append(blocks, d.blocks[resume:]...)

	for _, l := range d.listeners {
		l.WillUpdate(d)
	}

	d.text = newText
	d.blocks = blocks
	d.reindex()

	for _, event := range change.Events {
		for _, l := range d.listeners {
			l.BlockChanged(d, event)
		}
	}
	for _, l := range d.listeners {
		l.DidUpdate(d, change)
	}

	return change, nil
}

// rescan parses newText from the start of the block containing r.Start until
// the new blocks line up with an untouched old block again. It returns the
// index of the first rescanned block, the fresh blocks, and the index of the
// first old block that is reused after them.
func (d *Document) rescan(newText string, r mdast.Range, inserted int) (int, []*mdast.Block, int) {
	delta := inserted - r.Len()
	editEnd := r.Start + inserted

	first := sort.Search(len(d.starts), func(i int) bool { return d.starts[i] > r.Start }) - 1
	first = max(first, 0)
	if r.Start == len(d.text) && len(d.blocks) > 0 {
		if last := d.blocks[len(d.blocks)-1]; last.HasNewline() && (last.Kind != mdast.NodeCodeBlock || last.Attrs.Closed) {
			first = len(d.blocks)
		}
	}

	pos := len(d.text)
	if first < len(d.blocks) {
		pos = d.starts[first]
	}

	var fresh []*mdast.Block
	for {
		// A reused block must keep its position relative to the start of
		// the document, since the first block may parse as the title.
		if oldPos := pos - delta; pos >= editEnd && pos != 0 && oldPos >= r.End && oldPos != 0 {
			if oldPos == len(d.text) {
				return first, fresh, len(d.blocks)
			}
			if k := sort.SearchInts(d.starts, oldPos); k < len(d.starts) && d.starts[k] == oldPos {
				return first, fresh, k
			}
		}
		if pos >= len(newText) {
			break
		}

		block := d.parser.Block(newText, pos, pos == 0)
		fresh = append(fresh, block)
		pos += block.Len()
	}

	return first, fresh, len(d.blocks)
}

// diff pairs old and fresh blocks positionally. Equal pairs keep the old block
// and produce no event.
func diff(first int, old, fresh []*mdast.Block) []BlockEvent {
	var events []BlockEvent

	common := min(len(old), len(fresh))
	for k := range common {
		if old[k].Equal(fresh[k]) {
			fresh[k] = old[k]
			continue
		}
		events = append(events, BlockEvent{Kind: BlockReplaced, Index: first + k, Block: fresh[k], Old: old[k]})
	}
	for k := common; k < len(old); k++ {
		events = append(events, BlockEvent{Kind: BlockRemoved, Index: first + common, Block: old[k]})
	}
	for k := common; k < len(fresh); k++ {
		events = append(events, BlockEvent{Kind: BlockInserted, Index: first + k, Block: fresh[k]})
	}

	return events
}

// reindex recomputes block offsets, the presentation string, and the range table.
func (d *Document) reindex() {
	d.starts = make([]int, len(d.blocks))
	d.pstarts = make([]int, len(d.blocks))

	var (
		presentation strings.Builder
		table        rangemap.Builder
		pos          int
	)
	for i, block := range d.blocks {
		d.starts[i] = pos
		d.pstarts[i] = presentation.Len()
		pos += block.Len()

		presentation.WriteString(block.Display)
		for _, seg := range block.Segments {
			if seg.Replaced {
				table.Replace(seg.Range.Len(), len(seg.Replacement))
			} else {
				table.Copy(seg.Range.Len())
			}
		}
	}

	d.presentation = presentation.String()
	d.table = table.Table()
}
