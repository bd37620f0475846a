package document

import (
	"sort"

	"github.com/yaklabco/gomdedit/pkg/mdast"
)

// NodeRef locates a node within the document.
type NodeRef struct {
	// Index is the index of the owning block.
	Index int

	// Block is the owning block.
	Block *mdast.Block

	// Node is the node itself; block-relative ranges are kept on it.
	Node *mdast.Node

	// Range is the node's absolute backing range.
	Range mdast.Range
}

// Absolute converts a range relative to the node's block into a backing range.
func (n NodeRef) Absolute(r mdast.Range) mdast.Range {
	return r.Shift(n.Range.Start - n.Node.Range.Start)
}

// BlockAt returns the block containing the backing offset. It reports false
// when offset is at or past the end of the document.
func (d *Document) BlockAt(offset int) (int, *mdast.Block, bool) {
	if offset < 0 || offset >= len(d.text) {
		return -1, nil, false
	}
	i := sort.Search(len(d.starts), func(i int) bool { return d.starts[i] > offset }) - 1
	return i, d.blocks[i], true
}

// BlockAtPresentation returns the block containing the presentation offset.
// It reports false when offset is at or past the end of the presentation string.
func (d *Document) BlockAtPresentation(offset int) (int, *mdast.Block, bool) {
	if offset < 0 || offset >= len(d.presentation) {
		return -1, nil, false
	}
	i := sort.Search(len(d.pstarts), func(i int) bool { return d.pstarts[i] > offset }) - 1
	return i, d.blocks[i], true
}

// BlockForCaret returns the block whose line holds a caret at the backing
// offset, including a caret sitting just before the block's newline or at the
// end of an unterminated last line.
func (d *Document) BlockForCaret(offset int) (int, *mdast.Block, bool) {
	if offset < 0 || offset > len(d.text) {
		return -1, nil, false
	}
	i := sort.Search(len(d.starts), func(i int) bool { return d.starts[i] > offset }) - 1
	if i < 0 || offset > d.starts[i]+d.blocks[i].ContentEnd() {
		return -1, nil, false
	}
	return i, d.blocks[i], true
}

// NodesIn returns every block and span whose backing range intersects r,
// in document order with parents before children.
func (d *Document) NodesIn(r mdast.Range) []NodeRef {
	first := max(sort.Search(len(d.starts), func(i int) bool { return d.starts[i] > r.Start })-1, 0)

	var refs []NodeRef
	for i := first; i < len(d.blocks) && d.starts[i] <= r.End; i++ {
		block := d.blocks[i]
		base := d.starts[i]

		for n := range mdast.All(&block.Node) {
			if abs := n.Range.Shift(base); abs.Intersects(r) {
				refs = append(refs, NodeRef{Index: i, Block: block, Node: n, Range: abs})
			}
		}
	}
	return refs
}
