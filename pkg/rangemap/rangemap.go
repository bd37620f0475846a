// Package rangemap translates offsets between the backing markdown string and
// the presentation string a user edits, where some syntax is hidden or replaced.
package rangemap

import (
	"fmt"
	"sort"

	"github.com/yaklabco/gomdedit/pkg/mdast"
)

// Space names a coordinate space.
type Space int

const (
	// Backing is the markdown source.
	Backing Space = iota

	// Presentation is the text shown to the user.
	Presentation
)

func (s Space) String() string {
	if s == Presentation {
		return "presentation"
	}
	return "backing"
}

// RangeError reports a range that does not fit the space it is mapped from.
type RangeError struct {
	Range mdast.Range
	Bound int
	Space Space
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range %s out of bounds for %s length %d", e.Range, e.Space, e.Bound)
}

// Segment pairs a backing run with its presentation run. Copied runs have
// equal lengths; replaced runs may not.
type Segment struct {
	Backing      mdast.Range
	Presentation mdast.Range
	Replaced     bool
}

// Table is an ordered list of segments that tiles both spaces.
// A Table is immutable once built.
type Table struct {
	segments        []Segment
	backingLen      int
	presentationLen int
}

// Builder appends segments to a Table.
type Builder struct {
	table Table
}

// Copy appends n bytes that appear verbatim in both spaces.
func (b *Builder) Copy(n int) {
	if n <= 0 {
		return
	}
	t := &b.table
	if last := len(t.segments) - 1; last >= 0 && !t.segments[last].Replaced {
		t.segments[last].Backing.End += n
		t.segments[last].Presentation.End += n
	} else {
		t.segments = append(t.segments, Segment{
			Backing:      mdast.NewRange(t.backingLen, n),
			Presentation: mdast.NewRange(t.presentationLen, n),
		})
	}
	t.backingLen += n
	t.presentationLen += n
}

// Replace appends n backing bytes that are shown as outLen presentation bytes.
func (b *Builder) Replace(n, outLen int) {
	if n <= 0 && outLen <= 0 {
		return
	}
	t := &b.table
	t.segments = append(t.segments, Segment{
		Backing:      mdast.NewRange(t.backingLen, n),
		Presentation: mdast.NewRange(t.presentationLen, outLen),
		Replaced:     true,
	})
	t.backingLen += n
	t.presentationLen += outLen
}

// Table returns the built table. The builder must not be used afterwards.
func (b *Builder) Table() *Table {
	t := b.table
	return &t
}

// Identity returns a table mapping n bytes onto themselves.
func Identity(n int) *Table {
	var b Builder
	b.Copy(n)
	return b.Table()
}

// BackingLen returns the length of the backing space.
func (t *Table) BackingLen() int {
	return t.backingLen
}

// PresentationLen returns the length of the presentation space.
func (t *Table) PresentationLen() int {
	return t.presentationLen
}

// Segments returns the table's segments.
func (t *Table) Segments() []Segment {
	return t.segments
}

// ToPresentation maps a backing range into presentation space. A non-empty
// range widens to cover any replaced run it partially overlaps; an empty
// range collapses to the start of such a run.
func (t *Table) ToPresentation(r mdast.Range) (mdast.Range, error) {
	if !r.Valid(t.backingLen) {
		return mdast.Range{}, &RangeError{Range: r, Bound: t.backingLen, Space: Backing}
	}
	if r.IsEmpty() {
		p := t.presentationOffset(r.Start, false)
		return mdast.Range{Start: p, End: p}, nil
	}
	return mdast.Range{
		Start: t.presentationOffset(r.Start, false),
		End:   t.presentationOffset(r.End, true),
	}, nil
}

// ToBacking maps a presentation range into backing space. The start resolves
// to the earliest backing offset and the end to the latest, so an edit at a
// hidden run absorbs it. An empty range resolves both ends to the latest offset.
func (t *Table) ToBacking(r mdast.Range) (mdast.Range, error) {
	if !r.Valid(t.presentationLen) {
		return mdast.Range{}, &RangeError{Range: r, Bound: t.presentationLen, Space: Presentation}
	}
	if r.IsEmpty() {
		b := t.latestBacking(r.Start)
		return mdast.Range{Start: b, End: b}, nil
	}
	return mdast.Range{
		Start: t.earliestBacking(r.Start),
		End:   t.latestBacking(r.End),
	}, nil
}

func (t *Table) presentationOffset(b int, up bool) int {
	i := sort.Search(len(t.segments), func(i int) bool { return t.segments[i].Backing.End >= b })
	if i == len(t.segments) {
		return t.presentationLen
	}
	seg := t.segments[i]
	switch {
	case !seg.Replaced:
		return seg.Presentation.Start + b - seg.Backing.Start
	case b == seg.Backing.Start:
		return seg.Presentation.Start
	case b == seg.Backing.End || up:
		return seg.Presentation.End
	default:
		return seg.Presentation.Start
	}
}

func (t *Table) earliestBacking(p int) int {
	i := sort.Search(len(t.segments), func(i int) bool { return t.segments[i].Presentation.End >= p })
	if i == len(t.segments) {
		return t.backingLen
	}
	seg := t.segments[i]
	switch {
	case !seg.Replaced:
		return seg.Backing.Start + p - seg.Presentation.Start
	case p == seg.Presentation.End && p != seg.Presentation.Start:
		return seg.Backing.End
	default:
		return seg.Backing.Start
	}
}

func (t *Table) latestBacking(p int) int {
	i := sort.Search(len(t.segments), func(i int) bool { return t.segments[i].Presentation.Start > p }) - 1
	if i < 0 {
		return 0
	}
	seg := t.segments[i]
	switch {
	case !seg.Replaced:
		return seg.Backing.Start + p - seg.Presentation.Start
	case p == seg.Presentation.Start && p != seg.Presentation.End:
		return seg.Backing.Start
	default:
		return seg.Backing.End
	}
}
