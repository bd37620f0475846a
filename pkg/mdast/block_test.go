package mdast_test

import (
	"testing"

	"github.com/yaklabco/gomdedit/pkg/mdast"
)

func TestNewBlock_Display(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		source      string
		hidden      []mdast.Segment
		wantDisplay string
		wantSegs    int
	}{
		{
			name:        "no hidden ranges",
			source:      "plain\n",
			wantDisplay: "plain\n",
			wantSegs:    1,
		},
		{
			name:        "hidden marker",
			source:      "- item\n",
			hidden:      []mdast.Segment{{Range: mdast.Range{Start: 0, End: 2}}},
			wantDisplay: "item\n",
			wantSegs:    2,
		},
		{
			name:   "replaced token",
			source: "![a](b)\n",
			hidden: []mdast.Segment{{
				Range:       mdast.Range{Start: 0, End: 7},
				Replacement: mdast.ObjectReplacement,
			}},
			wantDisplay: mdast.ObjectReplacement + "\n",
			wantSegs:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			block := mdast.NewBlock(mdast.Node{}, tt.source, tt.hidden)

			if block.Display != tt.wantDisplay {
				t.Errorf("Display = %q, want %q", block.Display, tt.wantDisplay)
			}
			if len(block.Segments) != tt.wantSegs {
				t.Errorf("got %d segments, want %d", len(block.Segments), tt.wantSegs)
			}
		})
	}
}

func TestBlock_PresentationOffset(t *testing.T) {
	t.Parallel()

	// "![a](b)\n" presents as U+FFFC (3 bytes) then "\n".
	block := mdast.NewBlock(mdast.Node{}, "![a](b)\n", []mdast.Segment{{
		Range:       mdast.Range{Start: 0, End: 7},
		Replacement: mdast.ObjectReplacement,
	}})

	tests := []struct {
		offset int
		up     bool
		want   int
	}{
		{0, false, 0},
		{0, true, 0},
		{3, false, 0},
		{3, true, 3},
		{7, false, 3},
		{8, false, 4},
	}

	for _, tt := range tests {
		if got := block.PresentationOffset(tt.offset, tt.up); got != tt.want {
			t.Errorf("PresentationOffset(%d, %v) = %d, want %d", tt.offset, tt.up, got, tt.want)
		}
	}
}

func TestBlock_NewlineAndContentEnd(t *testing.T) {
	t.Parallel()

	withNewline := mdast.NewBlock(mdast.Node{}, "abc\n", nil)
	if !withNewline.HasNewline() || withNewline.ContentEnd() != 3 {
		t.Errorf("HasNewline = %v, ContentEnd = %d", withNewline.HasNewline(), withNewline.ContentEnd())
	}

	last := mdast.NewBlock(mdast.Node{}, "abc", nil)
	if last.HasNewline() || last.ContentEnd() != 3 {
		t.Errorf("HasNewline = %v, ContentEnd = %d", last.HasNewline(), last.ContentEnd())
	}
}

func TestBlock_Equal(t *testing.T) {
	t.Parallel()

	a := mdast.NewBlock(mdast.Node{Kind: mdast.NodeParagraph}, "x\n", nil)
	b := mdast.NewBlock(mdast.Node{Kind: mdast.NodeParagraph}, "x\n", nil)
	c := mdast.NewBlock(mdast.Node{Kind: mdast.NodeHeading}, "x\n", nil)

	if !a.Equal(b) {
		t.Error("blocks with same kind and source should be equal")
	}
	if a.Equal(c) {
		t.Error("blocks with different kinds should differ")
	}
	if a.Equal(nil) {
		t.Error("block should not equal nil")
	}
}

func TestRange(t *testing.T) {
	t.Parallel()

	r := mdast.NewRange(2, 3)
	if r != (mdast.Range{Start: 2, End: 5}) || r.Len() != 3 {
		t.Errorf("NewRange(2, 3) = %v", r)
	}
	if !r.Contains(2) || r.Contains(5) {
		t.Error("Contains is not half-open")
	}
	if r.Shift(-2) != (mdast.Range{Start: 0, End: 3}) {
		t.Errorf("Shift(-2) = %v", r.Shift(-2))
	}
	if !r.Intersects(mdast.Range{Start: 5, End: 5}) {
		t.Error("empty range at the edge should intersect")
	}
	if r.Intersects(mdast.Range{Start: 5, End: 7}) {
		t.Error("adjacent ranges should not intersect")
	}
	if r.Union(mdast.Range{Start: 7, End: 9}) != (mdast.Range{Start: 2, End: 9}) {
		t.Errorf("Union = %v", r.Union(mdast.Range{Start: 7, End: 9}))
	}
	if r.Valid(4) || !r.Valid(5) {
		t.Error("Valid does not check the upper bound")
	}
	if r.String() != "[2,5)" {
		t.Errorf("String() = %q", r.String())
	}
}
