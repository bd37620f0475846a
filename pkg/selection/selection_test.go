package selection

import (
	"testing"

	"github.com/yaklabco/gomdedit/pkg/mdast"
)

func TestAdjust(t *testing.T) {
	tests := []struct {
		name     string
		sel      mdast.Range
		replaced mdast.Range
		length   int
		want     mdast.Range
	}{
		{
			name:     "replacement before shifts",
			sel:      mdast.Range{Start: 5, End: 10},
			replaced: mdast.Range{Start: 0, End: 3},
			length:   5,
			want:     mdast.Range{Start: 7, End: 12},
		},
		{
			name:     "replacement containing collapses",
			sel:      mdast.Range{Start: 5, End: 10},
			replaced: mdast.Range{Start: 3, End: 15},
			length:   0,
			want:     mdast.Range{Start: 3, End: 3},
		},
		{
			name:     "replacement after is ignored",
			sel:      mdast.Range{Start: 5, End: 10},
			replaced: mdast.Range{Start: 10, End: 12},
			length:   0,
			want:     mdast.Range{Start: 5, End: 10},
		},
		{
			name:     "insertion at caret moves caret past text",
			sel:      mdast.Range{Start: 4, End: 4},
			replaced: mdast.Range{Start: 4, End: 4},
			length:   3,
			want:     mdast.Range{Start: 7, End: 7},
		},
		{
			name:     "typing over selection lands after text",
			sel:      mdast.Range{Start: 2, End: 6},
			replaced: mdast.Range{Start: 2, End: 6},
			length:   1,
			want:     mdast.Range{Start: 3, End: 3},
		},
		{
			name:     "overlap at end clamps end",
			sel:      mdast.Range{Start: 5, End: 10},
			replaced: mdast.Range{Start: 8, End: 12},
			length:   1,
			want:     mdast.Range{Start: 5, End: 8},
		},
		{
			name:     "overlap at start clamps then shifts",
			sel:      mdast.Range{Start: 5, End: 10},
			replaced: mdast.Range{Start: 3, End: 7},
			length:   0,
			want:     mdast.Range{Start: 3, End: 6},
		},
		{
			name:     "deletion inside selection shrinks it",
			sel:      mdast.Range{Start: 2, End: 10},
			replaced: mdast.Range{Start: 4, End: 6},
			length:   0,
			want:     mdast.Range{Start: 2, End: 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Adjust(tt.sel, tt.replaced, tt.length)
			if got != tt.want {
				t.Errorf("Adjust(%v, %v, %d) = %v, want %v", tt.sel, tt.replaced, tt.length, got, tt.want)
			}
		})
	}
}

func TestAdjust_Pure(t *testing.T) {
	sel := mdast.Range{Start: 5, End: 10}
	replaced := mdast.Range{Start: 0, End: 3}

	first := Adjust(sel, replaced, 5)
	second := Adjust(sel, replaced, 5)
	if first != second {
		t.Errorf("Adjust is not deterministic: %v != %v", first, second)
	}
	if sel != (mdast.Range{Start: 5, End: 10}) {
		t.Errorf("Adjust modified its input: %v", sel)
	}
}
