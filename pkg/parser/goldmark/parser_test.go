package goldmark

import (
	"context"
	"errors"
	"testing"

	"github.com/yaklabco/gomdedit/pkg/mdast"
)

func TestParser_New(t *testing.T) {
	tests := []struct {
		name       string
		flavor     string
		wantFlavor string
	}{
		{"commonmark", FlavorCommonMark, FlavorCommonMark},
		{"gfm", FlavorGFM, FlavorGFM},
		{"invalid defaults to gfm", "invalid", FlavorGFM},
		{"empty defaults to gfm", "", FlavorGFM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.flavor)

			if p.Flavor() != tt.wantFlavor {
				t.Errorf("Flavor() = %q, want %q", p.Flavor(), tt.wantFlavor)
			}
		})
	}
}

func TestParser_Parse_Tiles(t *testing.T) {
	text := "# Title\nSome *text*\n- item\n```go\nx := 1\n```\n---\n> quote"
	blocks, err := New(FlavorGFM).Parse(context.Background(), text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	wantKinds := []mdast.NodeKind{
		mdast.NodeTitle,
		mdast.NodeParagraph,
		mdast.NodeListItem,
		mdast.NodeCodeBlock,
		mdast.NodeHorizontalRule,
		mdast.NodeBlockquote,
	}
	if len(blocks) != len(wantKinds) {
		t.Fatalf("got %d blocks, want %d", len(blocks), len(wantKinds))
	}

	joined := ""
	for i, block := range blocks {
		if block.Kind != wantKinds[i] {
			t.Errorf("block %d kind = %v, want %v", i, block.Kind, wantKinds[i])
		}
		joined += block.Source
	}
	if joined != text {
		t.Errorf("blocks do not tile the text: %q", joined)
	}
}

func TestParser_Parse_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(FlavorGFM).Parse(ctx, "text")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Parse() error = %v, want context.Canceled", err)
	}
}

func TestParser_Parse_Empty(t *testing.T) {
	blocks, err := New(FlavorGFM).Parse(context.Background(), "")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(blocks) != 0 {
		t.Errorf("got %d blocks, want 0", len(blocks))
	}
}

func TestParser_Block_Headings(t *testing.T) {
	p := New(FlavorGFM)

	tests := []struct {
		name        string
		text        string
		first       bool
		wantKind    mdast.NodeKind
		wantLevel   int
		wantDisplay string
	}{
		{"title hides marker", "# Notes\n", true, mdast.NodeTitle, 1, "Notes\n"},
		{"level one later is a heading", "# Notes\n", false, mdast.NodeHeading, 1, "# Notes\n"},
		{"level two first is a heading", "## Notes\n", true, mdast.NodeHeading, 2, "## Notes\n"},
		{"bare marker", "###", false, mdast.NodeHeading, 3, "###"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block := p.Block(tt.text, 0, tt.first)

			if block.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", block.Kind, tt.wantKind)
			}
			if block.Attrs.Level != tt.wantLevel {
				t.Errorf("Level = %d, want %d", block.Attrs.Level, tt.wantLevel)
			}
			if block.Display != tt.wantDisplay {
				t.Errorf("Display = %q, want %q", block.Display, tt.wantDisplay)
			}
		})
	}
}

func TestParser_Block_Heading_Folds(t *testing.T) {
	block := New(FlavorGFM).Block("## Sub\n", 0, false)

	if len(block.Folds) != 1 || block.Folds[0] != (mdast.Range{Start: 0, End: 3}) {
		t.Errorf("Folds = %v, want [[0,3)]", block.Folds)
	}
	if block.Visible != (mdast.Range{Start: 3, End: 6}) {
		t.Errorf("Visible = %v, want [3,6)", block.Visible)
	}
}

func TestParser_Block_Lists(t *testing.T) {
	p := New(FlavorGFM)

	t.Run("bullet", func(t *testing.T) {
		block := p.Block("  * item\n", 0, false)
		if block.Kind != mdast.NodeListItem {
			t.Fatalf("Kind = %v, want list_item", block.Kind)
		}
		if block.Attrs.Indent != "  " || block.Attrs.Bullet != '*' || block.Attrs.IsOrdered() {
			t.Errorf("Attrs = %+v", block.Attrs)
		}
		if block.Display != "item\n" {
			t.Errorf("Display = %q, want %q", block.Display, "item\n")
		}
	})

	t.Run("ordered", func(t *testing.T) {
		block := p.Block("3) third", 0, false)
		if block.Kind != mdast.NodeListItem {
			t.Fatalf("Kind = %v, want list_item", block.Kind)
		}
		if block.Attrs.Ordinal != 3 || block.Attrs.Delimiter != ')' {
			t.Errorf("Attrs = %+v", block.Attrs)
		}
		if block.Display != "third" {
			t.Errorf("Display = %q, want %q", block.Display, "third")
		}
	})

	t.Run("checklist", func(t *testing.T) {
		block := p.Block("- [x] done\n", 0, false)
		if block.Kind != mdast.NodeChecklistItem {
			t.Fatalf("Kind = %v, want checklist_item", block.Kind)
		}
		if !block.Attrs.Checked {
			t.Error("Checked = false, want true")
		}
		if block.Attrs.CheckRange != (mdast.Range{Start: 3, End: 4}) {
			t.Errorf("CheckRange = %v, want [3,4)", block.Attrs.CheckRange)
		}
		if block.Display != "done\n" {
			t.Errorf("Display = %q, want %q", block.Display, "done\n")
		}
	})

	t.Run("rule wins over bullet", func(t *testing.T) {
		block := p.Block("- - -\n", 0, false)
		if block.Kind != mdast.NodeHorizontalRule {
			t.Errorf("Kind = %v, want horizontal_rule", block.Kind)
		}
	})
}

func TestParser_Block_CodeBlock(t *testing.T) {
	p := New(FlavorGFM)

	t.Run("closed", func(t *testing.T) {
		text := "```go\nfmt.Println()\n```\nafter"
		block := p.Block(text, 0, false)

		if block.Kind != mdast.NodeCodeBlock {
			t.Fatalf("Kind = %v, want code_block", block.Kind)
		}
		if block.Source != "```go\nfmt.Println()\n```\n" {
			t.Errorf("Source = %q", block.Source)
		}
		if block.Attrs.Info != "go" || !block.Attrs.Closed || block.Attrs.FenceChar != '`' {
			t.Errorf("Attrs = %+v", block.Attrs)
		}
		if block.Visible != (mdast.Range{Start: 6, End: 19}) {
			t.Errorf("Visible = %v, want [6,19)", block.Visible)
		}
		wantFolds := []mdast.Range{{Start: 0, End: 5}, {Start: 20, End: 23}}
		if len(block.Folds) != 2 || block.Folds[0] != wantFolds[0] || block.Folds[1] != wantFolds[1] {
			t.Errorf("Folds = %v, want %v", block.Folds, wantFolds)
		}
	})

	t.Run("unclosed runs to end", func(t *testing.T) {
		text := "```\ncode\n- not a list"
		block := p.Block(text, 0, false)

		if block.Source != text {
			t.Errorf("Source = %q, want whole text", block.Source)
		}
		if block.Attrs.Closed {
			t.Error("Closed = true, want false")
		}
	})

	t.Run("shorter fence does not close", func(t *testing.T) {
		text := "````\n```\n````\n"
		block := p.Block(text, 0, false)

		if block.Source != text || !block.Attrs.Closed {
			t.Errorf("Source = %q, Closed = %v", block.Source, block.Attrs.Closed)
		}
	})
}

func TestParser_Block_Image(t *testing.T) {
	p := New(FlavorGFM)

	block := p.Block("![alt](http://x/a.png)\n", 0, false)
	if block.Kind != mdast.NodeImage {
		t.Fatalf("Kind = %v, want image", block.Kind)
	}
	if block.Display != mdast.ObjectReplacement+"\n" {
		t.Errorf("Display = %q", block.Display)
	}
	if block.Attrs.Destination != "http://x/a.png" {
		t.Errorf("Destination = %q", block.Attrs.Destination)
	}
	if block.HasChildren() {
		t.Errorf("image block keeps %d children", len(block.Children))
	}

	inline := p.Block("see ![alt](http://x/a.png)\n", 0, false)
	if inline.Kind != mdast.NodeParagraph {
		t.Errorf("Kind = %v, want paragraph for image with text", inline.Kind)
	}
}

func TestParser_Spans(t *testing.T) {
	tests := []struct {
		name        string
		flavor      string
		text        string
		wantKind    mdast.NodeKind
		wantRange   mdast.Range
		wantVisible mdast.Range
	}{
		{
			name:        "strong",
			flavor:      FlavorGFM,
			text:        "a **b** c",
			wantKind:    mdast.NodeStrong,
			wantRange:   mdast.Range{Start: 2, End: 7},
			wantVisible: mdast.Range{Start: 4, End: 5},
		},
		{
			name:        "emphasis after list marker",
			flavor:      FlavorGFM,
			text:        "- *x*",
			wantKind:    mdast.NodeEmphasis,
			wantRange:   mdast.Range{Start: 2, End: 5},
			wantVisible: mdast.Range{Start: 3, End: 4},
		},
		{
			name:        "code span",
			flavor:      FlavorGFM,
			text:        "use `x` now",
			wantKind:    mdast.NodeCodeSpan,
			wantRange:   mdast.Range{Start: 4, End: 7},
			wantVisible: mdast.Range{Start: 5, End: 6},
		},
		{
			name:        "strikethrough",
			flavor:      FlavorGFM,
			text:        "~~gone~~",
			wantKind:    mdast.NodeStrikethrough,
			wantRange:   mdast.Range{Start: 0, End: 8},
			wantVisible: mdast.Range{Start: 2, End: 6},
		},
		{
			name:        "link",
			flavor:      FlavorCommonMark,
			text:        `see [docs](http://a.b "T")`,
			wantKind:    mdast.NodeLink,
			wantRange:   mdast.Range{Start: 4, End: 26},
			wantVisible: mdast.Range{Start: 5, End: 9},
		},
		{
			name:        "autolink",
			flavor:      FlavorCommonMark,
			text:        "<http://a.b>",
			wantKind:    mdast.NodeAutoLink,
			wantRange:   mdast.Range{Start: 0, End: 12},
			wantVisible: mdast.Range{Start: 1, End: 11},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block := New(tt.flavor).Block(tt.text, 0, false)

			span := mdast.First(&block.Node, func(n *mdast.Node) bool { return n.Kind == tt.wantKind })
			if span == nil {
				t.Fatalf("no %v span in %q", tt.wantKind, tt.text)
			}
			if span.Range != tt.wantRange {
				t.Errorf("Range = %v, want %v", span.Range, tt.wantRange)
			}
			if span.Visible != tt.wantVisible {
				t.Errorf("Visible = %v, want %v", span.Visible, tt.wantVisible)
			}
		})
	}
}

func TestParser_Spans_LinkAttrs(t *testing.T) {
	block := New(FlavorCommonMark).Block(`see [docs](http://a.b "T")`, 0, false)

	link := mdast.First(&block.Node, func(n *mdast.Node) bool { return n.Kind == mdast.NodeLink })
	if link == nil {
		t.Fatal("no link span")
	}
	if link.Attrs.URL != (mdast.Range{Start: 11, End: 21}) {
		t.Errorf("URL = %v, want [11,21)", link.Attrs.URL)
	}
	if link.Attrs.Title != (mdast.Range{Start: 22, End: 25}) {
		t.Errorf("Title = %v, want [22,25)", link.Attrs.Title)
	}
	if link.Attrs.Destination != "http://a.b" {
		t.Errorf("Destination = %q", link.Attrs.Destination)
	}
}

func TestParser_Spans_StrikethroughNeedsGFM(t *testing.T) {
	block := New(FlavorCommonMark).Block("~~gone~~", 0, false)

	for range mdast.OfKind(&block.Node, mdast.NodeStrikethrough) {
		t.Fatal("commonmark flavor parsed strikethrough")
	}
}
