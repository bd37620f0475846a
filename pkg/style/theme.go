// Package style derives presentation styles and foldable ranges from a
// document's block tree.
package style

import (
	"fmt"
	"maps"

	"github.com/yaklabco/gomdedit/pkg/mdast"
)

// Attribute names understood by renderers.
const (
	AttrBold          = "bold"
	AttrItalic        = "italic"
	AttrStrikethrough = "strikethrough"
	AttrMonospace     = "monospace"
	AttrUnderline     = "underline"
	AttrColor         = "color"
	AttrMuted         = "muted"
	AttrHeading       = "heading"
	AttrLink          = "link"
	AttrLanguage      = "language"
	AttrAttachment    = "attachment"
	AttrContentID     = "content_id"
	AttrMIME          = "mime"
	AttrWidth         = "width"
	AttrHeight        = "height"
)

// MutedKey is the theme override key for delimiter styling.
const MutedKey = "muted"

// Attributes maps attribute names to values.
type Attributes map[string]any

// Merge returns a copy of a with other layered on top.
func (a Attributes) Merge(other Attributes) Attributes {
	out := make(Attributes, len(a)+len(other))
	maps.Copy(out, a)
	maps.Copy(out, other)
	return out
}

// Theme assigns attributes to node kinds.
type Theme struct {
	// Kinds holds the base attributes for each node kind.
	Kinds map[mdast.NodeKind]Attributes

	// Muted is layered over foldable syntax and link destinations.
	Muted Attributes
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() Theme {
	return Theme{
		Kinds: map[mdast.NodeKind]Attributes{
			mdast.NodeTitle:          {AttrBold: true, AttrColor: "#e6e6e6"},
			mdast.NodeHeading:        {AttrBold: true, AttrColor: "#7aa2f7"},
			mdast.NodeCodeBlock:      {AttrMonospace: true, AttrColor: "#9ece6a"},
			mdast.NodeHorizontalRule: {AttrColor: "#565f89"},
			mdast.NodeBlockquote:     {AttrItalic: true, AttrColor: "#a9b1d6"},
			mdast.NodeChecklistItem:  {},
			mdast.NodeEmphasis:       {AttrItalic: true},
			mdast.NodeStrong:         {AttrBold: true},
			mdast.NodeStrikethrough:  {AttrStrikethrough: true},
			mdast.NodeCodeSpan:       {AttrMonospace: true, AttrColor: "#9ece6a"},
			mdast.NodeLink:           {AttrUnderline: true, AttrColor: "#7dcfff"},
			mdast.NodeAutoLink:       {AttrUnderline: true, AttrColor: "#7dcfff"},
			mdast.NodeInlineImage:    {AttrColor: "#bb9af7"},
			mdast.NodeImage:          {AttrAttachment: true},
		},
		Muted: Attributes{AttrMuted: true, AttrColor: "#565f89"},
	}
}

// Override returns a copy of the theme with per-kind attributes replaced by
// overrides. Keys are node kind names or MutedKey.
func (t Theme) Override(overrides map[string]map[string]any) (Theme, error) {
	out := Theme{
		Kinds: make(map[mdast.NodeKind]Attributes, len(t.Kinds)),
		Muted: maps.Clone(t.Muted),
	}
	for kind, attrs := range t.Kinds {
		out.Kinds[kind] = maps.Clone(attrs)
	}

	for name, attrs := range overrides {
		if name == MutedKey {
			out.Muted = out.Muted.Merge(attrs)
			continue
		}
		kind, ok := mdast.ParseNodeKind(name)
		if !ok {
			return Theme{}, fmt.Errorf("theme: unknown node kind %q", name)
		}
		out.Kinds[kind] = out.Kinds[kind].Merge(attrs)
	}
	return out, nil
}
