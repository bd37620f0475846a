package style

import (
	"github.com/yaklabco/gomdedit/pkg/document"
	"github.com/yaklabco/gomdedit/pkg/langdetect"
	"github.com/yaklabco/gomdedit/pkg/mdast"
)

// Style assigns attributes to a presentation range.
type Style struct {
	Range mdast.Range
	Attrs Attributes
}

// Fold is a presentation range of syntax that collapses unless the selection
// touches the node that owns it.
type Fold struct {
	// Range is the fold's presentation range.
	Range mdast.Range

	// Node is the presentation range of the owning node.
	Node mdast.Range

	// Kind is the owning node's kind.
	Kind mdast.NodeKind

	// Open is true when the fold is expanded.
	Open bool
}

// Result is the projection of a whole document.
type Result struct {
	Styles []Style
	Folds  []Fold
}

// projection is the block-relative projection of one block.
type projection struct {
	styles []Style
	folds  []Fold
}

// Projector turns documents into styles and folds. Projections are cached per
// block, so after a localized edit only the changed blocks are walked again.
// A Projector is not safe for concurrent use.
type Projector struct {
	theme  Theme
	cache  map[*mdast.Block]projection
	images map[string]Attributes
}

// NewProjector returns a projector using theme.
func NewProjector(theme Theme) *Projector {
	return &Projector{
		theme:  theme,
		cache:  make(map[*mdast.Block]projection),
		images: make(map[string]Attributes),
	}
}

// Theme returns the projector's theme.
func (p *Projector) Theme() Theme {
	return p.theme
}

// PatchImage records attachment attributes for images whose destination is
// url. The patch applies from the next Project onwards.
func (p *Projector) PatchImage(url string, attrs Attributes) {
	p.images[url] = attrs
}

// Project derives the styles and folds of doc. Projecting the same document
// twice yields equal results.
func (p *Projector) Project(doc *document.Document) Result {
	blocks := doc.Blocks()
	cache := make(map[*mdast.Block]projection, len(blocks))

	var res Result
	for i, block := range blocks {
		proj, ok := p.cache[block]
		if !ok {
			proj = p.projectBlock(block)
		}
		cache[block] = proj

		base := doc.PresentationStart(i)
		for _, s := range proj.styles {
			res.Styles = append(res.Styles, Style{Range: s.Range.Shift(base), Attrs: s.Attrs})
		}
		for _, f := range proj.folds {
			f.Range = f.Range.Shift(base)
			f.Node = f.Node.Shift(base)
			res.Folds = append(res.Folds, f)
		}

		if block.Kind == mdast.NodeImage {
			if patch, ok := p.images[block.Attrs.Destination]; ok {
				r := block.PresentationRange(block.Visible).Shift(base)
				res.Styles = append(res.Styles, Style{Range: r, Attrs: patch})
			}
		}
	}

	p.cache = cache
	return res
}

func (p *Projector) projectBlock(block *mdast.Block) projection {
	var proj projection

	for n := range mdast.All(&block.Node) {
		if attrs := p.attributes(block, n); len(attrs) > 0 {
			if r := block.PresentationRange(n.Visible); !r.IsEmpty() {
				proj.styles = append(proj.styles, Style{Range: r, Attrs: attrs})
			}
		}

		if n.Kind.Caps().Foldable {
			node := block.PresentationRange(n.Range)
			for _, f := range n.Folds {
				r := block.PresentationRange(f)
				if r.IsEmpty() {
					continue
				}
				proj.folds = append(proj.folds, Fold{Range: r, Node: node, Kind: n.Kind})
				proj.styles = append(proj.styles, Style{Range: r, Attrs: p.theme.Muted})
			}
		}

		if n.Kind == mdast.NodeLink || n.Kind == mdast.NodeInlineImage {
			for _, r := range []mdast.Range{n.Attrs.URL, n.Attrs.Title} {
				if pr := block.PresentationRange(r); !pr.IsEmpty() {
					proj.styles = append(proj.styles, Style{Range: pr, Attrs: p.theme.Muted})
				}
			}
		}
	}

	return proj
}

// attributes returns the theme attributes of n plus the ones derived from
// its content.
func (p *Projector) attributes(block *mdast.Block, n *mdast.Node) Attributes {
	attrs := p.theme.Kinds[n.Kind]

	switch n.Kind {
	case mdast.NodeTitle, mdast.NodeHeading:
		attrs = attrs.Merge(Attributes{AttrHeading: n.Attrs.Level})
	case mdast.NodeLink, mdast.NodeAutoLink, mdast.NodeInlineImage, mdast.NodeImage:
		attrs = attrs.Merge(Attributes{AttrLink: n.Attrs.Destination})
	case mdast.NodeCodeBlock:
		lang := langdetect.FenceLanguage(n.Attrs.Info, n.VisibleText(block.Source))
		attrs = attrs.Merge(Attributes{AttrLanguage: lang})
	}
	return attrs
}

// OpenFolds returns a copy of folds with every fold whose node intersects sel
// marked open.
func OpenFolds(folds []Fold, sel mdast.Range) []Fold {
	out := make([]Fold, len(folds))
	for i, f := range folds {
		f.Open = f.Node.Intersects(sel)
		out[i] = f
	}
	return out
}
