package goldmark

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/gomdedit/pkg/mdast"
)

// parseSpans parses one line of block content into span nodes. base is the
// offset of content within its block; returned ranges are block-relative.
func (p *Parser) parseSpans(content string, base int) []*mdast.Node {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	src := []byte(content)
	doc := p.inline.Parse(text.NewReader(src))

	m := &mapper{
		src:  src,
		base: base,
		pos:  len(content) - len(strings.TrimLeft(content, " \t")),
	}

	var spans []*mdast.Node
	for para := doc.FirstChild(); para != nil; para = para.NextSibling() {
		spans = append(spans, m.mapChildren(para)...)
	}
	return spans
}

// mapper converts goldmark inline nodes into mdast spans. goldmark does not
// record delimiter positions, so the mapper tracks a cursor through the source
// and locates each construct's syntax from it.
type mapper struct {
	src  []byte
	base int
	pos  int
}

// rng returns the block-relative range for content offsets start and end.
func (m *mapper) rng(start, end int) mdast.Range {
	return mdast.Range{Start: start + m.base, End: end + m.base}
}

// mapChildren maps the children of a goldmark node, merging adjacent text.
func (m *mapper) mapChildren(gmParent ast.Node) []*mdast.Node {
	var nodes []*mdast.Node
	for child := gmParent.FirstChild(); child != nil; child = child.NextSibling() {
		for _, node := range m.mapNode(child) {
			if n := len(nodes); n > 0 && node.Kind == mdast.NodeText && nodes[n-1].Kind == mdast.NodeText &&
				nodes[n-1].Range.End == node.Range.Start {
				nodes[n-1].Range.End = node.Range.End
				nodes[n-1].Visible.End = node.Visible.End
				continue
			}
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// mapNode converts a single goldmark inline node. Unknown containers are
// flattened into their children.
func (m *mapper) mapNode(gmNode ast.Node) []*mdast.Node {
	switch gmn := gmNode.(type) {
	case *ast.Text:
		return m.single(m.mapText(gmn.Segment.Start, gmn.Segment.Stop))

	case *ast.CodeSpan:
		return m.single(m.mapCodeSpan())

	case *ast.Emphasis:
		return m.single(m.mapEmphasis(gmn))

	case *east.Strikethrough:
		return m.single(m.mapStrikethrough(gmn))

	case *ast.Link:
		return m.single(m.mapLink(gmn, mdast.NodeLink, "["))

	case *ast.Image:
		return m.single(m.mapLink(gmn, mdast.NodeInlineImage, "!["))

	case *ast.AutoLink:
		return m.single(m.mapAutoLink(gmn))

	case *ast.RawHTML:
		segs := gmn.Segments
		if segs.Len() == 0 {
			return nil
		}
		return m.single(m.mapText(segs.At(0).Start, segs.At(segs.Len()-1).Stop))

	case *ast.String:
		return nil

	default:
		return m.mapChildren(gmNode)
	}
}

func (m *mapper) single(node *mdast.Node) []*mdast.Node {
	if node == nil {
		return nil
	}
	return []*mdast.Node{node}
}

func (m *mapper) mapText(start, stop int) *mdast.Node {
	if stop <= start {
		return nil
	}
	m.pos = max(m.pos, stop)
	return &mdast.Node{
		Kind:    mdast.NodeText,
		Range:   m.rng(start, stop),
		Visible: m.rng(start, stop),
	}
}

// mapCodeSpan locates a backtick run and its matching closing run.
func (m *mapper) mapCodeSpan() *mdast.Node {
	start := m.find("`")
	if start < 0 {
		return nil
	}
	ticks := m.run(start, '`', len(m.src))
	inner := start + ticks

	closing := -1
	for i := inner; i < len(m.src); {
		if m.src[i] != '`' {
			i++
			continue
		}
		n := m.run(i, '`', len(m.src))
		if n == ticks {
			closing = i
			break
		}
		i += n
	}
	if closing < 0 {
		return nil
	}

	end := closing + ticks
	m.pos = end
	return &mdast.Node{
		Kind:    mdast.NodeCodeSpan,
		Range:   m.rng(start, end),
		Visible: m.rng(inner, closing),
		Folds:   []mdast.Range{m.rng(start, inner), m.rng(closing, end)},
	}
}

func (m *mapper) mapEmphasis(emphasis *ast.Emphasis) *mdast.Node {
	kind := mdast.NodeEmphasis
	if emphasis.Level >= 2 {
		kind = mdast.NodeStrong
	}
	return m.delimited(kind, "*_", emphasis, emphasis.Level)
}

func (m *mapper) mapStrikethrough(strike *east.Strikethrough) *mdast.Node {
	start := m.find("~")
	if start < 0 {
		return nil
	}
	return m.delimited(mdast.NodeStrikethrough, "~", strike, min(m.run(start, '~', len(m.src)), 2))
}

// delimited maps a span wrapped in symmetric runs of width delimiter characters.
func (m *mapper) delimited(kind mdast.NodeKind, chars string, gmNode ast.Node, width int) *mdast.Node {
	start := m.find(chars)
	if start < 0 {
		return nil
	}
	delim := m.src[start]
	m.pos = start + width

	children := m.mapChildren(gmNode)

	closing := m.pos + strings.IndexByte(string(m.src[m.pos:]), delim)
	if closing < m.pos {
		closing = m.pos
	}
	end := min(closing+width, len(m.src))
	m.pos = end

	return &mdast.Node{
		Kind:     kind,
		Range:    m.rng(start, end),
		Visible:  m.rng(start+width, closing),
		Folds:    []mdast.Range{m.rng(start, start+width), m.rng(closing, end)},
		Children: children,
	}
}

// mapLink maps inline links and images: the label, then either an inline
// destination in parentheses or a reference label in brackets.
func (m *mapper) mapLink(gmNode ast.Node, kind mdast.NodeKind, opener string) *mdast.Node {
	start := m.findPrefix(opener)
	if start < 0 {
		return nil
	}
	labelStart := start + len(opener)
	m.pos = labelStart

	children := m.mapChildren(gmNode)

	labelEnd := m.matchBracket(labelStart-1, '[', ']')
	if labelEnd < 0 {
		return nil
	}

	end := labelEnd + 1
	var attrs mdast.Attrs
	switch {
	case end < len(m.src) && m.src[end] == '(':
		closing := m.matchBracket(end, '(', ')')
		if closing < 0 {
			return nil
		}
		attrs = m.destination(end+1, closing)
		end = closing + 1
	case end < len(m.src) && m.src[end] == '[':
		if closing := m.matchBracket(end, '[', ']'); closing >= 0 {
			end = closing + 1
		}
	}

	switch link := gmNode.(type) {
	case *ast.Link:
		attrs.Destination = string(link.Destination)
	case *ast.Image:
		attrs.Destination = string(link.Destination)
	}

	m.pos = end
	return &mdast.Node{
		Kind:     kind,
		Range:    m.rng(start, end),
		Visible:  m.rng(labelStart, labelEnd),
		Folds:    []mdast.Range{m.rng(start, labelStart), m.rng(labelEnd, end)},
		Children: children,
		Attrs:    attrs,
	}
}

// destination locates the URL and optional title between the parentheses of an inline link.
func (m *mapper) destination(start, end int) mdast.Attrs {
	var attrs mdast.Attrs

	i := m.skipSpace(start, end)
	urlStart := i
	if i < end && m.src[i] == '<' {
		if closing := strings.IndexByte(string(m.src[i:end]), '>'); closing >= 0 {
			i += closing + 1
		} else {
			i = end
		}
	} else {
		depth := 0
		for ; i < end; i++ {
			c := m.src[i]
			if c == ' ' || c == '\t' {
				break
			}
			if c == '(' {
				depth++
			}
			if c == ')' {
				if depth == 0 {
					break
				}
				depth--
			}
		}
	}
	attrs.URL = m.rng(urlStart, i)

	i = m.skipSpace(i, end)
	if i < end {
		titleEnd := end
		for titleEnd > i && (m.src[titleEnd-1] == ' ' || m.src[titleEnd-1] == '\t') {
			titleEnd--
		}
		attrs.Title = m.rng(i, titleEnd)
	}

	return attrs
}

func (m *mapper) mapAutoLink(link *ast.AutoLink) *mdast.Node {
	label := string(link.Label(m.src))
	idx := strings.Index(string(m.src[m.pos:]), label)
	if label == "" || idx < 0 {
		return nil
	}
	start := m.pos + idx
	end := start + len(label)

	node := &mdast.Node{
		Kind:    mdast.NodeAutoLink,
		Range:   m.rng(start, end),
		Visible: m.rng(start, end),
		Attrs: mdast.Attrs{
			URL:         m.rng(start, end),
			Destination: string(link.URL(m.src)),
		},
	}
	if start > 0 && m.src[start-1] == '<' && end < len(m.src) && m.src[end] == '>' {
		node.Range = m.rng(start-1, end+1)
		node.Folds = []mdast.Range{m.rng(start-1, start), m.rng(end, end+1)}
		end++
	}

	m.pos = end
	return node
}

// find returns the first offset at or after the cursor holding any of chars, or -1.
func (m *mapper) find(chars string) int {
	if m.pos >= len(m.src) {
		return -1
	}
	idx := strings.IndexAny(string(m.src[m.pos:]), chars)
	if idx < 0 {
		return -1
	}
	return m.pos + idx
}

// findPrefix returns the first offset at or after the cursor where prefix begins, or -1.
func (m *mapper) findPrefix(prefix string) int {
	if m.pos >= len(m.src) {
		return -1
	}
	idx := strings.Index(string(m.src[m.pos:]), prefix)
	if idx < 0 {
		return -1
	}
	return m.pos + idx
}

// run counts consecutive c bytes starting at i.
func (m *mapper) run(i int, c byte, limit int) int {
	n := 0
	for i+n < limit && m.src[i+n] == c {
		n++
	}
	return n
}

func (m *mapper) skipSpace(i, end int) int {
	for i < end && (m.src[i] == ' ' || m.src[i] == '\t') {
		i++
	}
	return i
}

// matchBracket returns the offset of the bracket closing the one at open,
// honouring nesting and backslash escapes, or -1.
func (m *mapper) matchBracket(open int, opener, closer byte) int {
	depth := 0
	for i := open; i < len(m.src); i++ {
		switch m.src[i] {
		case '\\':
			i++
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
