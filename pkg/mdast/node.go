package mdast

// NodeKind classifies the type of a document node.
type NodeKind uint16

// Node kinds for block-level and span-level elements.
const (
	// Block-level nodes.
	NodeParagraph NodeKind = iota
	NodeTitle
	NodeHeading
	NodeListItem
	NodeChecklistItem
	NodeCodeBlock
	NodeHorizontalRule
	NodeImage
	NodeBlockquote

	// Span-level nodes.
	NodeText
	NodeEmphasis
	NodeStrong
	NodeStrikethrough
	NodeCodeSpan
	NodeLink
	NodeInlineImage
	NodeAutoLink

	nodeKindCount
)

//nolint:gochecknoglobals // Read-only lookup table.
var nodeKindNames = [nodeKindCount]string{
	NodeParagraph:      "paragraph",
	NodeTitle:          "title",
	NodeHeading:        "heading",
	NodeListItem:       "list_item",
	NodeChecklistItem:  "checklist_item",
	NodeCodeBlock:      "code_block",
	NodeHorizontalRule: "horizontal_rule",
	NodeImage:          "image",
	NodeBlockquote:     "blockquote",
	NodeText:           "text",
	NodeEmphasis:       "emphasis",
	NodeStrong:         "strong",
	NodeStrikethrough:  "strikethrough",
	NodeCodeSpan:       "code_span",
	NodeLink:           "link",
	NodeInlineImage:    "inline_image",
	NodeAutoLink:       "autolink",
}

// String returns the snake_case name of the kind, as used in theme configuration.
func (k NodeKind) String() string {
	if k < nodeKindCount {
		return nodeKindNames[k]
	}
	return "unknown"
}

// ParseNodeKind looks up a kind by its String name.
func ParseNodeKind(name string) (NodeKind, bool) {
	for kind, kindName := range nodeKindNames {
		if kindName == name {
			return NodeKind(kind), true
		}
	}
	return 0, false
}

// IsBlock returns true if this is a block-level kind.
func (k NodeKind) IsBlock() bool {
	return k <= NodeBlockquote
}

// Capabilities describes what the editing core may do with a node of a given kind.
type Capabilities struct {
	// Foldable nodes carry syntax delimiters that are collapsed unless selected.
	Foldable bool

	// Attachable nodes are presented as a single attachment token.
	Attachable bool

	// Container nodes hold child spans.
	Container bool

	// ReturnCompletable nodes continue their marker on a new line when return is pressed.
	ReturnCompletable bool

	// Annotatable nodes are decorated by an annotation widget (bullet, checkbox, rule).
	Annotatable bool
}

//nolint:gochecknoglobals // Read-only lookup table.
var capabilities = [nodeKindCount]Capabilities{
	NodeParagraph:      {Container: true},
	NodeTitle:          {Container: true},
	NodeHeading:        {Foldable: true, Container: true},
	NodeListItem:       {Container: true, ReturnCompletable: true, Annotatable: true},
	NodeChecklistItem:  {Container: true, ReturnCompletable: true, Annotatable: true},
	NodeCodeBlock:      {Foldable: true},
	NodeHorizontalRule: {Foldable: true, Annotatable: true},
	NodeImage:          {Attachable: true},
	NodeBlockquote:     {Foldable: true, Container: true},
	NodeText:           {},
	NodeEmphasis:       {Foldable: true, Container: true},
	NodeStrong:         {Foldable: true, Container: true},
	NodeStrikethrough:  {Foldable: true, Container: true},
	NodeCodeSpan:       {Foldable: true},
	NodeLink:           {Foldable: true, Container: true},
	NodeInlineImage:    {Foldable: true},
	NodeAutoLink:       {Foldable: true},
}

// Caps returns the capability set for the kind.
func (k NodeKind) Caps() Capabilities {
	if k < nodeKindCount {
		return capabilities[k]
	}
	return Capabilities{}
}

// Node is an immutable snapshot of one block or span.
//
// All ranges are byte offsets relative to the start of the owning block, so a
// block can be reused unchanged when text before it is edited.
type Node struct {
	// Kind identifies what type of node this is.
	Kind NodeKind

	// Range covers the node's full syntax.
	Range Range

	// Visible is the subrange that stays visible after folding.
	Visible Range

	// Folds lists the syntax delimiters that fold away when the node is not selected.
	Folds []Range

	// Children holds the spans contained in this node.
	Children []*Node

	// Attrs holds kind-specific attributes.
	Attrs Attrs
}

// HasChildren returns true if this node has any children.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// Text returns the node's source text from the owning block's source.
func (n *Node) Text(source string) string {
	if n.Range.Start < 0 || n.Range.End > len(source) || n.Range.IsEmpty() {
		return ""
	}
	return source[n.Range.Start:n.Range.End]
}

// VisibleText returns the node's visible text from the owning block's source.
func (n *Node) VisibleText(source string) string {
	if n.Visible.Start < 0 || n.Visible.End > len(source) || n.Visible.IsEmpty() {
		return ""
	}
	return source[n.Visible.Start:n.Visible.End]
}
