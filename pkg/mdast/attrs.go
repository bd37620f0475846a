package mdast

// Attrs holds kind-specific attributes. Unused fields stay at their zero value.
type Attrs struct {
	// Level is the heading level (1-6) for headings and titles.
	Level int

	// Indent is the leading whitespace before a list marker.
	Indent string

	// Bullet is the bullet character for unordered and checklist items ('-', '+', '*').
	Bullet byte

	// Ordinal is the number of an ordered list item; zero for unordered items.
	Ordinal int

	// Delimiter is the ordered list delimiter ('.' or ')').
	Delimiter byte

	// Checked is true for a checked checklist item.
	Checked bool

	// CheckRange locates the check character inside "[ ]" for checklist items.
	CheckRange Range

	// Info is the code fence info string.
	Info string

	// FenceChar is the fence character ('`' or '~') of a code block.
	FenceChar byte

	// Closed is true when a fenced code block has a closing fence.
	Closed bool

	// URL locates a link or image destination.
	URL Range

	// Title locates a link or image title, including its quotes.
	Title Range

	// Destination is the link or image destination text.
	Destination string
}

// IsOrdered returns true for ordered list items.
func (a Attrs) IsOrdered() bool {
	return a.Ordinal > 0
}
