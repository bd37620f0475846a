package goldmark

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yaklabco/gomdedit/pkg/mdast"
)

// Line-start constructs recognised by the block scanner.
//
//nolint:gochecknoglobals // Compiled patterns are read-only.
var (
	fencePattern     = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})([^`]*)$")
	rulePattern      = regexp.MustCompile(`^ {0,3}(?:(?:-[ \t]*){3,}|(?:\*[ \t]*){3,}|(?:_[ \t]*){3,})$`)
	headingPattern   = regexp.MustCompile(`^ {0,3}(#{1,6})(?:[ \t]+|$)`)
	checklistPattern = regexp.MustCompile(`^([ \t]*)([-*+]) \[([ xX])\](?:[ \t]+|$)`)
	orderedPattern   = regexp.MustCompile(`^([ \t]*)(\d{1,9})([.)])[ \t]+`)
	bulletPattern    = regexp.MustCompile(`^([ \t]*)([-*+])[ \t]+`)
	quotePattern     = regexp.MustCompile(`^ {0,3}>[ \t]?`)
)

// Block parses the block that begins at offset in text. first reports whether
// the block is the first of the document, which turns a level-1 heading into
// the document title.
func (p *Parser) Block(text string, offset int, first bool) *mdast.Block {
	line := mdast.LineAt(text, offset)
	content := line.Content(text)

	if m := fencePattern.FindStringSubmatch(content); m != nil {
		return p.codeBlock(text, line, m[1], m[2])
	}

	source := text[offset:line.EndOffset]
	contentEnd := line.NewlineStart - offset

	switch {
	case rulePattern.MatchString(content):
		return ruleBlock(source, contentEnd)

	case headingPattern.MatchString(content):
		m := headingPattern.FindStringSubmatchIndex(content)
		level := m[3] - m[2]
		if first && level == 1 {
			return p.markerBlock(mdast.NodeTitle, source, m[1], contentEnd, mdast.Attrs{Level: level}, true)
		}
		return p.markerBlock(mdast.NodeHeading, source, m[1], contentEnd, mdast.Attrs{Level: level}, false)

	case checklistPattern.MatchString(content):
		m := checklistPattern.FindStringSubmatchIndex(content)
		attrs := mdast.Attrs{
			Indent:     content[m[2]:m[3]],
			Bullet:     content[m[4]],
			Checked:    content[m[6]] != ' ',
			CheckRange: mdast.Range{Start: m[6], End: m[7]},
		}
		return p.markerBlock(mdast.NodeChecklistItem, source, m[1], contentEnd, attrs, true)

	case orderedPattern.MatchString(content):
		m := orderedPattern.FindStringSubmatchIndex(content)
		ordinal, err := strconv.Atoi(content[m[4]:m[5]])
		if err != nil || ordinal == 0 {
			// Zero-numbered items keep counting from one.
			ordinal = 1
		}
		attrs := mdast.Attrs{
			Indent:    content[m[2]:m[3]],
			Ordinal:   ordinal,
			Delimiter: content[m[6]],
		}
		return p.markerBlock(mdast.NodeListItem, source, m[1], contentEnd, attrs, true)

	case bulletPattern.MatchString(content):
		m := bulletPattern.FindStringSubmatchIndex(content)
		attrs := mdast.Attrs{
			Indent: content[m[2]:m[3]],
			Bullet: content[m[4]],
		}
		return p.markerBlock(mdast.NodeListItem, source, m[1], contentEnd, attrs, true)

	case quotePattern.MatchString(content):
		m := quotePattern.FindStringIndex(content)
		return p.markerBlock(mdast.NodeBlockquote, source, m[1], contentEnd, mdast.Attrs{}, false)

	default:
		return p.paragraphBlock(source, contentEnd)
	}
}

// markerBlock builds a single-line block whose content follows a line-start
// marker. The marker is either hidden from presentation or folded.
func (p *Parser) markerBlock(
	kind mdast.NodeKind,
	source string,
	markerEnd, contentEnd int,
	attrs mdast.Attrs,
	hideMarker bool,
) *mdast.Block {
	marker := mdast.Range{Start: 0, End: markerEnd}
	node := mdast.Node{
		Kind:     kind,
		Range:    mdast.Range{Start: 0, End: len(source)},
		Visible:  mdast.Range{Start: markerEnd, End: contentEnd},
		Children: p.parseSpans(source[markerEnd:contentEnd], markerEnd),
		Attrs:    attrs,
	}

	if !hideMarker {
		node.Folds = []mdast.Range{marker}
		return mdast.NewBlock(node, source, nil)
	}
	return mdast.NewBlock(node, source, []mdast.Segment{{Range: marker}})
}

// paragraphBlock builds a plain line, or an image block when the line holds
// nothing but a single image.
func (p *Parser) paragraphBlock(source string, contentEnd int) *mdast.Block {
	node := mdast.Node{
		Kind:     mdast.NodeParagraph,
		Range:    mdast.Range{Start: 0, End: len(source)},
		Visible:  mdast.Range{Start: 0, End: contentEnd},
		Children: p.parseSpans(source[:contentEnd], 0),
	}

	if image := soleImage(node.Children, source[:contentEnd]); image != nil {
		node.Kind = mdast.NodeImage
		node.Attrs = image.Attrs
		node.Visible = mdast.Range{Start: 0, End: contentEnd}
		node.Children = nil
		hidden := []mdast.Segment{{
			Range:       mdast.Range{Start: 0, End: contentEnd},
			Replacement: mdast.ObjectReplacement,
		}}
		return mdast.NewBlock(node, source, hidden)
	}

	return mdast.NewBlock(node, source, nil)
}

// soleImage returns the image span when it is the only non-blank content of a line.
func soleImage(spans []*mdast.Node, content string) *mdast.Node {
	if len(spans) != 1 || spans[0].Kind != mdast.NodeInlineImage {
		return nil
	}
	image := spans[0]
	if strings.TrimSpace(content[:image.Range.Start]) != "" || strings.TrimSpace(content[image.Range.End:]) != "" {
		return nil
	}
	return image
}

// ruleBlock builds a horizontal rule. The whole rule folds away so the
// annotation widget can draw it.
func ruleBlock(source string, contentEnd int) *mdast.Block {
	rule := mdast.Range{Start: 0, End: contentEnd}
	node := mdast.Node{
		Kind:    mdast.NodeHorizontalRule,
		Range:   mdast.Range{Start: 0, End: len(source)},
		Visible: rule,
		Folds:   []mdast.Range{rule},
	}
	return mdast.NewBlock(node, source, nil)
}

// codeBlock scans a fenced code block from its opening line up to and including
// the closing fence, or to the end of text when the fence is never closed.
func (p *Parser) codeBlock(text string, open mdast.LineInfo, fence, info string) *mdast.Block {
	offset := open.StartOffset
	fenceChar := fence[0]

	end := len(text)
	closeStart := len(text)
	closed := false
	var closeLine mdast.LineInfo

	for pos := open.EndOffset; pos < len(text); {
		line := mdast.LineAt(text, pos)
		if isClosingFence(line.Content(text), fenceChar, len(fence)) {
			closed = true
			closeLine = line
			closeStart = line.StartOffset
			end = line.EndOffset
			break
		}
		pos = line.EndOffset
	}

	source := text[offset:end]
	bodyStart := open.EndOffset - offset
	bodyEnd := closeStart - offset
	if bodyEnd > bodyStart && source[bodyEnd-1] == '\n' {
		bodyEnd--
	}
	bodyEnd = max(bodyEnd, bodyStart)

	node := mdast.Node{
		Kind:    mdast.NodeCodeBlock,
		Range:   mdast.Range{Start: 0, End: len(source)},
		Visible: mdast.Range{Start: bodyStart, End: bodyEnd},
		Folds:   []mdast.Range{{Start: 0, End: open.NewlineStart - offset}},
		Attrs: mdast.Attrs{
			Info:      strings.TrimSpace(info),
			FenceChar: fenceChar,
			Closed:    closed,
		},
	}
	if closed {
		node.Folds = append(node.Folds, mdast.Range{
			Start: closeLine.StartOffset - offset,
			End:   closeLine.NewlineStart - offset,
		})
	}

	return mdast.NewBlock(node, source, nil)
}

// isClosingFence reports whether line closes a fence of the given character and length.
func isClosingFence(line string, fenceChar byte, length int) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return false
	}
	run := 0
	for run < len(trimmed) && trimmed[run] == fenceChar {
		run++
	}
	return run >= length && strings.TrimSpace(trimmed[run:]) == ""
}
