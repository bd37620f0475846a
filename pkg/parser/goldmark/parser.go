// Package goldmark provides a Parser implementation that splits backing text
// into line-level mdast blocks and uses the goldmark library for span-level syntax.
package goldmark

import (
	"context"
	"fmt"

	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"

	"github.com/yaklabco/gomdedit/pkg/mdast"
)

// Flavor identifies the Markdown flavor supported by the parser.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// Priorities match the ones goldmark's GFM extensions register with.
const (
	paragraphPriority     = 1000
	strikethroughPriority = 500
	linkifyPriority       = 999
)

// Parser implements document.Parser using goldmark.
type Parser struct {
	flavor string
	inline parser.Parser
}

// New creates a new goldmark-based parser for the given flavor.
// Supported flavors are "commonmark" and "gfm".
// Invalid flavors default to "gfm", which adds strikethrough and bare-URL links.
func New(flavor string) *Parser {
	f := flavorOrDefault(flavor)
	return &Parser{
		flavor: f,
		inline: newInlineParser(f),
	}
}

// Flavor returns the configured Markdown flavor.
func (p *Parser) Flavor() string {
	return p.flavor
}

// Parse splits text into blocks that tile it from start to end.
// Returns an error only when the context is cancelled.
func (p *Parser) Parse(ctx context.Context, text string) ([]*mdast.Block, error) {
	var blocks []*mdast.Block
	for offset := 0; offset < len(text); {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("parse cancelled: %w", err)
		}
		block := p.Block(text, offset, offset == 0)
		blocks = append(blocks, block)
		offset += block.Len()
	}
	return blocks, nil
}

// flavorOrDefault returns the flavor if valid, otherwise defaults to GFM.
func flavorOrDefault(flavor string) string {
	switch flavor {
	case FlavorCommonMark, FlavorGFM:
		return flavor
	default:
		return FlavorGFM
	}
}

// newInlineParser creates a goldmark parser whose only block parser is the
// paragraph parser, so block content is always read as a run of spans.
//
//nolint:ireturn // parser.Parser is an external interface type
func newInlineParser(flavor string) parser.Parser {
	inlines := parser.DefaultInlineParsers()

	switch flavor {
	case FlavorGFM:
		inlines = append(inlines,
			util.Prioritized(extension.NewStrikethroughParser(), strikethroughPriority),
			util.Prioritized(extension.NewLinkifyParser(), linkifyPriority),
		)
	case FlavorCommonMark:
		// No extensions for pure CommonMark.
	}

	return parser.NewParser(
		parser.WithBlockParsers(util.Prioritized(parser.NewParagraphParser(), paragraphPriority)),
		parser.WithInlineParsers(inlines...),
	)
}
