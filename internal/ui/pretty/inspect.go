package pretty

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yaklabco/gomdedit/pkg/document"
	"github.com/yaklabco/gomdedit/pkg/mdast"
	"github.com/yaklabco/gomdedit/pkg/style"
)

// Table formatting constants.
const (
	tablePadding   = 2
	minSourceWidth = 16
	lightSeparator = "-"
)

// BlockRow is one row of the block table.
type BlockRow struct {
	Index        int
	Kind         string
	Backing      mdast.Range
	Presentation mdast.Range
	Source       string
}

// BlockRows lists the blocks of doc with their backing and presentation ranges.
func BlockRows(doc *document.Document) []BlockRow {
	rows := make([]BlockRow, 0, len(doc.Blocks()))
	for i, block := range doc.Blocks() {
		rows = append(rows, BlockRow{
			Index:        i,
			Kind:         block.Kind.String(),
			Backing:      mdast.NewRange(doc.BlockStart(i), block.Len()),
			Presentation: mdast.NewRange(doc.PresentationStart(i), len(block.Display)),
			Source:       block.Source,
		})
	}
	return rows
}

// FormatBlocks renders rows as an aligned table no wider than termWidth.
func (s *Styles) FormatBlocks(rows []BlockRow, termWidth int) string {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}

	headers := []string{"#", "KIND", "BACKING", "PRESENTATION", "SOURCE"}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	cells := make([][]string, len(rows))
	for r, row := range rows {
		cells[r] = []string{
			strconv.Itoa(row.Index),
			row.Kind,
			row.Backing.String(),
			row.Presentation.String(),
			strconv.Quote(row.Source),
		}
		for i, cell := range cells[r][:4] {
			widths[i] = max(widths[i], len(cell))
		}
	}

	fixed := 0
	for _, w := range widths[:4] {
		fixed += w + tablePadding
	}
	widths[4] = max(termWidth-fixed, minSourceWidth)

	var b strings.Builder
	b.WriteString(s.TableHeader.Render(formatCells(headers, widths)) + "\n")
	b.WriteString(s.TableSeparator.Render(strings.Repeat(lightSeparator, min(fixed+widths[4], termWidth))) + "\n")
	for _, row := range cells {
		row[4] = truncateString(row[4], widths[4])
		line := []string{
			pad(row[0], widths[0]),
			s.Kind.Render(pad(row[1], widths[1])),
			s.Range.Render(pad(row[2], widths[2])),
			s.Range.Render(pad(row[3], widths[3])),
			s.Source.Render(row[4]),
		}
		b.WriteString(strings.Join(line, strings.Repeat(" ", tablePadding)) + "\n")
	}
	return b.String()
}

// FormatFolds lists folds with the presentation text they cover.
func (s *Styles) FormatFolds(folds []style.Fold, text string) string {
	var b strings.Builder
	for _, f := range folds {
		state := "closed"
		if f.Open {
			state = "open"
		}
		fmt.Fprintf(&b, "%s %s %s %s\n",
			s.Range.Render(pad(f.Range.String(), 10)),
			s.Kind.Render(pad(f.Kind.String(), 16)),
			s.Dim.Render(pad(state, 6)),
			strconv.Quote(text[f.Range.Start:f.Range.End]),
		)
	}
	return b.String()
}

func formatCells(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		padded[i] = pad(cell, widths[i])
	}
	return strings.TrimRight(strings.Join(padded, strings.Repeat(" ", tablePadding)), " ")
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// truncateString shortens str to maxLen bytes, marking the cut with "...".
func truncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return str[:maxLen]
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(str[cut]) {
		cut--
	}
	return str[:cut] + "..."
}
