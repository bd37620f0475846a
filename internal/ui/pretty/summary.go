package pretty

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/yaklabco/gomdedit/pkg/editor"
	"github.com/yaklabco/gomdedit/pkg/imagecache"
	"github.com/yaklabco/gomdedit/pkg/mdast"
	"github.com/yaklabco/gomdedit/pkg/runner"
)

// FormatSummary renders one row per file followed by run totals. Paths are
// shown relative to workDir when possible.
func (s *Styles) FormatSummary(result *runner.Result, workDir string) string {
	headers := []string{"FILE", "TITLE", "BLOCKS", "TASKS", "IMAGES", "CODE"}
	rows := make([][]string, 0, len(result.Files))
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}

	var b strings.Builder
	var failures []string
	for _, file := range result.Files {
		path := relPath(workDir, file.Path)
		if file.Error != nil {
			failures = append(failures, s.Failure.Render("✗ "+path)+" "+s.Dim.Render(file.Error.Error()))
			continue
		}

		tasks := "-"
		if file.Tasks > 0 {
			tasks = fmt.Sprintf("%d/%d", file.TasksDone, file.Tasks)
		}
		row := []string{
			path,
			file.Title,
			strconv.Itoa(countBlocks(file.Blocks)),
			tasks,
			strconv.Itoa(len(file.Images)),
			strings.Join(slices.Compact(slices.Sorted(slices.Values(file.Languages))), ","),
		}
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
		rows = append(rows, row)
	}

	if len(rows) > 0 {
		b.WriteString(s.TableHeader.Render(formatCells(headers, widths)) + "\n")
		for _, row := range rows {
			row[0] = s.Bold.Render(pad(row[0], widths[0]))
			row[2] = s.Kind.Render(pad(row[2], widths[2]))
			b.WriteString(formatCells(row, widths) + "\n")
		}
	}
	for _, line := range failures {
		b.WriteString(line + "\n")
	}

	stats := result.Stats
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %d files, %d blocks, %d/%d tasks done, %d images",
		s.Success.Render("✓"), stats.FilesProcessed, countBlocks(stats.Blocks), stats.TasksDone, stats.Tasks, stats.Images)
	if stats.FilesErrored > 0 {
		b.WriteString(", " + s.Failure.Render(fmt.Sprintf("%d failed", stats.FilesErrored)))
	}
	b.WriteString("\n")
	if kinds := kindBreakdown(stats.Blocks); kinds != "" {
		b.WriteString(s.Dim.Render(kinds) + "\n")
	}
	return b.String()
}

// FormatAnnotations lists the decorations drawn beside blocks.
func (s *Styles) FormatAnnotations(annotations []editor.Annotation) string {
	var b strings.Builder
	for _, a := range annotations {
		var detail string
		switch {
		case a.Kind == mdast.NodeChecklistItem && a.Checked:
			detail = "checked"
		case a.Kind == mdast.NodeChecklistItem:
			detail = "unchecked"
		case a.Ordinal > 0:
			detail = fmt.Sprintf("ordinal %d", a.Ordinal)
		}
		if a.Depth > 0 {
			detail = strings.TrimSpace(fmt.Sprintf("%s depth %d", detail, a.Depth))
		}
		fmt.Fprintf(&b, "%s %s %s %s\n",
			pad(strconv.Itoa(a.BlockIndex), 3),
			s.Kind.Render(pad(a.Kind.String(), 16)),
			s.Range.Render(pad(a.Range.String(), 10)),
			s.Dim.Render(detail),
		)
	}
	return b.String()
}

// ImageRow describes one fetched attachment.
type ImageRow struct {
	URL   string
	Image imagecache.Image
	Err   error
}

// FormatImages renders attachment metadata, one line per image.
func (s *Styles) FormatImages(rows []ImageRow) string {
	var b strings.Builder
	for _, row := range rows {
		if row.Err != nil {
			fmt.Fprintf(&b, "%s %s\n", s.Failure.Render("✗ "+row.URL), s.Dim.Render(row.Err.Error()))
			continue
		}
		img := row.Image
		size := "unknown size"
		if img.Width > 0 && img.Height > 0 {
			size = fmt.Sprintf("%dx%d", img.Width, img.Height)
		}
		fmt.Fprintf(&b, "%s %s %s %s %s\n",
			s.Success.Render("✓"),
			row.URL,
			s.Kind.Render(img.MIME),
			s.Range.Render(size),
			s.Dim.Render(fmt.Sprintf("shown %.0fx%.0f", img.Display.Width, img.Display.Height)),
		)
	}
	return b.String()
}

func countBlocks(blocks map[mdast.NodeKind]int) int {
	total := 0
	for _, n := range blocks {
		total += n
	}
	return total
}

// kindBreakdown lists block counts, most frequent first.
func kindBreakdown(blocks map[mdast.NodeKind]int) string {
	type entry struct {
		kind string
		n    int
	}
	entries := make([]entry, 0, len(blocks))
	for kind, n := range blocks {
		entries = append(entries, entry{kind.String(), n})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		return cmp.Or(cmp.Compare(b.n, a.n), cmp.Compare(a.kind, b.kind))
	})

	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%s %d", e.kind, e.n)
	}
	return strings.Join(parts, ", ")
}

func relPath(workDir, path string) string {
	if workDir == "" {
		return path
	}
	if rel, err := filepath.Rel(workDir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
