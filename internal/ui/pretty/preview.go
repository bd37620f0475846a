package pretty

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/gomdedit/pkg/editor"
	"github.com/yaklabco/gomdedit/pkg/mdast"
	"github.com/yaklabco/gomdedit/pkg/style"
)

// PreviewOptions controls RenderPreview.
type PreviewOptions struct {
	// Width wraps the output when positive.
	Width int

	// HideClosedFolds drops delimiter text of folds that are not open.
	HideClosedFolds bool

	// Annotations are drawn at the start of their block's first line.
	Annotations []editor.Annotation
}

// RenderPreview draws a render state as styled terminal text.
func (s *Styles) RenderPreview(state editor.RenderState, opts PreviewOptions) string {
	text := state.Text

	var hidden []mdast.Range
	if opts.HideClosedFolds {
		for _, fold := range state.Folds {
			if !fold.Open && !fold.Range.IsEmpty() {
				hidden = append(hidden, fold.Range)
			}
		}
	}

	markers := make(map[int]string, len(opts.Annotations))
	for _, a := range opts.Annotations {
		markers[a.Range.Start] = s.marker(a)
	}

	var out strings.Builder
	bounds := boundaries(text, state, hidden)
	lineStart := true
	for i := 0; i+1 < len(bounds); i++ {
		start, end := bounds[i], bounds[i+1]
		if lineStart {
			if marker, ok := markers[start]; ok {
				out.WriteString(marker)
			}
			lineStart = false
		}
		if text[start] == '\n' {
			out.WriteByte('\n')
			lineStart = true
			continue
		}
		if covered(hidden, start, end) {
			continue
		}

		segment := text[start:end]
		attrs := attributesAt(state.Styles, start, end)
		if strings.Contains(segment, mdast.ObjectReplacement) {
			segment = strings.ReplaceAll(segment, mdast.ObjectReplacement, attachmentLabel(attrs))
		}
		rendered := s.spanStyle(attrs).Render(segment)
		if state.HasSelection && state.Selection.Start <= start && end <= state.Selection.End && !state.Selection.IsEmpty() {
			rendered = s.Selection.Render(rendered)
		}
		out.WriteString(rendered)
	}
	if lineStart {
		if marker, ok := markers[len(text)]; ok {
			out.WriteString(marker)
		}
	}

	if opts.Width > 0 {
		return lipgloss.NewStyle().Width(opts.Width).Render(out.String())
	}
	return out.String()
}

// boundaries returns the sorted offsets where styling may change. Every
// newline is its own segment.
func boundaries(text string, state editor.RenderState, hidden []mdast.Range) []int {
	bounds := []int{0, len(text)}
	for i := range len(text) {
		if text[i] == '\n' {
			bounds = append(bounds, i, i+1)
		}
	}
	for _, st := range state.Styles {
		bounds = append(bounds, st.Range.Start, st.Range.End)
	}
	for _, r := range hidden {
		bounds = append(bounds, r.Start, r.End)
	}
	if state.HasSelection {
		bounds = append(bounds, state.Selection.Start, state.Selection.End)
	}

	slices.Sort(bounds)
	bounds = slices.Compact(bounds)
	return slices.DeleteFunc(bounds, func(b int) bool { return b < 0 || b > len(text) })
}

func covered(ranges []mdast.Range, start, end int) bool {
	for _, r := range ranges {
		if r.Start <= start && end <= r.End {
			return true
		}
	}
	return false
}

// attributesAt merges the attributes of every style covering [start, end).
// Later styles win.
func attributesAt(styles []style.Style, start, end int) style.Attributes {
	attrs := style.Attributes{}
	for _, st := range styles {
		if st.Range.Start <= start && end <= st.Range.End {
			attrs = attrs.Merge(st.Attrs)
		}
	}
	return attrs
}

func (s *Styles) spanStyle(attrs style.Attributes) lipgloss.Style {
	st := lipgloss.NewStyle()
	if !s.colorEnabled {
		return st
	}
	if isSet(attrs, style.AttrBold) || attrs[style.AttrHeading] != nil {
		st = st.Bold(true)
	}
	if isSet(attrs, style.AttrItalic) {
		st = st.Italic(true)
	}
	if isSet(attrs, style.AttrStrikethrough) {
		st = st.Strikethrough(true)
	}
	if isSet(attrs, style.AttrUnderline) {
		st = st.Underline(true)
	}
	if isSet(attrs, style.AttrMuted) {
		st = st.Faint(true)
	}
	if color, ok := attrs[style.AttrColor].(string); ok && color != "" {
		st = st.Foreground(lipgloss.Color(color))
	}
	return st
}

func isSet(attrs style.Attributes, key string) bool {
	v, ok := attrs[key].(bool)
	return ok && v
}

func attachmentLabel(attrs style.Attributes) string {
	w, wok := number(attrs[style.AttrWidth])
	h, hok := number(attrs[style.AttrHeight])
	if wok && hok {
		return fmt.Sprintf("[image %gx%g]", w, h)
	}
	return "[image]"
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// marker renders the decoration for one annotation, indented by depth.
func (s *Styles) marker(a editor.Annotation) string {
	indent := strings.Repeat("  ", a.Depth)
	switch a.Kind {
	case mdast.NodeChecklistItem:
		box := "[ ] "
		if a.Checked {
			box = "[x] "
		}
		return indent + s.Annotation.Render(box)
	case mdast.NodeListItem:
		if a.Ordinal > 0 {
			return indent + s.Annotation.Render(strconv.Itoa(a.Ordinal)+". ")
		}
		return indent + s.Annotation.Render("• ")
	case mdast.NodeHorizontalRule:
		return s.Rule.Render("────────")
	default:
		return ""
	}
}
