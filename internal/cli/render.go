package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdedit/internal/ui/pretty"
	"github.com/yaklabco/gomdedit/pkg/editor"
	"github.com/yaklabco/gomdedit/pkg/mdast"
	"github.com/yaklabco/gomdedit/pkg/sched"
)

type renderFlags struct {
	width      int
	showSyntax bool
	images     bool
	cursor     int
}

func newRenderCommand(a *app) *cobra.Command {
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a Markdown document as the editor presents it",
		Long: `Render a Markdown document the way the editor presents it: hidden
markers are drawn as bullets, numbers and check boxes, syntax delimiters are
hidden unless the cursor touches them, and images become attachments.

Reads standard input when no file is given or the file is "-".`,
		Example: `  gomdedit render README.md
  gomdedit render --show-syntax notes.md
  gomdedit render --cursor 12 notes.md
  cat notes.md | gomdedit render --width 60`,
		Annotations: map[string]string{annotationDocumentArg: "true"},
		Args:        cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			return runRender(cmd, a, path, flags)
		},
	}

	cmd.Flags().IntVarP(&flags.width, "width", "w", 0, "wrap output at this width (0 disables wrapping)")
	cmd.Flags().BoolVar(&flags.showSyntax, "show-syntax", false, "show folded syntax delimiters")
	cmd.Flags().BoolVar(&flags.images, "images", false, "load image attachments to report their size")
	cmd.Flags().IntVar(&flags.cursor, "cursor", -1, "place the cursor at this presentation offset")

	return cmd
}

func runRender(cmd *cobra.Command, a *app, path string, flags *renderFlags) error {
	if flags.width < 0 {
		return fmt.Errorf("%w: width must not be negative", ErrUsage)
	}

	text, _, err := readDocument(cmd, path)
	if err != nil {
		return err
	}

	var opts []editor.Option
	if flags.images {
		dir := ""
		if path != "" && path != "-" {
			dir = filepath.Dir(path)
		}
		fetcher := blockingFetcher{ctx: cmd.Context(), cache: a.imageCache(), dir: dir}
		opts = append(opts, editor.WithImageFetcher(fetcher, a.imageSize(), a.cfg.Images.Scale))
	}

	exec := &sched.Manual{}
	ctrl, err := a.controller(exec, opts...)
	if err != nil {
		return err
	}
	view := &renderCapture{}
	ctrl.AddObserver(view)

	if err := ctrl.SetText(text); err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if flags.cursor >= 0 {
		if err := ctrl.SetSelection(mdast.Range{Start: flags.cursor, End: flags.cursor}, true); err != nil {
			return fmt.Errorf("%w: cursor: %w", ErrUsage, err)
		}
	}
	exec.Drain()

	out := cmd.OutOrStdout()
	preview := a.styles(out).RenderPreview(view.state, pretty.PreviewOptions{
		Width:           flags.width,
		HideClosedFolds: !flags.showSyntax,
		Annotations:     view.annotations,
	})
	_, err = fmt.Fprint(out, preview)
	return err
}

// renderCapture keeps the most recent render state and annotations.
type renderCapture struct {
	editor.BaseObserver

	state       editor.RenderState
	annotations []editor.Annotation
	title       string
	renders     int
}

func (r *renderCapture) Render(state editor.RenderState) {
	r.state = state
	r.renders++
}

func (r *renderCapture) AnnotationsChanged(annotations []editor.Annotation) {
	r.annotations = annotations
}

func (r *renderCapture) TitleChanged(title string) {
	r.title = title
}
