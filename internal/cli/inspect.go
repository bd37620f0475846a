package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/internal/ui/pretty"
	"github.com/yaklabco/gomdedit/pkg/editor"
	goldmarkparser "github.com/yaklabco/gomdedit/pkg/parser/goldmark"
	"github.com/yaklabco/gomdedit/pkg/runner"
	"github.com/yaklabco/gomdedit/pkg/sched"
)

type inspectFlags struct {
	images  bool
	exclude []string
	jobs    int
}

func newInspectCommand(a *app) *cobra.Command {
	flags := &inspectFlags{}

	cmd := &cobra.Command{
		Use:   "inspect [paths...]",
		Short: "Show how a document's blocks map onto its presentation",
		Long: `Inspect one Markdown file in detail, or summarise many.

Given a single file, inspect prints the block table with backing and
presentation ranges, the syntax folds, and the annotations drawn beside list
and checklist items. Given directories or several files, it parses them in
parallel and prints one summary row per file.`,
		Example: `  gomdedit inspect notes.md
  gomdedit inspect --images notes.md
  gomdedit inspect docs/ --exclude "archive/**"`,
		Annotations: map[string]string{annotationDocumentArg: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if info, err := os.Stat(args[0]); err == nil && !info.IsDir() {
					return runInspectFile(cmd, a, args[0], flags)
				}
			}
			return runInspectTree(cmd, a, args, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.images, "images", false, "fetch image attachments and report their metadata")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil, "glob patterns to skip when walking directories")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 0, "number of parallel workers (0 = auto)")

	return cmd
}

func runInspectFile(cmd *cobra.Command, a *app, path string, flags *inspectFlags) error {
	text, _, err := readDocument(cmd, path)
	if err != nil {
		return err
	}

	exec := &sched.Manual{}
	ctrl, err := a.controller(exec)
	if err != nil {
		return err
	}
	view := &renderCapture{}
	ctrl.AddObserver(view)
	if err := ctrl.SetText(text); err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	exec.Drain()

	out := cmd.OutOrStdout()
	styles := a.styles(out)

	section(out, styles, "Blocks")
	fmt.Fprint(out, styles.FormatBlocks(pretty.BlockRows(ctrl.Document()), pretty.TerminalWidth(out)))
	if len(view.state.Folds) > 0 {
		section(out, styles, "Folds")
		fmt.Fprint(out, styles.FormatFolds(view.state.Folds, view.state.Text))
	}
	if len(view.annotations) > 0 {
		section(out, styles, "Annotations")
		fmt.Fprint(out, styles.FormatAnnotations(view.annotations))
	}

	if flags.images {
		rows := fetchImages(cmd.Context(), a, filepath.Dir(path), ctrl)
		if len(rows) > 0 {
			section(out, styles, "Images")
			fmt.Fprint(out, styles.FormatImages(rows))
		}
	}
	return nil
}

// fetchImages loads every attachment of the document concurrently.
func fetchImages(ctx context.Context, a *app, dir string, ctrl *editor.Controller) []pretty.ImageRow {
	var rows []pretty.ImageRow
	for _, block := range ctrl.Document().Blocks() {
		if block.Kind.Caps().Attachable && block.Attrs.Destination != "" {
			rows = append(rows, pretty.ImageRow{URL: block.Attrs.Destination})
		}
	}

	cache := a.imageCache()
	size, scale := a.imageSize(), a.cfg.Images.Scale
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Images.Timeout)
	defer cancel()

	var g errgroup.Group
	g.SetLimit(4)
	for i := range rows {
		g.Go(func() error {
			img, err := cache.Get(ctx, resolveImageURL(dir, rows[i].URL))
			if err != nil {
				rows[i].Err = err
				return nil
			}
			img.Display = img.Fit(size, scale)
			rows[i].Image = img
			return nil
		})
	}
	_ = g.Wait()
	return rows
}

func runInspectTree(cmd *cobra.Command, a *app, paths []string, flags *inspectFlags) error {
	logger := logging.FromContext(cmd.Context())

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	r := runner.New(goldmarkparser.New(string(a.cfg.Flavor)))
	result, err := r.Run(cmd.Context(), runner.Options{
		Paths:        paths,
		WorkingDir:   workDir,
		Extensions:   runner.DefaultExtensions(),
		ExcludeGlobs: flags.exclude,
		Jobs:         flags.jobs,
	})
	if err != nil {
		return err
	}
	logger.Debug("inspect run finished", "files", result.Stats.FilesProcessed, "errors", result.Stats.FilesErrored)

	out := cmd.OutOrStdout()
	fmt.Fprint(out, a.styles(out).FormatSummary(result, workDir))

	if result.Stats.FilesErrored > 0 {
		return ErrFilesFailed
	}
	return nil
}

func section(w io.Writer, styles *pretty.Styles, title string) {
	fmt.Fprintln(w, styles.Bold.Render(title))
}
