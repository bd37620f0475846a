// Package runner parses many markdown files concurrently and summarises their
// block structure.
package runner

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/gomdedit/pkg/document"
	"github.com/yaklabco/gomdedit/pkg/fsutil"
	"github.com/yaklabco/gomdedit/pkg/langdetect"
	"github.com/yaklabco/gomdedit/pkg/mdast"
)

// Options controls a run.
type Options struct {
	// Paths are files or directories to process. Defaults to ".".
	Paths []string

	// WorkingDir resolves relative Paths. Defaults to the process working directory.
	WorkingDir string

	// Extensions are lowercase file extensions with a leading dot.
	Extensions []string

	// ExcludeGlobs skip matching files and directories. A trailing "/**"
	// excludes a whole directory.
	ExcludeGlobs []string

	// Jobs caps concurrent workers; 0 means runtime.NumCPU().
	Jobs int
}

// FileOutcome summarises one file.
type FileOutcome struct {
	Path  string
	Title string

	// Blocks counts top-level blocks by kind.
	Blocks map[mdast.NodeKind]int

	// Tasks and TasksDone count checklist items.
	Tasks     int
	TasksDone int

	// Images lists attachment destinations in document order.
	Images []string

	// Languages lists code block languages in document order.
	Languages []string

	// Error is set if the file could not be read.
	Error error
}

// Stats aggregates a run.
type Stats struct {
	FilesProcessed int
	FilesErrored   int
	Blocks         map[mdast.NodeKind]int
	Tasks          int
	TasksDone      int
	Images         int
}

// Result is the outcome of a run, with files in path order.
type Result struct {
	Files []FileOutcome
	Stats Stats
}

// Runner parses files with a document parser.
type Runner struct {
	parser document.Parser
}

// New returns a runner that parses with parser.
func New(parser document.Parser) *Runner {
	return &Runner{parser: parser}
}

// Run discovers files and summarises them concurrently. Per-file errors are
// recorded in the outcome; only discovery failures and cancellation fail the run.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	outcomes := make([]FileOutcome, len(files))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(jobs)
	for i, path := range files {
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = r.process(gctx, path)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("run cancelled: %w", err)
	}

	result := &Result{Files: outcomes, Stats: Stats{Blocks: make(map[mdast.NodeKind]int)}}
	for _, outcome := range outcomes {
		result.Stats.accumulate(outcome)
	}
	return result, nil
}

func (r *Runner) process(ctx context.Context, path string) FileOutcome {
	outcome := FileOutcome{Path: path}

	content, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		outcome.Error = err
		return outcome
	}

	doc := document.New(r.parser)
	if _, err := doc.SetText(string(content)); err != nil {
		outcome.Error = fmt.Errorf("parse %s: %w", path, err)
		return outcome
	}

	return Summarize(path, doc)
}

// Summarize builds the outcome for an already parsed document.
func Summarize(path string, doc *document.Document) FileOutcome {
	outcome := FileOutcome{
		Path:   path,
		Title:  doc.Title(),
		Blocks: make(map[mdast.NodeKind]int),
	}
	for _, block := range doc.Blocks() {
		outcome.Blocks[block.Kind]++
		switch block.Kind {
		case mdast.NodeChecklistItem:
			outcome.Tasks++
			if block.Attrs.Checked {
				outcome.TasksDone++
			}
		case mdast.NodeImage:
			outcome.Images = append(outcome.Images, block.Attrs.Destination)
		case mdast.NodeCodeBlock:
			outcome.Languages = append(outcome.Languages, langdetect.FenceLanguage(block.Attrs.Info, block.VisibleText(block.Source)))
		}
	}
	return outcome
}

func (s *Stats) accumulate(outcome FileOutcome) {
	if outcome.Error != nil {
		s.FilesErrored++
		return
	}
	s.FilesProcessed++
	for kind, n := range outcome.Blocks {
		s.Blocks[kind] += n
	}
	s.Tasks += outcome.Tasks
	s.TasksDone += outcome.TasksDone
	s.Images += len(outcome.Images)
}
