// Package editor orchestrates local edits, remote operations, styling and
// selection around a single document.
package editor

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/pkg/document"
	"github.com/yaklabco/gomdedit/pkg/imagecache"
	"github.com/yaklabco/gomdedit/pkg/mdast"
	"github.com/yaklabco/gomdedit/pkg/ot"
	"github.com/yaklabco/gomdedit/pkg/parser/goldmark"
	"github.com/yaklabco/gomdedit/pkg/rangemap"
	"github.com/yaklabco/gomdedit/pkg/sched"
	"github.com/yaklabco/gomdedit/pkg/selection"
	"github.com/yaklabco/gomdedit/pkg/style"
)

type state int

const (
	stateIdle state = iota
	stateEditing
)

// Controller owns a document and sequences every mutation of it. All methods
// must be called from the goroutine that drains the executor, or from tasks
// posted to it. Transport callbacks are the exception: they post onto the
// executor themselves.
type Controller struct {
	exec      sched.Executor
	parser    document.Parser
	transport Transport
	images    ImageFetcher
	theme     style.Theme
	logger    *log.Logger
	unit      ot.Unit
	debug     bool

	defaultTitle string
	imageSize    imagecache.Size
	imageScale   float64

	doc       *document.Document
	projector *style.Projector
	observers []Observer

	state          state
	pendingRefresh bool

	sel    mdast.Range
	hasSel bool

	connected bool
	trusted   bool
	seq       uint64

	requested   map[string]bool
	title       string
	annotations []Annotation
}

// New returns a controller with an empty document. Deferred work is posted
// to exec.
func New(exec sched.Executor, opts ...Option) *Controller {
	c := &Controller{
		exec:         exec,
		theme:        style.DefaultTheme(),
		logger:       logging.Default(),
		unit:         ot.UnitUTF16,
		defaultTitle: DefaultTitle,
		imageScale:   1,
		trusted:      true,
		requested:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.parser == nil {
		c.parser = goldmark.New(goldmark.FlavorGFM)
	}

	c.doc = document.New(c.parser)
	c.projector = style.NewProjector(c.theme)
	return c
}

// AddObserver registers o. The controller does not own o; call
// RemoveObserver before o goes away.
func (c *Controller) AddObserver(o Observer) {
	c.observers = append(c.observers, o)
}

// RemoveObserver unregisters o.
func (c *Controller) RemoveObserver(o Observer) {
	if i := slices.Index(c.observers, o); i >= 0 {
		c.observers = slices.Delete(c.observers, i, i+1)
	}
}

// Document returns the controlled document. Callers must not mutate it.
func (c *Controller) Document() *document.Document {
	return c.doc
}

// Text returns the backing string.
func (c *Controller) Text() string {
	return c.doc.Text()
}

// Presentation returns the presentation string.
func (c *Controller) Presentation() string {
	return c.doc.Presentation()
}

// Selection returns the current presentation selection.
func (c *Controller) Selection() (mdast.Range, bool) {
	return c.sel, c.hasSel
}

// Connected reports whether operations are being sent to a live session.
func (c *Controller) Connected() bool {
	return c.connected
}

// Trusted reports whether the document is known to match the remote one.
func (c *Controller) Trusted() bool {
	return c.trusted
}

// Seq returns the sequence number of the last applied remote operation.
func (c *Controller) Seq() uint64 {
	return c.seq
}

// Editing reports whether a mutation is in progress.
func (c *Controller) Editing() bool {
	return c.state == stateEditing
}

// SetText replaces the whole document locally, as if typed.
func (c *Controller) SetText(text string) error {
	return c.mutate("set text", func() error {
		return c.commitLocal(rewrite{Range: mdast.Range{End: c.doc.Len()}, Text: text, Caret: -1})
	})
}

// SetSelection sets the presentation selection. ok false clears it.
func (c *Controller) SetSelection(sel mdast.Range, ok bool) error {
	if ok && !sel.Valid(len(c.doc.Presentation())) {
		return &rangemap.RangeError{Range: sel, Bound: len(c.doc.Presentation()), Space: rangemap.Presentation}
	}
	c.sel, c.hasSel = sel, ok
	c.scheduleRefresh()
	return nil
}

// mutate runs fn as one batch. Nested calls fail with a StateError, which
// panics in debug mode. Every batch schedules one deferred refresh.
func (c *Controller) mutate(op string, fn func() error) error {
	if c.state == stateEditing {
		err := &StateError{Op: op}
		if c.debug {
			panic(err)
		}
		c.logger.Error("mutation rejected", logging.FieldOp, op, logging.FieldError, err)
		return err
	}

	c.state = stateEditing
	c.logger.Debug("batch begin", logging.FieldOp, op)
	err := fn()
	c.state = stateIdle
	c.logger.Debug("batch end", logging.FieldOp, op, logging.FieldBlocks, len(c.doc.Blocks()))

	c.scheduleRefresh()
	return err
}

// replace commits a backing replacement and re-derives the selection. caret,
// when not negative, places a collapsed selection at that backing offset.
func (c *Controller) replace(r mdast.Range, text string, caret int) error {
	selBacking, hadSel := c.backingSelection()

	if _, err := c.doc.Replace(r, text); err != nil {
		return fmt.Errorf("replace %s: %w", r, err)
	}

	if !hadSel {
		return nil
	}
	if caret >= 0 {
		selBacking = mdast.Range{Start: caret, End: caret}
	} else {
		selBacking = selection.Adjust(selBacking, r, len(text))
	}

	sel, err := c.doc.ToPresentation(selBacking)
	if err != nil {
		c.logger.Warn("selection lost", logging.FieldRange, selBacking, logging.FieldError, err)
		c.hasSel = false
		return nil
	}
	c.sel = sel
	return nil
}

// backingSelection maps the selection into backing space.
func (c *Controller) backingSelection() (mdast.Range, bool) {
	if !c.hasSel {
		return mdast.Range{}, false
	}
	r, err := c.doc.ToBacking(c.sel)
	if err != nil {
		return mdast.Range{}, false
	}
	return r, true
}

// scheduleRefresh posts a refresh unless one is already pending.
func (c *Controller) scheduleRefresh() {
	if c.pendingRefresh {
		return
	}
	c.pendingRefresh = true
	c.exec.Post(c.refresh)
}

// refresh recomputes styles and folds and notifies observers.
func (c *Controller) refresh() {
	c.pendingRefresh = false

	res := c.projector.Project(c.doc)
	folds := res.Folds
	if c.hasSel {
		folds = style.OpenFolds(folds, c.sel)
	}
	state := RenderState{
		Text:         c.doc.Presentation(),
		Styles:       res.Styles,
		Folds:        folds,
		Selection:    c.sel,
		HasSelection: c.hasSel,
	}

	c.requestImages()

	for _, o := range c.observers {
		o.Render(state)
	}
	for _, o := range c.observers {
		o.SelectionChanged(c.sel, c.hasSel)
	}

	if title := c.doc.Title(); title != c.title {
		c.title = title
		c.logger.Debug("title changed", logging.FieldTitle, title)
		for _, o := range c.observers {
			o.TitleChanged(title)
		}
	}

	if annotations := c.Annotations(); !slices.Equal(annotations, c.annotations) {
		c.annotations = annotations
		for _, o := range c.observers {
			o.AnnotationsChanged(annotations)
		}
	}
}

// requestImages starts fetches for image blocks not seen before. Completions
// patch the projector on the executor and schedule a refresh.
func (c *Controller) requestImages() {
	if c.images == nil {
		return
	}
	for i, block := range c.doc.Blocks() {
		url := block.Attrs.Destination
		if !block.Kind.Caps().Attachable || url == "" || c.requested[url] {
			continue
		}
		c.requested[url] = true

		id := fmt.Sprintf("block-%d", i)
		c.images.FetchImage(id, url, c.imageSize, c.imageScale, func(img imagecache.Image, err error) {
			c.exec.Post(func() {
				if err != nil {
					c.logger.Warn("image unavailable", logging.FieldURL, url, logging.FieldError, err)
					return
				}
				c.projector.PatchImage(url, style.Attributes{
					style.AttrContentID: img.ContentID,
					style.AttrMIME:      img.MIME,
					style.AttrWidth:     img.Display.Width,
					style.AttrHeight:    img.Display.Height,
				})
				c.scheduleRefresh()
			})
		})
	}
}

func (c *Controller) notifyConnection(ev ConnectionEvent) {
	for _, o := range c.observers {
		o.ConnectionChanged(ev)
	}
}
