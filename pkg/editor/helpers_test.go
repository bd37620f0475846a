package editor_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdedit/pkg/editor"
	"github.com/yaklabco/gomdedit/pkg/imagecache"
	"github.com/yaklabco/gomdedit/pkg/mdast"
	"github.com/yaklabco/gomdedit/pkg/ot"
	"github.com/yaklabco/gomdedit/pkg/sched"
)

type fakeTransport struct {
	handler     editor.TransportHandler
	ops         []ot.Operation
	disconnects []string
}

func (f *fakeTransport) Connect(_ context.Context, handler editor.TransportHandler) error {
	f.handler = handler
	return nil
}

func (f *fakeTransport) Disconnect(reason string) error {
	f.disconnects = append(f.disconnects, reason)
	return nil
}

func (f *fakeTransport) Submit(op ot.Operation) error {
	f.ops = append(f.ops, op)
	return nil
}

type recorder struct {
	editor.BaseObserver

	renders     []editor.RenderState
	selections  []mdast.Range
	titles      []string
	annotations [][]editor.Annotation
	connection  []editor.ConnectionEvent
	log         []string

	onWillApply func()
}

func (r *recorder) RemoteEditWillApply() {
	r.log = append(r.log, "will")
	if r.onWillApply != nil {
		r.onWillApply()
	}
}

func (r *recorder) RemoteEditDidApply() {
	r.log = append(r.log, "did")
}

func (r *recorder) Render(state editor.RenderState) {
	r.renders = append(r.renders, state)
}

func (r *recorder) SelectionChanged(sel mdast.Range, ok bool) {
	if ok {
		r.selections = append(r.selections, sel)
	}
}

func (r *recorder) TitleChanged(title string) {
	r.titles = append(r.titles, title)
}

func (r *recorder) AnnotationsChanged(annotations []editor.Annotation) {
	r.annotations = append(r.annotations, annotations)
}

func (r *recorder) ConnectionChanged(ev editor.ConnectionEvent) {
	r.connection = append(r.connection, ev)
}

type fakeFetcher struct {
	requests []string
}

func (f *fakeFetcher) FetchImage(_, url string, size imagecache.Size, _ float64, completion func(imagecache.Image, error)) {
	f.requests = append(f.requests, url)
	completion(imagecache.Image{ContentID: "cid-" + url, MIME: "image/png", Display: size}, nil)
}

type lineLayout struct{}

func (lineLayout) LineOffset(loc int) float64 {
	return float64(loc) * 10
}

type fixture struct {
	exec      *sched.Manual
	transport *fakeTransport
	rec       *recorder
	logs      *bytes.Buffer
	ctrl      *editor.Controller
}

func newFixture(t *testing.T, opts ...editor.Option) *fixture {
	t.Helper()

	f := &fixture{
		exec:      &sched.Manual{},
		transport: &fakeTransport{},
		rec:       &recorder{},
		logs:      &bytes.Buffer{},
	}
	logger := log.New(f.logs)
	logger.SetLevel(log.WarnLevel)

	opts = append([]editor.Option{editor.WithTransport(f.transport), editor.WithLogger(logger)}, opts...)
	f.ctrl = editor.New(f.exec, opts...)
	f.ctrl.AddObserver(f.rec)
	require.NoError(t, f.ctrl.Connect(context.Background()))
	return f
}

// offline returns a controller with no transport, holding text.
func offline(t *testing.T, text string) (*editor.Controller, *sched.Manual) {
	t.Helper()

	exec := &sched.Manual{}
	ctrl := editor.New(exec, editor.WithLogger(log.New(io.Discard)))
	require.NoError(t, ctrl.SetText(text))
	exec.Drain()
	return ctrl, exec
}

// live connects the fixture with a snapshot of text.
func (f *fixture) live(t *testing.T, text string) {
	t.Helper()
	require.NoError(t, f.ctrl.ApplySnapshot(ot.Snapshot{Text: text}))
	f.exec.Drain()
}

func caret(n int) mdast.Range {
	return mdast.Range{Start: n, End: n}
}
