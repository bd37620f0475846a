package editor_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdedit/pkg/editor"
	"github.com/yaklabco/gomdedit/pkg/imagecache"
	"github.com/yaklabco/gomdedit/pkg/mdast"
	"github.com/yaklabco/gomdedit/pkg/ot"
	"github.com/yaklabco/gomdedit/pkg/style"
)

func TestRefresh_CoalescesBatches(t *testing.T) {
	f := newFixture(t)
	f.live(t, "abc")
	f.rec.renders = nil

	require.NoError(t, f.ctrl.Edit(caret(3), "d"))
	require.NoError(t, f.ctrl.Edit(caret(4), "e"))
	require.NoError(t, f.ctrl.ApplyRemote(ot.NewInsert(0, "_")))
	assert.Equal(t, 1, f.exec.Pending())

	f.exec.Drain()

	require.Len(t, f.rec.renders, 1)
	assert.Equal(t, "_abcde", f.rec.renders[0].Text)

	require.NoError(t, f.ctrl.Edit(caret(0), "x"))
	f.exec.Drain()
	assert.Len(t, f.rec.renders, 2, "a later batch gets its own refresh")
}

func TestRefresh_PublishesSelectionAndOpenFolds(t *testing.T) {
	f := newFixture(t)
	f.live(t, "a **b** c")
	require.NoError(t, f.ctrl.SetSelection(caret(4), true))
	f.exec.Drain()

	state := f.rec.renders[len(f.rec.renders)-1]
	require.True(t, state.HasSelection)
	assert.Equal(t, caret(4), state.Selection)
	require.Len(t, state.Folds, 2)
	assert.True(t, state.Folds[0].Open)
	assert.Equal(t, caret(4), f.rec.selections[len(f.rec.selections)-1])

	require.NoError(t, f.ctrl.SetSelection(caret(0), true))
	f.exec.Drain()

	state = f.rec.renders[len(f.rec.renders)-1]
	assert.False(t, state.Folds[0].Open)
}

func TestReentrantMutation(t *testing.T) {
	f := newFixture(t)
	f.live(t, "abc")

	var inner error
	f.rec.onWillApply = func() {
		inner = f.ctrl.Edit(caret(0), "nested")
	}
	require.NoError(t, f.ctrl.ApplyRemote(ot.NewInsert(3, "d")))

	var stateErr *editor.StateError
	require.True(t, errors.As(inner, &stateErr))
	assert.Equal(t, "edit", stateErr.Op)
	assert.Equal(t, "abcd", f.ctrl.Text(), "the outer mutation completes untouched")
	assert.True(t, f.ctrl.Trusted())
}

func TestReentrantMutation_PanicsInDebug(t *testing.T) {
	f := newFixture(t, editor.WithDebug(true))
	f.live(t, "abc")

	f.rec.onWillApply = func() {
		_ = f.ctrl.Edit(caret(0), "nested")
	}

	assert.Panics(t, func() {
		_ = f.ctrl.ApplyRemote(ot.NewInsert(3, "d"))
	})
}

func TestObservers(t *testing.T) {
	f := newFixture(t)
	extra := &recorder{}
	f.ctrl.AddObserver(extra)

	f.live(t, "# One\n")
	assert.Equal(t, []string{"One"}, extra.titles)

	f.ctrl.RemoveObserver(extra)
	require.NoError(t, f.ctrl.Edit(caret(3), " Two"))
	f.exec.Drain()

	assert.Equal(t, "# One Two\n", f.ctrl.Text())
	assert.Equal(t, []string{"One"}, extra.titles)
	assert.Equal(t, []string{"One", "One Two"}, f.rec.titles)
}

func TestAnnotations(t *testing.T) {
	f := newFixture(t)
	f.live(t, "- a\n    - [x] b\n2. c\n---\n")

	annotations := f.ctrl.Annotations()
	require.Len(t, annotations, 4)

	assert.Equal(t, editor.Annotation{BlockIndex: 0, Kind: mdast.NodeListItem, Range: mdast.Range{Start: 0, End: 1}}, annotations[0])
	assert.Equal(t, editor.Annotation{
		BlockIndex: 1, Kind: mdast.NodeChecklistItem, Range: mdast.Range{Start: 2, End: 3}, Checked: true, Depth: 2,
	}, annotations[1])
	assert.Equal(t, 2, annotations[2].Ordinal)
	assert.Equal(t, mdast.NodeHorizontalRule, annotations[3].Kind)

	require.Len(t, f.rec.annotations, 1)

	frames := f.ctrl.AnnotationFrames(lineLayout{})
	require.Len(t, frames, 4)
	assert.InDelta(t, 20.0, frames[1].Y, 0.001)

	require.NoError(t, f.ctrl.ToggleChecklist(1))
	f.exec.Drain()
	require.Len(t, f.rec.annotations, 2)
	assert.False(t, f.rec.annotations[1][1].Checked)
}

func TestImagesArePatchedAsynchronously(t *testing.T) {
	fetcher := &fakeFetcher{}
	f := newFixture(t, editor.WithImageFetcher(fetcher, imagecache.Size{Width: 64, Height: 32}, 2))
	f.live(t, "text\n![a](pic.png)\n")

	assert.Equal(t, []string{"pic.png"}, fetcher.requests)
	last := f.rec.renders[len(f.rec.renders)-1]

	var patched style.Style
	for _, s := range last.Styles {
		if s.Attrs[style.AttrContentID] != nil {
			patched = s
		}
	}
	assert.Equal(t, "cid-pic.png", patched.Attrs[style.AttrContentID])
	assert.Equal(t, mdast.NewRange(5, len(mdast.ObjectReplacement)), patched.Range)
	assert.InDelta(t, 64.0, patched.Attrs[style.AttrWidth], 0.001)

	require.NoError(t, f.ctrl.Edit(caret(0), "more "))
	f.exec.Drain()
	assert.Len(t, fetcher.requests, 1, "each image is fetched once")
}
