package editor

import (
	"github.com/yaklabco/gomdedit/pkg/mdast"
	"github.com/yaklabco/gomdedit/pkg/style"
)

// RenderState is everything a renderer needs to draw the document.
type RenderState struct {
	// Text is the presentation string.
	Text string

	// Styles and Folds are in presentation space.
	Styles []style.Style
	Folds  []style.Fold

	// Selection is valid when HasSelection is true.
	Selection    mdast.Range
	HasSelection bool
}

// ConnectionState classifies a ConnectionEvent.
type ConnectionState int

const (
	// Connected means a snapshot was applied and operations flow.
	Connected ConnectionState = iota

	// Disconnected means the session ended.
	Disconnected

	// ConnectionError means the transport reported a problem.
	ConnectionError
)

func (s ConnectionState) String() string {
	switch s {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	case ConnectionError:
		return "error"
	default:
		return "unknown"
	}
}

// ConnectionEvent describes a change in the transport session. Line and Column
// are zero when the transport gave no position.
type ConnectionEvent struct {
	State   ConnectionState
	Message string
	Line    int
	Column  int
}

// Observer receives controller notifications. All methods run on the
// controller's executor.
type Observer interface {
	// RemoteEditWillApply and RemoteEditDidApply bracket every remote
	// mutation. They run inside the batch, so they must not mutate.
	RemoteEditWillApply()
	RemoteEditDidApply()

	// Render delivers the state after a batch of mutations.
	Render(state RenderState)

	// SelectionChanged publishes the selection after a batch.
	SelectionChanged(sel mdast.Range, ok bool)

	// TitleChanged reports a new document title.
	TitleChanged(title string)

	// AnnotationsChanged reports a new set of annotations.
	AnnotationsChanged(annotations []Annotation)

	// ConnectionChanged reports transport session changes.
	ConnectionChanged(event ConnectionEvent)
}

// BaseObserver implements Observer with no-ops. Embed it to implement only
// the notifications you need.
type BaseObserver struct{}

func (BaseObserver) RemoteEditWillApply()               {}
func (BaseObserver) RemoteEditDidApply()                {}
func (BaseObserver) Render(RenderState)                 {}
func (BaseObserver) SelectionChanged(mdast.Range, bool) {}
func (BaseObserver) TitleChanged(string)                {}
func (BaseObserver) AnnotationsChanged([]Annotation)    {}
func (BaseObserver) ConnectionChanged(ConnectionEvent)  {}
