package widget

import "github.com/mailpane/mailpane/internal/model"

// State is the widget's user-visible list state. Exactly one state is
// shown at a time.
type State int

const (
	// StateLoading is the first-paint placeholder before any data.
	StateLoading State = iota

	// StateOK is a populated list.
	StateOK

	// StateEmpty is the "no new messages" placeholder.
	StateEmpty

	// StateRetrying is the placeholder after a tick-level fetch
	// failure; the pipeline stays live.
	StateRetrying

	// StateUnavailable is the terminal placeholder after a
	// pipeline-level failure; only Destroy/re-Mount recovers.
	StateUnavailable
)

// String returns the state's label.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateOK:
		return "ok"
	case StateEmpty:
		return "empty"
	case StateRetrying:
		return "retrying"
	case StateUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Item is one rendered message with its diff classification.
type Item struct {
	Message model.Message

	// New marks messages that were not in the previously rendered set.
	// Never set on the widget's very first render.
	New bool
}

// Snapshot describes the widget after one applied tick. Items are in
// visual order (list head first).
type Snapshot struct {
	State State
	Items []Item
	Count int
}

// Snapshots returns the observer stream. A snapshot is emitted after
// every applied tick; slow consumers lose old snapshots, never block
// the pipeline. The channel is closed immediately for inert widgets.
func (w *Widget) Snapshots() <-chan Snapshot {
	return w.snapshots
}

// emit delivers a snapshot without ever blocking the pipeline: when the
// buffer is full the oldest snapshot is dropped first.
func (w *Widget) emit(s Snapshot) {
	if !w.Mounted() {
		return
	}
	select {
	case w.snapshots <- s:
		return
	default:
	}
	select {
	case <-w.snapshots:
	default:
	}
	select {
	case w.snapshots <- s:
	default:
	}
}
