package testutil

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/roach88/listsync/internal/notify"
)

// ViewCall is one recorded view invocation.
type ViewCall struct {
	// Method is "insert", "reload", "delete", "move" or "reload_data".
	Method    string
	Paths     []notify.IndexPath
	From      notify.IndexPath
	To        notify.IndexPath
	Animation notify.Animation
	At        time.Time
}

// String renders the call compactly, e.g. "insert 0:1" or "move 0:0->0:2".
func (c ViewCall) String() string {
	switch c.Method {
	case "move":
		return fmt.Sprintf("move %s->%s", c.From, c.To)
	case "reload_data":
		return "reload_data"
	default:
		parts := make([]string, len(c.Paths))
		for i, p := range c.Paths {
			parts[i] = p.String()
		}
		return c.Method + " " + strings.Join(parts, ",")
	}
}

// RecordingView is a notify.View that records every call with a timestamp.
//
// Thread-safety: safe for concurrent use; tests read it while the engine
// writes it.
type RecordingView struct {
	mu    sync.Mutex
	calls []ViewCall
	now   func() time.Time
}

// NewRecordingView creates an empty recording view.
func NewRecordingView() *RecordingView {
	return &RecordingView{now: time.Now}
}

func (v *RecordingView) add(c ViewCall) {
	v.mu.Lock()
	defer v.mu.Unlock()
	c.At = v.now()
	v.calls = append(v.calls, c)
}

// InsertItems implements notify.View.
func (v *RecordingView) InsertItems(paths []notify.IndexPath, anim notify.Animation) {
	v.add(ViewCall{Method: "insert", Paths: paths, Animation: anim})
}

// ReloadItems implements notify.View.
func (v *RecordingView) ReloadItems(paths []notify.IndexPath, anim notify.Animation) {
	v.add(ViewCall{Method: "reload", Paths: paths, Animation: anim})
}

// DeleteItems implements notify.View.
func (v *RecordingView) DeleteItems(paths []notify.IndexPath, anim notify.Animation) {
	v.add(ViewCall{Method: "delete", Paths: paths, Animation: anim})
}

// MoveItem implements notify.View.
func (v *RecordingView) MoveItem(from, to notify.IndexPath) {
	v.add(ViewCall{Method: "move", From: from, To: to})
}

// ReloadData implements notify.View.
func (v *RecordingView) ReloadData() {
	v.add(ViewCall{Method: "reload_data"})
}

// Calls returns a copy of the recorded calls.
func (v *RecordingView) Calls() []ViewCall {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]ViewCall(nil), v.calls...)
}

// Strings returns the recorded calls rendered with ViewCall.String.
func (v *RecordingView) Strings() []string {
	calls := v.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

// Len returns the number of recorded calls.
func (v *RecordingView) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.calls)
}

// Reset forgets all recorded calls.
func (v *RecordingView) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls = nil
}

// RecordingDelegate is a notify.Delegate that keeps every event.
type RecordingDelegate struct {
	mu     sync.Mutex
	events []notify.Event
}

// HandleEvent implements notify.Delegate.
func (d *RecordingDelegate) HandleEvent(ev notify.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
}

// Events returns a copy of the recorded events.
func (d *RecordingDelegate) Events() []notify.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]notify.Event(nil), d.events...)
}

// Strings returns the recorded events rendered with Event.String.
func (d *RecordingDelegate) Strings() []string {
	events := d.Events()
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.String()
	}
	return out
}
