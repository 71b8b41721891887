package notify

import (
	"fmt"
	"strings"

	"github.com/roach88/listsync/internal/collection"
)

// Animation is an opaque style token passed through to the view.
type Animation string

// Row animation tokens understood by typical list widgets.
const (
	AnimationNone      Animation = "none"
	AnimationFade      Animation = "fade"
	AnimationRight     Animation = "right"
	AnimationLeft      Animation = "left"
	AnimationTop       Animation = "top"
	AnimationBottom    Animation = "bottom"
	AnimationMiddle    Animation = "middle"
	AnimationAutomatic Animation = "automatic"
)

// View is the visual sink. Implementations apply each call to their own
// state without further validation.
type View interface {
	InsertItems(paths []IndexPath, anim Animation)
	ReloadItems(paths []IndexPath, anim Animation)
	DeleteItems(paths []IndexPath, anim Animation)
	MoveItem(from, to IndexPath)
	ReloadData()
}

// Origin identifies the mutation that produced an event.
type Origin struct {
	MutationID string `json:"mutation_id,omitempty"`
	Seq        int64  `json:"seq"`
	Op         string `json:"op"`
}

// Event is the delegate-facing form of one notification.
type Event struct {
	Origin    Origin                `json:"origin"`
	Kind      collection.ChangeKind `json:"kind"`
	Section   int                   `json:"section"`
	Paths     []IndexPath           `json:"paths,omitempty"`
	From      IndexPath             `json:"from"`
	To        IndexPath             `json:"to"`
	Animation Animation             `json:"animation"`
}

// String renders a compact, stable description, e.g. "insert [0:1]" or
// "move 0:0 -> 0:2".
func (e Event) String() string {
	switch e.Kind {
	case collection.ChangeMove:
		return fmt.Sprintf("move %s -> %s", e.From, e.To)
	case collection.ChangeReload:
		return fmt.Sprintf("reload section %d", e.Section)
	default:
		parts := make([]string, len(e.Paths))
		for i, p := range e.Paths {
			parts[i] = p.String()
		}
		return fmt.Sprintf("%s [%s]", e.Kind, strings.Join(parts, " "))
	}
}

// Delegate receives every notification as an Event.
type Delegate interface {
	HandleEvent(Event)
}

// DelegateFunc adapts a function to the Delegate interface.
type DelegateFunc func(Event)

// HandleEvent calls f(ev).
func (f DelegateFunc) HandleEvent(ev Event) {
	f(ev)
}

// Fanout returns a Delegate forwarding each event to every non-nil
// delegate in order.
func Fanout(delegates ...Delegate) Delegate {
	var live []Delegate
	for _, d := range delegates {
		if d != nil {
			live = append(live, d)
		}
	}
	return DelegateFunc(func(ev Event) {
		for _, d := range live {
			d.HandleEvent(ev)
		}
	})
}
