package notify

import (
	"sync"

	"github.com/roach88/listsync/internal/collection"
)

// Notifier fans store changes out to the attached sinks for one section.
//
// Sinks are held without ownership: SetView(nil) / SetDelegate(nil) detach
// them and Notify skips whichever is absent. Attaching and detaching is safe
// from any goroutine; Notify is expected to run on the notification context.
type Notifier struct {
	section   int
	animation Animation

	mu       sync.RWMutex
	view     View
	delegate Delegate
}

// NewNotifier creates a notifier scoped to section. An empty animation
// defaults to AnimationNone.
func NewNotifier(section int, animation Animation) *Notifier {
	if animation == "" {
		animation = AnimationNone
	}
	return &Notifier{section: section, animation: animation}
}

// Section returns the section identifier used for every index path.
func (n *Notifier) Section() int {
	return n.section
}

// Animation returns the animation token passed to the view.
func (n *Notifier) Animation() Animation {
	return n.animation
}

// SetView attaches v, replacing any previous view. nil detaches.
func (n *Notifier) SetView(v View) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.view = v
}

// View returns the attached view, or nil.
func (n *Notifier) View() View {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.view
}

// SetDelegate attaches d, replacing any previous delegate. nil detaches.
func (n *Notifier) SetDelegate(d Delegate) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.delegate = d
}

// Delegate returns the attached delegate, or nil.
func (n *Notifier) Delegate() Delegate {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.delegate
}

// Translate converts a change into its section-scoped event.
func (n *Notifier) Translate(origin Origin, c collection.Change) Event {
	ev := Event{
		Origin:    origin,
		Kind:      c.Kind,
		Section:   n.section,
		Animation: n.animation,
	}
	switch c.Kind {
	case collection.ChangeMove:
		ev.From = IndexPath{Section: n.section, Item: c.From}
		ev.To = IndexPath{Section: n.section, Item: c.To}
	case collection.ChangeInsert, collection.ChangeUpdate, collection.ChangeRemove:
		ev.Paths = IndexPaths(n.section, c.Indexes)
	}
	return ev
}

// Notify delivers c to the view and then the delegate. It returns the event
// and true, or false when the change has no visible effect.
func (n *Notifier) Notify(origin Origin, c collection.Change) (Event, bool) {
	if c.IsNone() {
		return Event{}, false
	}

	ev := n.Translate(origin, c)

	n.mu.RLock()
	view, delegate := n.view, n.delegate
	n.mu.RUnlock()

	if view != nil {
		applyToView(view, ev)
	}
	if delegate != nil {
		delegate.HandleEvent(ev)
	}
	return ev, true
}

// ReloadView sends a full reload to v alone. Used when a view is attached so
// it picks up the current contents.
func (n *Notifier) ReloadView(v View) {
	if v != nil {
		v.ReloadData()
	}
}

func applyToView(v View, ev Event) {
	switch ev.Kind {
	case collection.ChangeReload:
		v.ReloadData()
	case collection.ChangeInsert:
		v.InsertItems(ev.Paths, ev.Animation)
	case collection.ChangeUpdate:
		v.ReloadItems(ev.Paths, ev.Animation)
	case collection.ChangeRemove:
		v.DeleteItems(ev.Paths, ev.Animation)
	case collection.ChangeMove:
		v.MoveItem(ev.From, ev.To)
	}
}
