package notify

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/listsync/internal/collection"
)

// fakeView records view calls as strings.
type fakeView struct {
	mu    sync.Mutex
	calls []string
}

func (v *fakeView) record(format string, args ...any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls = append(v.calls, fmt.Sprintf(format, args...))
}

func (v *fakeView) InsertItems(paths []IndexPath, anim Animation) {
	v.record("insert %v %s", paths, anim)
}

func (v *fakeView) ReloadItems(paths []IndexPath, anim Animation) {
	v.record("reload %v %s", paths, anim)
}

func (v *fakeView) DeleteItems(paths []IndexPath, anim Animation) {
	v.record("delete %v %s", paths, anim)
}

func (v *fakeView) MoveItem(from, to IndexPath) {
	v.record("move %s %s", from, to)
}

func (v *fakeView) ReloadData() {
	v.record("reload-data")
}

func (v *fakeView) Calls() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.calls...)
}

func TestIndexPaths(t *testing.T) {
	paths := IndexPaths(2, []int{0, 3, 1})

	assert.Equal(t, []IndexPath{{2, 0}, {2, 3}, {2, 1}}, paths)
	assert.Empty(t, IndexPaths(0, nil))
	assert.Equal(t, "2:3", paths[1].String())
}

func TestNotifier_Translate(t *testing.T) {
	n := NewNotifier(1, AnimationFade)
	origin := Origin{MutationID: "m-1", Seq: 4, Op: "insert"}

	ev := n.Translate(origin, collection.Change{Kind: collection.ChangeInsert, Indexes: []int{3}})
	assert.Equal(t, origin, ev.Origin)
	assert.Equal(t, 1, ev.Section)
	assert.Equal(t, AnimationFade, ev.Animation)
	assert.Equal(t, []IndexPath{{1, 3}}, ev.Paths)
	assert.Equal(t, "insert [1:3]", ev.String())

	ev = n.Translate(origin, collection.Change{Kind: collection.ChangeMove, From: 0, To: 2})
	assert.Equal(t, IndexPath{1, 0}, ev.From)
	assert.Equal(t, IndexPath{1, 2}, ev.To)
	assert.Empty(t, ev.Paths)
	assert.Equal(t, "move 1:0 -> 1:2", ev.String())

	ev = n.Translate(origin, collection.Change{Kind: collection.ChangeReload})
	assert.Equal(t, "reload section 1", ev.String())
}

func TestNotifier_DefaultAnimation(t *testing.T) {
	n := NewNotifier(0, "")
	assert.Equal(t, AnimationNone, n.Animation())
	assert.Equal(t, 0, n.Section())
}

func TestNotifier_Notify_AllShapes(t *testing.T) {
	n := NewNotifier(0, AnimationNone)
	view := &fakeView{}
	n.SetView(view)

	changes := []collection.Change{
		{Kind: collection.ChangeInsert, Indexes: []int{1}},
		{Kind: collection.ChangeUpdate, Indexes: []int{0}},
		{Kind: collection.ChangeRemove, Indexes: []int{2}},
		{Kind: collection.ChangeMove, From: 0, To: 2},
		{Kind: collection.ChangeReload},
	}
	for _, c := range changes {
		_, ok := n.Notify(Origin{}, c)
		require.True(t, ok)
	}

	assert.Equal(t, []string{
		"insert [0:1] none",
		"reload [0:0] none",
		"delete [0:2] none",
		"move 0:0 0:2",
		"reload-data",
	}, view.Calls())
}

func TestNotifier_Notify_BothSinks(t *testing.T) {
	n := NewNotifier(3, AnimationTop)
	view := &fakeView{}
	var events []Event
	n.SetView(view)
	n.SetDelegate(DelegateFunc(func(ev Event) { events = append(events, ev) }))

	ev, ok := n.Notify(Origin{Seq: 1, Op: "remove"}, collection.Change{Kind: collection.ChangeRemove, Indexes: []int{0}})
	require.True(t, ok)

	assert.Equal(t, []string{"delete [3:0] top"}, view.Calls())
	require.Len(t, events, 1)
	assert.Equal(t, ev, events[0])
	assert.Equal(t, collection.ChangeRemove, events[0].Kind)
}

func TestNotifier_Notify_NoSinksIsSilent(t *testing.T) {
	n := NewNotifier(0, AnimationNone)

	assert.NotPanics(t, func() {
		_, ok := n.Notify(Origin{}, collection.Change{Kind: collection.ChangeInsert, Indexes: []int{0}})
		assert.True(t, ok)
	})
}

func TestNotifier_Notify_NoneChange(t *testing.T) {
	n := NewNotifier(0, AnimationNone)
	view := &fakeView{}
	n.SetView(view)

	_, ok := n.Notify(Origin{}, collection.Change{})
	assert.False(t, ok)
	assert.Empty(t, view.Calls())
}

func TestNotifier_Detach(t *testing.T) {
	n := NewNotifier(0, AnimationNone)
	view := &fakeView{}
	n.SetView(view)
	n.SetView(nil)
	n.SetDelegate(nil)

	n.Notify(Origin{}, collection.Change{Kind: collection.ChangeReload})

	assert.Empty(t, view.Calls())
	assert.Nil(t, n.View())
	assert.Nil(t, n.Delegate())
}

func TestImmediate_RunsInline(t *testing.T) {
	ran := false
	ok := Immediate{}.Dispatch(func() { ran = true })

	assert.True(t, ok)
	assert.True(t, ran)
}

func TestLoop_RunsInOrder(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	var mu sync.Mutex
	var got []int
	done := make(chan struct{})
	for i := 0; i < 50; i++ {
		require.True(t, loop.Dispatch(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			if i == 49 {
				close(done)
			}
		}))
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not run dispatched functions")
	}

	mu.Lock()
	for i, v := range got {
		assert.Equal(t, i, v)
	}
	mu.Unlock()

	loop.Close()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after Close")
	}
}

func TestLoop_DispatchAfterClose(t *testing.T) {
	loop := NewLoop()
	loop.Close()

	assert.False(t, loop.Dispatch(func() {}))
}

func TestLoop_ContextCancel(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop on cancel")
	}
	assert.False(t, loop.Dispatch(func() {}))
}

func TestFanout(t *testing.T) {
	var a, b []string
	d := Fanout(
		DelegateFunc(func(ev Event) { a = append(a, ev.String()) }),
		nil,
		DelegateFunc(func(ev Event) { b = append(b, ev.String()) }),
	)

	n := NewNotifier(0, AnimationNone)
	n.SetDelegate(d)
	n.Notify(Origin{Seq: 1}, collection.Change{Kind: collection.ChangeReload})

	assert.Equal(t, []string{"reload section 0"}, a)
	assert.Equal(t, a, b)
}
