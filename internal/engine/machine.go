package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/listsync/internal/collection"
	"github.com/roach88/listsync/internal/notify"
	"github.com/roach88/listsync/internal/queue"
)

// Machine keeps one section of a view synchronized with an ordered store.
//
// CRITICAL: All store mutations happen through the single Run loop.
// External callers submit mutations; the worker applies them in FIFO order.
//
// Thread-safety model:
//   - Mutation methods, Flush, SetView, SetDelegate: safe from any goroutine
//   - Read methods: safe from any goroutine, including sink callbacks
//   - Run(): must be called from exactly one goroutine
//
// Each mutation method takes an optional done callback. It runs on the
// notification context after the store changed and the sinks were notified,
// and only if the mutation succeeded.
type Machine[T any] struct {
	store      *collection.Store[T]
	notifier   *notify.Notifier
	dispatcher notify.Dispatcher
	queue      *queue.Queue[*mutation[T]]
	clock      *Clock
	ids        IDGenerator
	delay      time.Duration
	onError    func(error)
	logger     *slog.Logger
}

// mutationInfo identifies a mutation in logs, errors and events.
type mutationInfo struct {
	id  string
	op  Op
	seq int64
}

// mutation is one pending queue entry. It is consumed exactly once.
type mutation[T any] struct {
	mutationInfo
	apply func(*collection.Store[T]) (collection.Change, error)
	done  func()

	// Control entries.
	view    notify.View
	flushed chan struct{}
}

// New creates a Machine whose store matches items with equal.
func New[T any](equal collection.EqualFunc[T], opts ...Option) *Machine[T] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.dispatcher == nil {
		cfg.dispatcher = notify.Immediate{}
	}
	if cfg.ids == nil {
		cfg.ids = UUIDv7Generator{}
	}

	return &Machine[T]{
		store:      collection.New(equal),
		notifier:   notify.NewNotifier(cfg.section, cfg.animation),
		dispatcher: cfg.dispatcher,
		queue:      queue.New[*mutation[T]](),
		clock:      NewClock(),
		ids:        cfg.ids,
		delay:      cfg.delay,
		onError:    cfg.onError,
		logger:     cfg.logger,
	}
}

// Section returns the section identifier.
func (m *Machine[T]) Section() int {
	return m.notifier.Section()
}

// Delay returns the configured pacing delay.
func (m *Machine[T]) Delay() time.Duration {
	return m.delay
}

// Clock returns the logical clock stamping applied mutations.
func (m *Machine[T]) Clock() *Clock {
	return m.clock
}

// Pending returns the number of queued, not yet dequeued, entries.
func (m *Machine[T]) Pending() int {
	return m.queue.Len()
}

// Run starts the single-worker mutation loop.
// Blocks until ctx is cancelled or Stop() is called and the queue drained.
//
// ERROR HANDLING: a failed mutation is reported and the loop continues.
// Only context cancellation ends Run with an error.
func (m *Machine[T]) Run(ctx context.Context) error {
	m.logger.Info("mutation worker starting", "section", m.Section(), "delay", m.delay)

	for {
		if mu, ok := m.queue.TryDequeue(); ok {
			if err := m.process(ctx, mu); err != nil {
				m.logger.Info("mutation worker stopping: context cancelled", "pending", m.queue.Len())
				m.queue.Close()
				return err
			}
			continue
		}

		select {
		case <-ctx.Done():
			m.logger.Info("mutation worker stopping: context cancelled")
			m.queue.Close()
			return ctx.Err()

		case <-m.queue.Wait():
			// The signal channel closes with the queue; stop once drained.
			if m.queue.Closed() && m.queue.Len() == 0 {
				m.logger.Info("mutation worker stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue. Mutations already queued are still applied before
// Run returns; later submissions fail with ErrStopped.
func (m *Machine[T]) Stop() {
	m.queue.Close()
}

// Flush blocks until every mutation submitted before the call has been
// applied and notified, or ctx is done.
func (m *Machine[T]) Flush(ctx context.Context) error {
	flushed := make(chan struct{})
	entry := &mutation[T]{
		mutationInfo: mutationInfo{op: opFlush},
		flushed:      flushed,
	}
	if !m.queue.Enqueue(entry) {
		return ErrStopped
	}

	select {
	case <-flushed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetView attaches v as the primary view, or detaches it when v is nil.
//
// The attachment is queued like a mutation so it lands between mutations;
// once attached, v receives a full reload to pick up the current contents.
func (m *Machine[T]) SetView(v notify.View) {
	entry := &mutation[T]{
		mutationInfo: mutationInfo{id: m.ids.Generate(), op: opAttachView},
		view:         v,
	}
	if !m.queue.Enqueue(entry) {
		// Nothing will be applied anymore; attach directly.
		m.notifier.SetView(v)
	}
}

// SetDelegate attaches d, or detaches it when d is nil. Takes effect for the
// next notification.
func (m *Machine[T]) SetDelegate(d notify.Delegate) {
	m.notifier.SetDelegate(d)
}

// SetItems replaces all items and reloads the view.
func (m *Machine[T]) SetItems(items []T, done func()) error {
	return m.submit(OpSetItems, func(s *collection.Store[T]) (collection.Change, error) {
		return s.SetAll(items), nil
	}, done)
}

// Clear removes all items and reloads the view.
func (m *Machine[T]) Clear(done func()) error {
	return m.submit(OpClear, func(s *collection.Store[T]) (collection.Change, error) {
		return s.Clear(), nil
	}, done)
}

// Insert places item at index (0 <= index <= Count).
func (m *Machine[T]) Insert(item T, index int, done func()) error {
	return m.submit(OpInsert, func(s *collection.Store[T]) (collection.Change, error) {
		return s.Insert(item, index)
	}, done)
}

// Append adds item at the end.
func (m *Machine[T]) Append(item T, done func()) error {
	return m.submit(OpAppend, func(s *collection.Store[T]) (collection.Change, error) {
		return s.Append(item), nil
	}, done)
}

// Update replaces the item at index.
func (m *Machine[T]) Update(item T, index int, done func()) error {
	return m.submit(OpUpdate, func(s *collection.Store[T]) (collection.Change, error) {
		return s.Update(item, index)
	}, done)
}

// UpdateItem replaces the first item equal to item. Slower than Update
// because it scans for the item first.
func (m *Machine[T]) UpdateItem(item T, done func()) error {
	return m.submit(OpUpdateItem, func(s *collection.Store[T]) (collection.Change, error) {
		return s.UpdateItem(item)
	}, done)
}

// Remove deletes the item at index.
func (m *Machine[T]) Remove(index int, done func()) error {
	return m.submit(OpRemove, func(s *collection.Store[T]) (collection.Change, error) {
		return s.Remove(index)
	}, done)
}

// RemoveItem deletes the first item equal to item.
func (m *Machine[T]) RemoveItem(item T, done func()) error {
	return m.submit(OpRemoveItem, func(s *collection.Store[T]) (collection.Change, error) {
		return s.RemoveItem(item)
	}, done)
}

// Move relocates the item at from to to. Move(i, i, done) is a no-op that
// still calls done.
func (m *Machine[T]) Move(from, to int, done func()) error {
	return m.submit(OpMove, func(s *collection.Store[T]) (collection.Change, error) {
		return s.Move(from, to)
	}, done)
}

// MoveItem replaces the first item equal to item and moves it to to.
func (m *Machine[T]) MoveItem(item T, to int, done func()) error {
	return m.submit(OpMoveItem, func(s *collection.Store[T]) (collection.Change, error) {
		return s.MoveItem(item, to)
	}, done)
}

// MoveUpdated replaces the item at from with item and moves it to to.
func (m *Machine[T]) MoveUpdated(item T, from, to int, done func()) error {
	return m.submit(OpMoveUpdated, func(s *collection.Store[T]) (collection.Change, error) {
		return s.MoveUpdated(item, from, to)
	}, done)
}

// Count returns the number of items.
func (m *Machine[T]) Count() int {
	return m.store.Len()
}

// ItemAt returns the item at index. An out-of-range index is logged and
// returned as an error.
func (m *Machine[T]) ItemAt(index int) (T, error) {
	item, err := m.store.At(index)
	if err != nil {
		m.logger.Warn("item lookup failed", "error", err, "index", index, "section", m.Section())
	}
	return item, err
}

// IndexOf returns the index of the first item equal to item.
func (m *Machine[T]) IndexOf(item T) (int, bool) {
	return m.store.IndexOf(item)
}

// Contains reports whether any item equals item.
func (m *Machine[T]) Contains(item T) bool {
	return m.store.Contains(item)
}

// Items returns a snapshot of the current order.
func (m *Machine[T]) Items() []T {
	return m.store.Items()
}

func (m *Machine[T]) submit(op Op, apply func(*collection.Store[T]) (collection.Change, error), done func()) error {
	entry := &mutation[T]{
		mutationInfo: mutationInfo{id: m.ids.Generate(), op: op},
		apply:        apply,
		done:         done,
	}
	if !m.queue.Enqueue(entry) {
		return ErrStopped
	}
	m.logger.Debug("mutation queued", "mutation_id", entry.id, "op", op)
	return nil
}

// process handles one dequeued entry.
// CRITICAL: Called only from Run() goroutine.
//
// Returns an error only if ctx ended while waiting on the notification
// context or the pacing delay.
func (m *Machine[T]) process(ctx context.Context, mu *mutation[T]) error {
	if mu.op == opFlush {
		close(mu.flushed)
		return nil
	}

	if mu.op != opAttachView {
		mu.seq = m.clock.Next()
	}

	finished := make(chan bool, 1)
	ok := m.dispatcher.Dispatch(func() {
		if mu.op == opAttachView {
			m.attach(mu)
			finished <- false
			return
		}
		finished <- m.apply(mu)
	})
	if !ok {
		m.report(newMutationError(ErrCodeDispatcherClosed, mu.mutationInfo,
			fmt.Errorf("notification context closed")))
		return nil
	}

	var notified bool
	select {
	case notified = <-finished:
	case <-ctx.Done():
		return ctx.Err()
	}

	if notified && m.delay > 0 {
		return m.pace(ctx)
	}
	return nil
}

// apply runs on the notification context. It reports whether a notification
// was emitted.
func (m *Machine[T]) apply(mu *mutation[T]) (notified bool) {
	defer func() {
		if r := recover(); r != nil {
			m.report(newMutationError(ErrCodeCallbackPanic, mu.mutationInfo, fmt.Errorf("panic: %v", r)))
		}
	}()

	change, err := mu.apply(m.store)
	if err != nil {
		m.report(storeError(mu.mutationInfo, err))
		return false
	}

	origin := notify.Origin{MutationID: mu.id, Seq: mu.seq, Op: mu.op.String()}
	_, notified = m.notifier.Notify(origin, change)

	m.logger.Debug("mutation applied",
		"mutation_id", mu.id,
		"op", mu.op,
		"seq", mu.seq,
		"change", change.Kind,
		"notified", notified,
	)

	if mu.done != nil {
		mu.done()
	}
	return notified
}

// attach runs on the notification context.
func (m *Machine[T]) attach(mu *mutation[T]) {
	defer func() {
		if r := recover(); r != nil {
			m.report(newMutationError(ErrCodeCallbackPanic, mu.mutationInfo, fmt.Errorf("panic: %v", r)))
		}
	}()

	m.notifier.SetView(mu.view)
	m.notifier.ReloadView(mu.view)
	m.logger.Debug("view attached", "section", m.Section(), "attached", mu.view != nil)
}

// pace blocks the worker for the configured delay.
func (m *Machine[T]) pace(ctx context.Context) error {
	timer := time.NewTimer(m.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// report logs a failed mutation and forwards it to the error handler.
func (m *Machine[T]) report(err *MutationError) {
	m.logger.Warn("mutation failed",
		"error", err.Err,
		"code", err.Code,
		"mutation_id", err.MutationID,
		"op", err.Op,
		"seq", err.Seq,
		"section", m.Section(),
	)
	if m.onError != nil {
		m.onError(err)
	}
}
