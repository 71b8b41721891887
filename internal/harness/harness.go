package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/listsync/internal/collection"
	"github.com/roach88/listsync/internal/engine"
	"github.com/roach88/listsync/internal/notify"
	"github.com/roach88/listsync/internal/testutil"
)

// RunOption configures a script run.
type RunOption func(*runConfig)

type runConfig struct {
	delegate notify.Delegate
	loop     bool
	logger   *slog.Logger
	delay    *time.Duration
}

// WithDelegate adds d as a second delegate next to the harness's own
// recorder, e.g. a journal.Recorder.
func WithDelegate(d notify.Delegate) RunOption {
	return func(c *runConfig) {
		c.delegate = d
	}
}

// WithLoopDispatcher runs sinks and completions on a dedicated notify.Loop
// goroutine instead of the worker goroutine.
func WithLoopDispatcher() RunOption {
	return func(c *runConfig) {
		c.loop = true
	}
}

// WithLogger sets the logger handed to the machine. Default: discard.
func WithLogger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = l
	}
}

// WithDelay overrides the script's pacing delay.
func WithDelay(d time.Duration) RunOption {
	return func(c *runConfig) {
		c.delay = &d
	}
}

// Run executes a script against a fresh engine.Machine and returns the
// result.
//
// Each run is isolated and deterministic: mutation IDs come from
// testutil.SequentialIDs, items compare with collection.NormalizedEqual,
// and the view and delegate are recording fakes.
//
// Execution flow:
//  1. Seed Initial (no sinks attached yet)
//  2. Attach the delegate and the view (the view receives a full reload)
//  3. Submit every step, then flush
//  4. Check expected step errors and evaluate assertions
func Run(ctx context.Context, script *Script, opts ...RunOption) (*Result, error) {
	cfg := runConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	delay, err := script.DelayDuration()
	if err != nil {
		return nil, err
	}
	if cfg.delay != nil {
		delay = *cfg.delay
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ids := testutil.NewSequentialIDs("mut")
	failures := &failureLog{codes: make(map[string]string)}
	view := testutil.NewRecordingView()
	events := &testutil.RecordingDelegate{}

	engineOpts := []engine.Option{
		engine.WithSection(script.Section),
		engine.WithAnimation(notify.Animation(script.Animation)),
		engine.WithDelay(delay),
		engine.WithIDGenerator(ids),
		engine.WithErrorHandler(failures.record),
		engine.WithLogger(cfg.logger),
	}

	var loop *notify.Loop
	loopErr := make(chan error, 1)
	if cfg.loop {
		loop = notify.NewLoop()
		engineOpts = append(engineOpts, engine.WithDispatcher(loop))
		go func() { loopErr <- loop.Run(ctx) }()
	}

	m := engine.New[string](collection.NormalizedEqual, engineOpts...)
	runErr := make(chan error, 1)
	go func() { runErr <- m.Run(ctx) }()

	if len(script.Initial) > 0 {
		if err := m.SetItems(script.Initial, nil); err != nil {
			return nil, fmt.Errorf("failed to seed initial items: %w", err)
		}
		if err := m.Flush(ctx); err != nil {
			return nil, fmt.Errorf("failed to seed initial items: %w", err)
		}
	}

	m.SetDelegate(notify.Fanout(events, cfg.delegate))
	m.SetView(view)

	var mu sync.Mutex
	outcomes := make([]StepOutcome, len(script.Steps))
	for i, st := range script.Steps {
		done := func() {
			mu.Lock()
			defer mu.Unlock()
			outcomes[i].Completed = true
		}
		if err := submit(m, st, done); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, st.Op, err)
		}

		mu.Lock()
		outcomes[i].Step = i
		outcomes[i].Op = st.Op
		outcomes[i].MutationID = ids.Last()
		mu.Unlock()

		cfg.logger.Debug("script step submitted", "step", i, "op", st.Op, "mutation_id", ids.Last())
	}

	if err := m.Flush(ctx); err != nil {
		return nil, fmt.Errorf("failed to flush: %w", err)
	}
	m.Stop()
	if err := <-runErr; err != nil {
		return nil, fmt.Errorf("machine stopped: %w", err)
	}
	if loop != nil {
		loop.Close()
		if err := <-loopErr; err != nil {
			return nil, fmt.Errorf("dispatcher stopped: %w", err)
		}
	}

	result := NewResult()
	for _, ev := range events.Events() {
		result.Notifications = append(result.Notifications, Notification{
			Seq:        ev.Origin.Seq,
			MutationID: ev.Origin.MutationID,
			Op:         ev.Origin.Op,
			Event:      ev.String(),
		})
	}
	result.ViewCalls = append(result.ViewCalls, view.Strings()...)
	result.FinalItems = append(result.FinalItems, m.Items()...)

	mu.Lock()
	for i := range outcomes {
		outcomes[i].Error = failures.code(outcomes[i].MutationID)
	}
	result.Steps = append(result.Steps, outcomes...)
	mu.Unlock()

	checkStepErrors(result, script.Steps)

	for _, msg := range EvaluateAssertions(result, script.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// submit forwards one validated step to the machine.
func submit(m *engine.Machine[string], st Step, done func()) error {
	op, err := engine.ParseOp(st.Op)
	if err != nil {
		return err
	}

	switch op {
	case engine.OpSetItems:
		return m.SetItems(st.Items, done)
	case engine.OpClear:
		return m.Clear(done)
	case engine.OpInsert:
		return m.Insert(st.Item, intOf(st.Index), done)
	case engine.OpAppend:
		return m.Append(st.Item, done)
	case engine.OpUpdate:
		return m.Update(st.Item, intOf(st.Index), done)
	case engine.OpUpdateItem:
		return m.UpdateItem(st.Item, done)
	case engine.OpRemove:
		return m.Remove(intOf(st.Index), done)
	case engine.OpRemoveItem:
		return m.RemoveItem(st.Item, done)
	case engine.OpMove:
		return m.Move(intOf(st.From), intOf(st.To), done)
	case engine.OpMoveItem:
		return m.MoveItem(st.Item, intOf(st.To), done)
	case engine.OpMoveUpdated:
		return m.MoveUpdated(st.Item, intOf(st.From), intOf(st.To), done)
	default:
		return fmt.Errorf("unsupported op %s", op)
	}
}

// checkStepErrors compares each step's outcome with its expect_error.
func checkStepErrors(result *Result, steps []Step) {
	for i, st := range steps {
		got := result.Steps[i].Error
		switch {
		case st.ExpectError != "" && got != st.ExpectError:
			if got == "" {
				got = "none"
			}
			result.AddError(fmt.Sprintf("steps[%d] (%s): expected error %s, got %s", i, st.Op, st.ExpectError, got))
		case st.ExpectError == "" && got != "":
			result.AddError(fmt.Sprintf("steps[%d] (%s): unexpected error %s", i, st.Op, got))
		}
	}
}

// failureLog collects reported mutation errors by mutation ID.
type failureLog struct {
	mu    sync.Mutex
	codes map[string]string
}

func (f *failureLog) record(err error) {
	var id string
	var me *engine.MutationError
	if errors.As(err, &me) {
		id = me.MutationID
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[id] = string(engine.CodeOf(err))
}

func (f *failureLog) code(mutationID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codes[mutationID]
}

func intOf(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
