package journal

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/listsync/internal/notify"
)

// Recorder is a notify.Delegate that writes every event to a journal run.
//
// Write failures never reach the engine: they are logged and counted, and
// Err returns the first one.
type Recorder struct {
	journal *Journal
	runID   string
	ctx     context.Context

	mu       sync.Mutex
	recorded int
	failed   int
	firstErr error
}

// NewRecorder returns a delegate recording into runID. ctx bounds every
// write.
func (j *Journal) NewRecorder(ctx context.Context, runID string) *Recorder {
	return &Recorder{journal: j, runID: runID, ctx: ctx}
}

// RunID returns the run this recorder writes to.
func (r *Recorder) RunID() string {
	return r.runID
}

// HandleEvent implements notify.Delegate.
func (r *Recorder) HandleEvent(ev notify.Event) {
	err := r.journal.Record(r.ctx, r.runID, ev)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.failed++
		if r.firstErr == nil {
			r.firstErr = err
		}
		slog.Error("journal write failed",
			"error", err,
			"run_id", r.runID,
			"seq", ev.Origin.Seq,
			"mutation_id", ev.Origin.MutationID,
		)
		return
	}
	r.recorded++
}

// Recorded returns how many events were written.
func (r *Recorder) Recorded() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recorded
}

// Err returns the first write error, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.firstErr
}
