package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/listsync/internal/notify"
)

// BeginRun registers a new run and returns its UUIDv7 identifier.
func (j *Journal) BeginRun(ctx context.Context, name string) (string, error) {
	id := uuid.Must(uuid.NewV7()).String()

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (id, name, created_at)
		VALUES (?, ?, ?)
	`, id, name, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	return id, nil
}

// Record appends one notification to runID.
//
// Uses ON CONFLICT DO NOTHING: a (run, section, seq) triple is recorded at
// most once, so re-delivering an event is harmless.
func (j *Journal) Record(ctx context.Context, runID string, ev notify.Event) error {
	paths := ev.Paths
	if paths == nil {
		paths = []notify.IndexPath{}
	}
	pathsJSON, err := json.Marshal(paths)
	if err != nil {
		return fmt.Errorf("record notification: %w", err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO notifications
		(run_id, section, seq, mutation_id, op, kind, paths, from_item, to_item, animation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, section, seq) DO NOTHING
	`,
		runID,
		ev.Section,
		ev.Origin.Seq,
		ev.Origin.MutationID,
		ev.Origin.Op,
		ev.Kind.String(),
		string(pathsJSON),
		ev.From.Item,
		ev.To.Item,
		string(ev.Animation),
	)
	if err != nil {
		return fmt.Errorf("record notification: %w", err)
	}
	return nil
}
