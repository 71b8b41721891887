package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/listsync/internal/collection"
	"github.com/roach88/listsync/internal/notify"
)

// Run describes one recorded run.
type Run struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	CreatedAt     string `json:"created_at"`
	Notifications int    `json:"notifications"`
}

// Entry is one recorded notification.
type Entry struct {
	RunID string       `json:"run_id"`
	Event notify.Event `json:"event"`
}

// Runs lists runs, oldest first.
func (j *Journal) Runs(ctx context.Context) ([]Run, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.created_at, COUNT(n.seq)
		FROM runs r
		LEFT JOIN notifications n ON n.run_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at ASC, r.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Name, &r.CreatedAt, &r.Notifications); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LatestRun returns the most recently created run, or "" if there is none.
func (j *Journal) LatestRun(ctx context.Context) (string, error) {
	runs, err := j.Runs(ctx)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", nil
	}
	return runs[len(runs)-1].ID, nil
}

// Entries returns every notification recorded for runID in section, seq
// order. Returns an empty slice (not nil) for an unknown run.
func (j *Journal) Entries(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, section, seq, mutation_id, op, kind, paths, from_item, to_item, animation
		FROM notifications
		WHERE run_id = ?
		ORDER BY section ASC, seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e         Entry
			kind      string
			pathsJSON string
			from, to  int
			animation string
		)
		if err := rows.Scan(
			&e.RunID,
			&e.Event.Section,
			&e.Event.Origin.Seq,
			&e.Event.Origin.MutationID,
			&e.Event.Origin.Op,
			&kind,
			&pathsJSON,
			&from,
			&to,
			&animation,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}

		e.Event.Kind, err = collection.ParseChangeKind(kind)
		if err != nil {
			return nil, fmt.Errorf("scan notification seq %d: %w", e.Event.Origin.Seq, err)
		}
		if err := json.Unmarshal([]byte(pathsJSON), &e.Event.Paths); err != nil {
			return nil, fmt.Errorf("decode paths seq %d: %w", e.Event.Origin.Seq, err)
		}
		if len(e.Event.Paths) == 0 {
			e.Event.Paths = nil
		}
		if e.Event.Kind == collection.ChangeMove {
			e.Event.From = notify.IndexPath{Section: e.Event.Section, Item: from}
			e.Event.To = notify.IndexPath{Section: e.Event.Section, Item: to}
		}
		e.Event.Animation = notify.Animation(animation)

		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return entries, nil
}
