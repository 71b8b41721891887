// Package journal records view notifications in SQLite for later inspection.
//
// A journal is an append-only trail of what observers were told: one row
// per notification, grouped into runs. It never stores list contents and is
// not a way to restore a list; it answers "which updates did the view get,
// in which order" after the fact (see `listsync trace`).
//
// # Ordering
//
//   - Rows are ordered by the engine's logical seq, NEVER by wall time
//   - All reads use ORDER BY section ASC, seq ASC for stable output
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks instead of failing
//   - foreign_keys=ON: notifications must reference a run
package journal
