// Package engine implements the mutation serializer that keeps a list view
// in step with its ordered store.
//
// ARCHITECTURE:
//
// Single-Worker Mutation Loop:
// Every mutation of a Machine's store is queued and applied by one worker
// goroutine (Machine.Run). Submissions may come from any goroutine; the queue
// fixes their order and the worker applies them strictly in that order. This
// ensures:
// - Views receive notifications in submission order
// - Index shifts from one mutation never interleave with another
// - Concurrent mutation is impossible by construction
//
// Mutation Processing Flow:
// 1. Caller submits a mutation (Insert, Remove, Move, ...) -> FIFO queue
// 2. Run() dequeues mutations one at a time
// 3. The mutation is dispatched onto the notification context
// 4. There it is applied to the store; on success the view and delegate are
//    notified and the completion callback runs
// 5. On failure the error is reported; nothing is notified
// 6. If a pacing delay is configured, the worker sleeps before the next one
//
// Failures are log-and-continue: an out-of-range index or a failed lookup
// never stops the worker or affects later mutations.
//
// Sequence numbers come from a logical Clock and are assigned at apply time,
// so they follow application order, not submission timing.
package engine
