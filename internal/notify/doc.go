// Package notify translates store changes into view notifications.
//
// A collection.Change carries raw indices. The Notifier scopes them to its
// section as IndexPath values and fans the result out to two optional,
// non-owning sinks:
//
//   - View: the visual widget, driven with insert/reload/delete/move/reload-all
//     calls plus the configured Animation token
//   - Delegate: a plain event callback for code that reacts to mutations
//     without owning the widget
//
// Either sink may be absent; a missing sink is skipped silently.
//
// Sinks are only ever touched from the notification execution context, a
// Dispatcher. Immediate runs callbacks on the calling goroutine; Loop owns a
// dedicated goroutine, the equivalent of a UI thread.
package notify
