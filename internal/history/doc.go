// Package history provides the optional persistence layer.
//
// It records:
//   - Emitted notifications (append-only reminder history)
//   - Calendar import dedup state (so repeated pulls skip known events)
//
// Tasks themselves are never persisted; a restart forgets them by design.
package history
