// Package engine drives tasks through their reminder lifecycle.
//
// Every pending fire (start reminder, end reminder, completion, next
// occurrence) is one entry in a min-heap keyed by fire time. A single
// dispatcher goroutine sleeps until the earliest entry is due and hands due
// entries to a small worker pool; workers emit the notification and push the
// chain's next entry back into the heap. A recurring task therefore chains
// forever as a sequence of heap entries, never as nested goroutines, so an
// unbounded chain costs one heap slot at a time.
package engine
