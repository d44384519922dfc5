// Package memory is the in-process event repository and the reference
// implementation of event.Repository.
//
// It keeps two structures behind a single lock:
//
//   - the global sequencer, an arena of events in append order with an
//     identity index from event id to offset, and
//   - the stream index, mapping each stream name to the ascending global
//     offsets of its events.
//
// A create appends to both inside one critical section, so a rejected event
// never leaves a stream entry behind. Reads resolve their cursor and copy the
// window while holding the read lock, which makes every window a snapshot of
// the global order at one instant.
package memory
