// Package pebblestore is the embedded, disk-backed event repository built
// on Pebble.
//
// Keyspace (byte-wise, lexicographically sortable):
//
//	g/m                          last global sequence (8 bytes big-endian)
//	g/e/{seq_be8}                event record
//	i/{id}                       identity index, seq of the event
//	s/{len_be4}{stream}/e/{seq}  stream index, empty value
//
// The identity index and the global records are never deleted, so a deleted
// stream keeps its identifiers taken. Stream names are length-prefixed so no
// stream prefix is a prefix of another.
package pebblestore
