package pebblestore

import "encoding/binary"

var (
	keyMeta        = []byte("g/m")
	globalPrefix   = []byte("g/e/")
	identityPrefix = []byte("i/")
	streamPrefix   = []byte("s/")
	entrySeg       = []byte("/e/")
)

func appendBE4(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// keyGlobal builds the record key of global sequence seq.
func keyGlobal(seq uint64) []byte {
	k := make([]byte, 0, len(globalPrefix)+8)
	k = append(k, globalPrefix...)
	return appendBE8(k, seq)
}

// keyIdentity builds the identity index key of an event id.
func keyIdentity(id string) []byte {
	k := make([]byte, 0, len(identityPrefix)+len(id))
	k = append(k, identityPrefix...)
	return append(k, id...)
}

// keyStreamPrefix returns the prefix shared by every index entry of stream.
func keyStreamPrefix(stream string) []byte {
	k := make([]byte, 0, len(streamPrefix)+4+len(stream)+len(entrySeg)+8)
	k = append(k, streamPrefix...)
	k = appendBE4(k, uint32(len(stream)))
	k = append(k, stream...)
	return append(k, entrySeg...)
}

// keyStreamEntry builds the stream index key of global sequence seq.
func keyStreamEntry(stream string, seq uint64) []byte {
	return appendBE8(keyStreamPrefix(stream), seq)
}

// prefixEnd returns the smallest key greater than every key with prefix p.
// Every prefix in this keyspace ends in '/', so incrementing it never
// overflows.
func prefixEnd(p []byte) []byte {
	end := append([]byte(nil), p...)
	end[len(end)-1]++
	return end
}

// seqSuffix decodes the trailing big-endian sequence of a global or stream key.
func seqSuffix(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(key)-8:])
}
