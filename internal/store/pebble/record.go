package pebblestore

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"time"

	"github.com/jensholdgaard/eventrepo/internal/event"
)

// Record encoding: uvarint headerLen | header | data | crc32c(header|data)
//
// The header is a sequence of uvarint-length-prefixed fields: id, type,
// stream and metadata, followed by created_at as 8 bytes of big-endian Unix
// nanoseconds. The global sequence lives in the key, not the record.

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

var errCorruptRecord = errors.New("pebble: corrupt event record")

func appendField(dst, field []byte) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(field)))
	return append(dst, field...)
}

func encodeRecord(e event.Event) []byte {
	header := make([]byte, 0, 32+len(e.ID)+len(e.Type)+len(e.Stream)+len(e.Metadata))
	header = appendField(header, []byte(e.ID))
	header = appendField(header, []byte(e.Type))
	header = appendField(header, []byte(e.Stream))
	header = appendField(header, e.Metadata)
	header = appendBE8(header, uint64(e.CreatedAt.UnixNano()))

	out := make([]byte, 0, binary.MaxVarintLen64+len(header)+len(e.Data)+4)
	out = binary.AppendUvarint(out, uint64(len(header)))
	out = append(out, header...)
	out = append(out, e.Data...)

	crc := crc32.Update(0, castagnoli, header)
	crc = crc32.Update(crc, castagnoli, e.Data)
	return binary.BigEndian.AppendUint32(out, crc)
}

func readField(b []byte) (field, rest []byte, ok bool) {
	n, w := binary.Uvarint(b)
	if w <= 0 || uint64(len(b)-w) < n {
		return nil, nil, false
	}
	end := w + int(n)
	return b[w:end], b[end:], true
}

func decodeRecord(b []byte, seq uint64) (event.Event, error) {
	if len(b) < 1+4 {
		return event.Event{}, errCorruptRecord
	}
	hlen, n := binary.Uvarint(b)
	if n <= 0 || uint64(len(b)-n-4) < hlen {
		return event.Event{}, errCorruptRecord
	}
	header := b[n : n+int(hlen)]
	data := b[n+int(hlen) : len(b)-4]
	crc := crc32.Update(0, castagnoli, header)
	crc = crc32.Update(crc, castagnoli, data)
	if crc != binary.BigEndian.Uint32(b[len(b)-4:]) {
		return event.Event{}, errCorruptRecord
	}

	var fields [4][]byte
	rest := header
	for i := range fields {
		var ok bool
		fields[i], rest, ok = readField(rest)
		if !ok {
			return event.Event{}, errCorruptRecord
		}
	}
	if len(rest) != 8 {
		return event.Event{}, errCorruptRecord
	}

	return event.Event{
		ID:        string(fields[0]),
		Type:      string(fields[1]),
		Stream:    string(fields[2]),
		Metadata:  append([]byte(nil), fields[3]...),
		Data:      append([]byte(nil), data...),
		Position:  seq,
		CreatedAt: time.Unix(0, int64(binary.BigEndian.Uint64(rest))).UTC(),
	}, nil
}
