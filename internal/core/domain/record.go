package domain

import (
	"encoding/binary"
	"fmt"
)

// CountSize is the width of the reference count prefix in bytes.
const CountSize = 4

// Record is the persisted unit stored under a hash key.
//
// A record exists in the engine only while Count >= 1. Value is set when
// the record is created and never changes afterwards.
type Record struct {
	Count uint32
	Value []byte
}

// Live reports whether the record holds at least one reference.
func (r Record) Live() bool {
	return r.Count >= 1
}

// EncodeRecord serializes a count and value.
//
// Layout: [count:4 little-endian][value...]. The value carries no length
// prefix; its length is len(out) - CountSize.
func EncodeRecord(count uint32, value []byte) []byte {
	out := make([]byte, CountSize+len(value))
	binary.LittleEndian.PutUint32(out[:CountSize], count)
	copy(out[CountSize:], value)
	return out
}

// DecodeRecord parses bytes written by EncodeRecord.
//
// An empty input decodes to the zero Record, which callers treat as "not
// found". Inputs of 1..3 bytes cannot hold a count and return
// ErrCorruptRecord. The returned value never aliases data.
func DecodeRecord(data []byte) (Record, error) {
	if len(data) == 0 {
		return Record{Value: []byte{}}, nil
	}
	if len(data) < CountSize {
		return Record{}, ErrCorruptRecord.WithDetails(fmt.Sprintf("record length %d", len(data)))
	}

	value := make([]byte, len(data)-CountSize)
	copy(value, data[CountSize:])

	return Record{
		Count: binary.LittleEndian.Uint32(data[:CountSize]),
		Value: value,
	}, nil
}
