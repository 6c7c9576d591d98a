package core

import (
	"encoding/binary"
	"math"
)

// Decode reads exactly MessageSize bytes from b (little-endian) into a Message.
// Callers must ensure len(b) >= MessageSize; this core never allocates to decode.
//
//go:nosplit
func Decode(b []byte) Message {
	_ = b[MessageSize-1] // bounds-check hint, one comparison instead of three
	return Message{
		Seq: binary.LittleEndian.Uint64(b[0:8]),
		Px:  math.Float64frombits(binary.LittleEndian.Uint64(b[8:16])),
		Qty: int32(binary.LittleEndian.Uint32(b[16:20])),
	}
}

// Encode writes m into b as the 20-byte wire frame. Callers must ensure len(b) >= MessageSize.
func Encode(m Message, b []byte) {
	_ = b[MessageSize-1]
	binary.LittleEndian.PutUint64(b[0:8], m.Seq)
	binary.LittleEndian.PutUint64(b[8:16], math.Float64bits(m.Px))
	binary.LittleEndian.PutUint32(b[16:20], uint32(m.Qty))
}
