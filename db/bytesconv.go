package db

import (
	"encoding/binary"
	"math"
)

// bytesToFloat64 decodes a little-endian IEEE-754 double slice out of raw
// bytes, the layout feature files and the database payload region share.
func bytesToFloat64(b []byte) []float64 {
	out := make([]float64, len(b)/8)
	for i := range out {
		bits := binary.LittleEndian.Uint64(b[i*8 : i*8+8])
		out[i] = math.Float64frombits(bits)
	}
	return out
}
