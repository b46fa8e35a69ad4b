package geom

import (
	"encoding/binary"
	"math"
)

// Float32Bytes encodes floats as little-endian bytes.
func Float32Bytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Int32Bytes encodes signed integers as little-endian bytes.
func Int32Bytes(v []int32) []byte {
	buf := make([]byte, len(v)*4)
	for i, n := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(n)) //nolint:gosec // two's complement bit pattern
	}
	return buf
}

// Uint16Bytes encodes indices as little-endian bytes, two per index.
// Contexts derive the index count from the length, so it is not padded.
func Uint16Bytes(v []uint16) []byte {
	buf := make([]byte, len(v)*2)
	for i, n := range v {
		binary.LittleEndian.PutUint16(buf[i*2:], n)
	}
	return buf
}

// Uint16s decodes little-endian index bytes produced by Uint16Bytes.
// count is the number of indices to read.
func Uint16s(b []byte, count int) []uint16 {
	if count*2 > len(b) {
		count = len(b) / 2
	}
	out := make([]uint16, count)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return out
}
