// Package bytesx provides fixed-width endian reads/writes at arbitrary byte
// offsets, the small building block the QMC2 trailer detector is built on.
package bytesx

import "encoding/binary"

// ReadU32BE reads a big-endian uint32 starting at offset. Out-of-range
// offsets are a programmer error and panic, matching the rest of the
// decryption core which never attempts to recover from malformed internal
// state.
func ReadU32BE(b []byte, offset int) uint32 {
	return binary.BigEndian.Uint32(b[offset : offset+4])
}

// ReadU32LE reads a little-endian uint32 starting at offset.
func ReadU32LE(b []byte, offset int) uint32 {
	return binary.LittleEndian.Uint32(b[offset : offset+4])
}

// WriteU32BE writes v as a big-endian uint32 starting at offset.
func WriteU32BE(b []byte, offset int, v uint32) {
	binary.BigEndian.PutUint32(b[offset:offset+4], v)
}

// WriteU32LE writes v as a little-endian uint32 starting at offset.
func WriteU32LE(b []byte, offset int, v uint32) {
	binary.LittleEndian.PutUint32(b[offset:offset+4], v)
}
