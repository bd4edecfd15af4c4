package qmc2

import (
	"bytes"
	"unicode/utf8"

	"go.qmcdec.dev/cli/internal/bytesx"
)

// RecommendedDetectionSize is the window size a caller should read from the
// tail of a file before calling Detect.
const RecommendedDetectionSize = 0x40

// magicQTag is "QTag" read as a little-endian uint32.
const magicQTag uint32 = 0x67615451

// maxV1KeySize bounds the legal v1 key-size prefix. Widening this would
// accept random ciphertext tails as size-prefixes.
const maxV1KeySize = 0x400

// Detection reports where, relative to the start of the detection window,
// the EKey and end-of-ciphertext live. Positions may be negative when the
// EKey lies before the window the caller read.
type Detection struct {
	EOFPosition  int64
	EKeyPosition int64
	EKeyLen      int
	SongID       string
}

// Detect classifies the trailing bytes of a QMC/QMC2 file. buf is
// conventionally the last RecommendedDetectionSize bytes of the file, but
// any buffer of length >= 8 is accepted.
func Detect(buf []byte) (Detection, error) {
	if len(buf) < 8 {
		return Detection{}, ErrBufferTooSmall
	}

	if bytesx.ReadU32LE(buf, len(buf)-4) == magicQTag {
		return detectV2(buf)
	}

	n := bytesx.ReadU32LE(buf, len(buf)-4)
	switch {
	case n == 0:
		return Detection{}, ErrZerosAtEOF
	case n <= maxV1KeySize:
		return detectV1(buf, n), nil
	default:
		return Detection{}, &UnknownMagicLE32{Magic: n}
	}
}

func detectV1(buf []byte, keySize uint32) Detection {
	ekeyLoc := int64(len(buf)-4) - int64(keySize)
	return Detection{
		EOFPosition:  ekeyLoc,
		EKeyPosition: ekeyLoc,
		EKeyLen:      int(keySize),
		SongID:       "",
	}
}

func detectV2(buf []byte) (Detection, error) {
	metaSize := bytesx.ReadU32BE(buf, len(buf)-8)
	ekeyLoc := int64(len(buf)-8) - int64(metaSize)

	searchStart := ekeyLoc
	if searchStart < 0 {
		searchStart = 0
	}
	endOfMeta := len(buf) - 8

	ekeyEnd := findComma(buf, int(searchStart), endOfMeta)
	if ekeyEnd < 0 {
		return Detection{}, ErrCouldNotIdentifyEndOfEKey
	}

	songID := ""
	if songIDEnd := findComma(buf, ekeyEnd+1, endOfMeta); songIDEnd >= 0 {
		raw := buf[ekeyEnd+1 : songIDEnd]
		if utf8.Valid(raw) {
			songID = string(raw)
		}
	}

	return Detection{
		EOFPosition:  ekeyLoc,
		EKeyPosition: ekeyLoc,
		EKeyLen:      ekeyEnd - int(ekeyLoc),
		SongID:       songID,
	}, nil
}

// findComma returns the index of the first ',' in buf[start:end], or -1.
// start may be negative (meaning "search from 0"); callers clamp it first.
func findComma(buf []byte, start, end int) int {
	if start < 0 {
		start = 0
	}
	if start >= end || end > len(buf) {
		return -1
	}
	idx := bytes.IndexByte(buf[start:end], ',')
	if idx < 0 {
		return -1
	}
	return start + idx
}
