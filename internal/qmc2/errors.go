package qmc2

import (
	"errors"
	"fmt"
)

// Detection errors.
var (
	ErrBufferTooSmall            = errors.New("qmc2: detection buffer shorter than 8 bytes")
	ErrZerosAtEOF                = errors.New("qmc2: trailing magic is all zero")
	ErrCouldNotIdentifyEndOfEKey = errors.New("qmc2: could not find a comma terminating the ekey in v2 metadata")
)

// UnknownMagicLE32 is returned when the trailing 4-byte little-endian value
// is neither the QTag magic nor a plausible v1 key-size prefix.
type UnknownMagicLE32 struct {
	Magic uint32
}

func (e *UnknownMagicLE32) Error() string {
	return fmt.Sprintf("qmc2: unknown trailing magic %#08x", e.Magic)
}

// EKey / key-derivation errors.
var (
	ErrEKeyParse      = errors.New("qmc2: ekey parse error")
	ErrQMC2KeyDerive  = errors.New("qmc2: qmc2 key derivation error")
)
