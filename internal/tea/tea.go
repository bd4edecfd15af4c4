// Package tea layers the real QQMusic/tc_tea EKey dialect on top of the
// standard fixed-block TEA primitive from golang.org/x/crypto/tea, the same
// external package github.com/dromara/dongle wraps for its own TEA stream
// cipher.
//
// The dialect is not plain CBC: before decryption each ciphertext block is
// XORed with the previous block's raw TEA output, and after decryption
// with the previous ciphertext block (and the mirror image on encrypt,
// where the raw TEA input is plaintext XOR previous ciphertext), and the decrypted
// buffer carries a variable-length random salt and a fixed zero-padding
// footer that must validate before the real payload can be extracted.
// Decrypted layout, all lengths in bytes:
//
//	[1 control byte][2 + pad_len salt][payload][7 zero bytes]
//
// pad_len is the low 3 bits of the control byte. The whole buffer's length
// equals the ciphertext length (TEA only ever maps blocks 1:1); stripping
// the control byte, salt, and zero footer is what shortens plaintext
// relative to ciphertext.
package tea

import (
	"errors"
	"fmt"

	xtea "golang.org/x/crypto/tea"
)

const (
	blockSize = 8
	// rounds is the dialect's 32 Feistel rounds (16 TEA cycles):
	// golang.org/x/crypto/tea counts each Feistel half-round, running
	// rounds/2 full cycles.
	rounds = 32

	saltLen      = 2
	zeroLen      = 7
	minCipherLen = 16
)

// ErrInvalidLength is returned when the input is shorter than the minimum
// salted-block length or not a whole number of 8-byte TEA blocks.
var ErrInvalidLength = errors.New("tea: input length is invalid for the salted TEA layout")

// ErrInvalidPadding is returned when the trailing zero-padding footer fails
// to validate, meaning either the key or the ciphertext is wrong.
var ErrInvalidPadding = errors.New("tea: zero-padding footer failed validation")

// Decrypt reverses Encrypt, recovering the salted body (payload shorter
// than src by 10+pad_len bytes) from ciphertext chained with the
// double feedback described above.
func Decrypt(key, src []byte) ([]byte, error) {
	if len(src) < minCipherLen || len(src)%blockSize != 0 {
		return nil, ErrInvalidLength
	}
	block, err := xtea.NewCipherWithRounds(key, rounds)
	if err != nil {
		return nil, fmt.Errorf("tea: new cipher: %w", err)
	}

	plain := make([]byte, len(src))

	var ivPlain, ivCrypt [blockSize]byte
	block.Decrypt(plain[0:blockSize], src[0:blockSize])
	copy(ivPlain[:], plain[0:blockSize])
	copy(ivCrypt[:], src[0:blockSize])

	for off := blockSize; off < len(src); off += blockSize {
		var xored [blockSize]byte
		for i := 0; i < blockSize; i++ {
			xored[i] = src[off+i] ^ ivPlain[i]
		}
		var decoded [blockSize]byte
		block.Decrypt(decoded[:], xored[:])
		copy(ivPlain[:], decoded[:])
		for i := 0; i < blockSize; i++ {
			decoded[i] ^= ivCrypt[i]
		}
		copy(plain[off:off+blockSize], decoded[:])
		copy(ivCrypt[:], src[off:off+blockSize])
	}

	footer := plain[len(plain)-zeroLen:]
	for _, b := range footer {
		if b != 0 {
			return nil, ErrInvalidPadding
		}
	}

	padLen := int(plain[0] & 0x7)
	bodyStart := 1 + saltLen + padLen
	bodyEnd := len(plain) - zeroLen
	if bodyStart > bodyEnd {
		return nil, ErrInvalidPadding
	}
	return append([]byte{}, plain[bodyStart:bodyEnd]...), nil
}

// Encrypt is the exact inverse of Decrypt, used only by GenerateEKey for
// test round-trips; production decryption never calls it. The salt bytes
// are zero-filled rather than random: any salt content round-trips
// correctly, and Decrypt never inspects the salt bytes themselves, only
// the control byte's low 3 bits and the zero footer.
func Encrypt(key, payload []byte) ([]byte, error) {
	rawLen := 1 + saltLen + zeroLen + len(payload)
	padLen := (blockSize - rawLen%blockSize) % blockSize

	plain := make([]byte, rawLen+padLen)
	plain[0] = byte(padLen)
	copy(plain[1+saltLen+padLen:], payload)

	block, err := xtea.NewCipherWithRounds(key, rounds)
	if err != nil {
		return nil, fmt.Errorf("tea: new cipher: %w", err)
	}

	dst := make([]byte, len(plain))

	var ivPlain, ivCrypt [blockSize]byte
	block.Encrypt(dst[0:blockSize], plain[0:blockSize])
	copy(ivPlain[:], plain[0:blockSize])
	copy(ivCrypt[:], dst[0:blockSize])

	for off := blockSize; off < len(plain); off += blockSize {
		var xored [blockSize]byte
		for i := 0; i < blockSize; i++ {
			xored[i] = plain[off+i] ^ ivCrypt[i]
		}
		var encoded [blockSize]byte
		block.Encrypt(encoded[:], xored[:])
		for i := 0; i < blockSize; i++ {
			encoded[i] ^= ivPlain[i]
		}
		copy(dst[off:off+blockSize], encoded[:])
		copy(ivPlain[:], xored[:])
		copy(ivCrypt[:], encoded[:])
	}

	return dst, nil
}
