package qmc2

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"

	"go.qmcdec.dev/cli/internal/tea"
)

const (
	encV2Prefix  = "QQMusic EncV2,Key:"
	encV2Stage1Key = "386ZJY!@#*$%^&)("
	encV2Stage2Key = "**#!(#$%&^a1cZ,T"
)

// simpleMakeKey reproduces simple_make_key(seed, size): a fixed constant
// table generator built from 32-bit float tan/abs, isolated to single
// precision so the result matches the original bit-for-bit.
func simpleMakeKey(seed byte, size int) []byte {
	out := make([]byte, size)
	for i := 0; i < size; i++ {
		value := float32(seed) + float32(i)*0.1
		out[i] = byte(float32(100) * float32(math.Abs(float64(float32(math.Tan(float64(value))))))) //nolint:unconvert
	}
	return out
}

// deriveTEAKey interleaves the fixed simple-key bytes with the 8-byte EKey
// header to produce the 16-byte per-file TEA key.
func deriveTEAKey(header []byte) []byte {
	simple := simpleMakeKey(106, 8)
	key := make([]byte, 16)
	for k := 0; k < 8; k++ {
		key[2*k] = simple[k]
		key[2*k+1] = header[k]
	}
	return key
}

// ParseEKey recovers the raw stream key from a base64-wrapped, possibly
// EncV2-wrapped EKey string.
func ParseEKey(ekey string) ([]byte, error) {
	trimmed := bytes.TrimRight([]byte(ekey), "\x00")

	decoded, err := base64.StdEncoding.DecodeString(string(trimmed))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEKeyParse, err)
	}
	if len(decoded) < 8 {
		return nil, fmt.Errorf("%w: decoded length %d < 8", ErrEKeyParse, len(decoded))
	}

	v1Body := decoded
	if bytes.HasPrefix(decoded, []byte(encV2Prefix)) {
		v1Body, err = unwrapEncV2(decoded[len(encV2Prefix):])
		if err != nil {
			return nil, err
		}
		if len(v1Body) < 8 {
			return nil, fmt.Errorf("%w: encv2 inner body length %d < 8", ErrEKeyParse, len(v1Body))
		}
	}

	header := v1Body[:8]
	body := v1Body[8:]

	teaKey := deriveTEAKey(header)
	plainBody, err := tea.Decrypt(teaKey, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQMC2KeyDerive, err)
	}

	return append(append([]byte{}, header...), plainBody...), nil
}

// unwrapEncV2 reverses the EncV2 envelope: two chained TEA decrypt passes
// followed by an inner base64 decode.
func unwrapEncV2(body []byte) ([]byte, error) {
	t1, err := tea.Decrypt([]byte(encV2Stage1Key), body)
	if err != nil {
		return nil, fmt.Errorf("%w: encv2 stage1: %v", ErrQMC2KeyDerive, err)
	}
	t2, err := tea.Decrypt([]byte(encV2Stage2Key), t1)
	if err != nil {
		return nil, fmt.Errorf("%w: encv2 stage2: %v", ErrQMC2KeyDerive, err)
	}
	inner, err := base64.StdEncoding.DecodeString(string(bytes.TrimRight(t2, "\x00")))
	if err != nil {
		return nil, fmt.Errorf("%w: encv2 inner base64: %v", ErrEKeyParse, err)
	}
	return inner, nil
}

// GenerateEKey is the inverse of ParseEKey for the V1 envelope only; it
// exists for round-trip testing, not production use.
func GenerateEKey(rawKey []byte) (string, error) {
	if len(rawKey) < 8 {
		return "", fmt.Errorf("%w: raw key length %d < 8", ErrEKeyParse, len(rawKey))
	}
	header := rawKey[:8]
	body := rawKey[8:]

	teaKey := deriveTEAKey(header)
	cipherBody, err := tea.Encrypt(teaKey, body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrQMC2KeyDerive, err)
	}

	v1Body := append(append([]byte{}, header...), cipherBody...)
	return base64.StdEncoding.EncodeToString(v1Body), nil
}
