package qmc2

// Decryptor is the uniform interface the cipher factory returns. Dispatch
// happens once per decrypt call, not per byte.
type Decryptor interface {
	RecommendedBlockSize() int
	Decrypt(offset int64, buf []byte)
}

// keyThreshold is the load-bearing length boundary between the map cipher
// and the RC4-variant cipher.
const keyThreshold = 300

// DecryptFactory parses ekey and returns the appropriate Decryptor: the
// RC4-variant cipher when the raw key exceeds keyThreshold bytes, the map
// cipher otherwise.
func DecryptFactory(ekey string) (Decryptor, error) {
	key, err := ParseEKey(ekey)
	if err != nil {
		return nil, err
	}
	if len(key) > keyThreshold {
		return newRC4Cipher(key), nil
	}
	return newMapCipher(key), nil
}
