package qmc2

import (
	"math"
	"sync"
)

// RecommendedRC4BlockSize is the caller hint for the long-key RC4-variant
// cipher: 2.5 MiB, a multiple of otherSegmentSize.
const RecommendedRC4BlockSize = (1024 * 1024) * 5 / 2

const (
	firstSegmentSize = 0x80
	otherSegmentSize = 0x1400
)

// rc4BoxPool hands out scratch S-box slices sized for a given key length,
// grounded on algo/qmc/cipher_rc4.go's rc4BoxPool. Pool
// membership never leaks into output: every borrowed slice is immediately
// overwritten by a full copy of the permuted S-box before use.
type rc4BoxPool struct {
	mu    sync.Mutex
	pools map[int]*sync.Pool
}

var globalRC4BoxPool = &rc4BoxPool{pools: make(map[int]*sync.Pool)}

func (p *rc4BoxPool) get(n int) []byte {
	p.mu.Lock()
	pool, ok := p.pools[n]
	if !ok {
		pool = &sync.Pool{New: func() interface{} { return make([]byte, n) }}
		p.pools[n] = pool
	}
	p.mu.Unlock()
	return pool.Get().([]byte)
}

func (p *rc4BoxPool) put(n int, buf []byte) {
	p.mu.Lock()
	pool := p.pools[n]
	p.mu.Unlock()
	if pool != nil {
		pool.Put(buf) //nolint:staticcheck
	}
}

// rc4Cipher implements the long-key (> 300 bytes) segmented RC4-variant
// stream. All fields are immutable after construction; every
// decrypt call works on a local scratch copy of s.
type rc4Cipher struct {
	key  []byte
	s    []byte // KSA-permuted S-box, len == n
	hash uint32
	n    int
}

func newRC4Cipher(key []byte) *rc4Cipher {
	n := len(key)
	s := make([]byte, n)
	for i := range s {
		s[i] = byte(i)
	}
	j := 0
	for i := 0; i < n; i++ {
		j = (j + int(s[i]) + int(key[i])) % n
		s[i], s[j] = s[j], s[i]
	}

	return &rc4Cipher{
		key:  key,
		s:    s,
		hash: hashBase(key),
		n:    n,
	}
}

func (c *rc4Cipher) RecommendedBlockSize() int {
	return RecommendedRC4BlockSize
}

// hashBase computes the 32-bit multiplicative fingerprint used per-segment.
// The "stop on non-increase or wrap to zero" branch is load-bearing for
// byte-exact compatibility; it is not a bug.
func hashBase(data []byte) uint32 {
	h := uint32(1)
	for _, b := range data {
		if b == 0 {
			continue
		}
		next := h * uint32(b)
		if next == 0 || next <= h {
			break
		}
		h = next
	}
	return h
}

// segmentKey computes floor((hash / ((id+1)*seed)) * 100) in IEEE-754
// double precision, truncated toward zero to a 64-bit unsigned value using
// Rust `as`-cast saturating semantics: +Inf/overflow saturates to
// math.MaxUint64, NaN and negative values saturate to 0. seed may
// legitimately be zero (the RC4 test key starts with a zero byte), which
// makes the division produce +Inf; preserving the saturating cast here is
// required to reproduce the documented test vectors.
func segmentKey(hash uint32, id int64, seed byte) uint64 {
	v := float64(hash) / (float64(id+1) * float64(seed)) * 100.0
	return saturatingF64ToU64(v)
}

func saturatingF64ToU64(f float64) uint64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f < 0:
		return 0
	case f >= math.MaxUint64:
		return math.MaxUint64
	default:
		return uint64(f)
	}
}

// rc4Derive steps the bespoke PRGA once: j increments without the usual i
// counter, k plays the role of textbook RC4's j.
func rc4Derive(s []byte, j, k *int) byte {
	n := len(s)
	*j = (*j + 1) % n
	*k = (int(s[*j]) + *k) % n
	s[*j], s[*k] = s[*k], s[*j]
	idx := (int(s[*j]) + int(s[*k])) % n
	return s[idx]
}

func (c *rc4Cipher) decryptFirstSegment(offset int64, buf []byte) {
	for i := range buf {
		p := offset + int64(i)
		key1 := c.key[p%int64(c.n)]
		key2 := segmentKey(c.hash, p, key1)
		buf[i] ^= c.key[key2%uint64(c.n)]
	}
}

func (c *rc4Cipher) decryptOtherSegment(offset int64, buf []byte) {
	seg := offset / otherSegmentSize
	segSmall := seg & 0x1FF
	discard := int(segmentKey(c.hash, seg, c.key[segSmall])&0x1FF) + int(offset%otherSegmentSize)

	s := globalRC4BoxPool.get(c.n)
	defer globalRC4BoxPool.put(c.n, s)
	copy(s, c.s)

	j, k := 0, 0
	for i := 0; i < discard; i++ {
		rc4Derive(s, &j, &k)
	}
	for i := range buf {
		buf[i] ^= rc4Derive(s, &j, &k)
	}
}

// Decrypt applies the cipher to buf, whose bytes represent
// [offset, offset+len(buf)) of the plaintext stream. It handles arbitrary
// (offset, len) by walking the first segment, then any unaligned partial
// segment, then whole segments, to match the original alignment rules.
func (c *rc4Cipher) Decrypt(offset int64, buf []byte) {
	pos := 0
	cur := offset
	remaining := len(buf)

	if cur < firstSegmentSize && remaining > 0 {
		n := int(firstSegmentSize - cur)
		if n > remaining {
			n = remaining
		}
		c.decryptFirstSegment(cur, buf[pos:pos+n])
		pos += n
		cur += int64(n)
		remaining -= n
	}

	for remaining > 0 {
		segStart := (cur / otherSegmentSize) * otherSegmentSize
		segEnd := segStart + otherSegmentSize
		n := int(segEnd - cur)
		if n > remaining {
			n = remaining
		}
		c.decryptOtherSegment(cur, buf[pos:pos+n])
		pos += n
		cur += int64(n)
		remaining -= n
	}
}
