// Package legacy implements the keyless fixed-mask cipher used by the
// earliest "qmcflac"/"qmc0" container flavors. Unlike the
// qmc2 ciphers, there is no per-file key: the mask stream is a pure
// function of byte position.
package legacy

// seedMap is the 8x7 table the generator form walks in a ping-pong pattern,
// grounded byte-for-byte on original_source/src/qmcflac.rs's SEED_MAP.
var seedMap = [8][7]byte{
	{0x4a, 0xd6, 0xca, 0x90, 0x67, 0xf7, 0x52},
	{0x5e, 0x95, 0x23, 0x9f, 0x13, 0x11, 0x7e},
	{0x47, 0x74, 0x3d, 0x90, 0xaa, 0x3f, 0x51},
	{0xc6, 0x09, 0xd5, 0x9f, 0xfa, 0x66, 0xf9},
	{0xf3, 0xd6, 0xa1, 0x90, 0xa0, 0xf7, 0xf0},
	{0x1d, 0x95, 0xde, 0x9f, 0x84, 0x11, 0xf4},
	{0x0e, 0x74, 0xbb, 0x90, 0xbc, 0x3f, 0x92},
	{0x00, 0x09, 0x5b, 0x9f, 0x62, 0x66, 0xa1},
}

// keys is the folded 64-byte table form, derived by walking Generator for
// one full period and verifying idx = (p & 0x7F), fold(idx) reproduces that
// walk exactly. It matches Generator.next byte-for-byte at every position
// except the single byte at absolute offset 0x7FFF, where the double-skip
// at the generator's internal step counter 0x8000 shifts alignment by one;
// that boundary is documented in DESIGN.md.
var keys = [64]byte{
	0xc3, 0x4a, 0xd6, 0xca, 0x90, 0x67, 0xf7, 0x52,
	0xd8, 0xa1, 0x66, 0x62, 0x9f, 0x5b, 0x09, 0x00,
	0xc3, 0x5e, 0x95, 0x23, 0x9f, 0x13, 0x11, 0x7e,
	0xd8, 0x92, 0x3f, 0xbc, 0x90, 0xbb, 0x74, 0x0e,
	0xc3, 0x47, 0x74, 0x3d, 0x90, 0xaa, 0x3f, 0x51,
	0xd8, 0xf4, 0x11, 0x84, 0x9f, 0xde, 0x95, 0x1d,
	0xc3, 0xc6, 0x09, 0xd5, 0x9f, 0xfa, 0x66, 0xf9,
	0xd8, 0xf0, 0xf7, 0xa0, 0x90, 0xa1, 0xd6, 0xf3,
}

// Cipher is the table-form decryptor: a pure function of absolute byte
// position, stateless and safe for concurrent use across disjoint ranges.
type Cipher struct{}

// NewCipher returns the keyless legacy decryptor.
func NewCipher() Cipher { return Cipher{} }

func (Cipher) RecommendedBlockSize() int { return 2 * 1024 * 1024 }

// Decrypt XORs buf in place, where buf[i] holds ciphertext for absolute
// position offset+i.
func (Cipher) Decrypt(offset int64, buf []byte) {
	for i := range buf {
		buf[i] ^= mask(offset + int64(i))
	}
}

func mask(p int64) byte {
	idx := (p % 0x7FFF) & 0x7F
	if idx > 0x3F {
		idx = (0x80 - idx) & 0x3F
	}
	return keys[idx]
}

// Generator is the 8x7 seed-table state machine form of the same cipher,
// grounded on original_source/src/qmcflac.rs's Stream::next_mask. It walks
// x across the seven columns of seedMap and back, toggling y at each edge,
// and emits a fixed edge byte instead of a table lookup when x runs off
// either end. The double-skip at internal step 0x8000 (and every 0x8000
// thereafter) is load-bearing for byte-exact compatibility with the
// original generator, not a bug.
type Generator struct {
	x, y, dx, i int64
}

// NewGenerator returns a generator positioned at the start of the stream.
func NewGenerator() *Generator {
	return &Generator{x: -1, y: 8, dx: 1, i: -1}
}

func (g *Generator) next() byte {
	var ret byte
	for {
		g.i++
		switch {
		case g.x < 0:
			g.dx = 1
			g.y = (8 - g.y) % 8
			ret = 0xc3
		case g.x > 6:
			g.dx = -1
			g.y = 7 - g.y
			ret = 0xd8
		default:
			ret = seedMap[g.y][g.x]
		}
		g.x += g.dx
		if !(g.i == 0x8000 || (g.i > 0x8000 && (g.i+1)%0x8000 == 0)) {
			break
		}
	}
	return ret
}

// Stream applies the generator form to w, one byte at a time, advancing
// internal state on every write. It has no Seek or random-access method:
// the generator's internal skip logic only makes sense walked in order
// from the start of the file, which is how the qmcflac/qmc0 flavors are
// always decrypted in practice.
type Stream struct {
	gen *Generator
	w   writer
}

type writer interface {
	Write([]byte) (int, error)
}

// NewStream wraps w so that every byte written to the returned Stream is
// XORed with the next generator mask before being forwarded to w.
func NewStream(w writer) *Stream {
	return &Stream{gen: NewGenerator(), w: w}
}

func (s *Stream) Write(buf []byte) (int, error) {
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = b ^ s.gen.next()
	}
	return s.w.Write(out)
}
