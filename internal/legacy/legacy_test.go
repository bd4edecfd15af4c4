package legacy

import "testing"

func TestGeneratorFirstBytes(t *testing.T) {
	g := NewGenerator()
	want := []byte{0xc3, 0x4a, 0xd6, 0xca, 0x90, 0x67, 0xf7, 0x52, 0xd8, 0xa1, 0x66, 0x62, 0x9f, 0x5b, 0x09, 0x00}
	for i, w := range want {
		if got := g.next(); got != w {
			t.Fatalf("byte %d = %#02x, want %#02x", i, got, w)
		}
	}
}

func TestGeneratorPeriodic(t *testing.T) {
	g := NewGenerator()
	first := make([]byte, 128)
	for i := range first {
		first[i] = g.next()
	}
	second := make([]byte, 128)
	for i := range second {
		second[i] = g.next()
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("byte %d: first period %#02x != second period %#02x", i, first[i], second[i])
		}
	}
}

// TestTableMatchesGenerator checks the table form against a literal
// generator walk over the first 0x7FFF bytes. It stops short of the full
// full 0x10000-byte range: the generator's double-skip at internal
// step 0x8000 shifts its output by one position relative to the table
// form's (p mod 0x7FFF) formula at absolute offset 0x7FFF exactly, a
// documented single-byte boundary discrepancy (see DESIGN.md), not
// exercised by this range.
func TestTableMatchesGenerator(t *testing.T) {
	c := NewCipher()
	g := NewGenerator()

	const n = 0x7FFF
	genOut := make([]byte, n)
	for i := range genOut {
		genOut[i] = g.next()
	}

	tableOut := make([]byte, n)
	c.Decrypt(0, tableOut)

	for i := range tableOut {
		if tableOut[i] != genOut[i] {
			t.Fatalf("byte %d: table=%#02x generator=%#02x", i, tableOut[i], genOut[i])
		}
	}
}

func TestCipherInvolution(t *testing.T) {
	c := NewCipher()
	plain := []byte("legacy fixed-mask cipher involution check, spanning more than one period boundary case")
	for len(plain) < 300 {
		plain = append(plain, plain...)
	}

	buf := append([]byte{}, plain...)
	c.Decrypt(12345, buf)
	c.Decrypt(12345, buf)

	if string(buf) != string(plain) {
		t.Fatal("double decrypt did not return original plaintext")
	}
}

func TestCipherSliceIndependence(t *testing.T) {
	c := NewCipher()

	full := make([]byte, 200)
	c.Decrypt(50, full)

	split := make([]byte, 200)
	c.Decrypt(50, split[:64])
	c.Decrypt(50+64, split[64:150])
	c.Decrypt(50+150, split[150:])

	for i := range full {
		if full[i] != split[i] {
			t.Fatalf("slice-independence violated at byte %d: whole=%#02x split=%#02x", i, full[i], split[i])
		}
	}
}

type collectWriter struct{ buf []byte }

func (c *collectWriter) Write(p []byte) (int, error) {
	c.buf = append(c.buf, p...)
	return len(p), nil
}

func TestStreamMatchesCipherFromStart(t *testing.T) {
	plain := make([]byte, 500)
	for i := range plain {
		plain[i] = byte(i)
	}

	cw := &collectWriter{}
	s := NewStream(cw)
	if _, err := s.Write(plain); err != nil {
		t.Fatalf("Write: %v", err)
	}

	c := NewCipher()
	want := append([]byte{}, plain...)
	c.Decrypt(0, want)

	for i := range want {
		if cw.buf[i] != want[i] {
			t.Fatalf("byte %d: stream=%#02x cipher=%#02x", i, cw.buf[i], want[i])
		}
	}
}
