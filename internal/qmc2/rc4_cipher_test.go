package qmc2

import "testing"

func rc4TestKey() []byte {
	key := make([]byte, 255)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestHashBase(t *testing.T) {
	if got := hashBase([]byte{1, 99}); got != 1 {
		t.Fatalf("hashBase([1,99]) = %#x, want 0x1", got)
	}

	ff16 := make([]byte, 16)
	for i := range ff16 {
		ff16[i] = 0xFF
	}
	if got := hashBase(ff16); got != 0xFC05FC01 {
		t.Fatalf("hashBase(0xFF*16) = %#x, want 0xFC05FC01", got)
	}

	withZeros := append([]byte{0}, append(ff16, 0)...)
	if got := hashBase(withZeros); got != 0xFC05FC01 {
		t.Fatalf("hashBase with zero bytes inserted = %#x, want 0xFC05FC01 (zeros must be skipped)", got)
	}
}

func TestRC4CipherFirstSegment(t *testing.T) {
	c := newRC4Cipher(rc4TestKey())
	buf := make([]byte, 16)
	c.Decrypt(0, buf)

	want := []byte{0, 50, 16, 8, 5, 3, 2, 1, 1, 1, 0, 0, 0, 0, 0, 0}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("byte %d = %d, want %d (full: %v)", i, buf[i], want[i], buf)
		}
	}
}

func TestRC4CipherFirstOtherBoundary(t *testing.T) {
	c := newRC4Cipher(rc4TestKey())
	buf := make([]byte, 16)
	c.Decrypt(0x80-8, buf)

	want := []byte{0, 0, 0, 0, 0, 0, 0, 0, 141, 97, 122, 193, 166, 101, 233, 214}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("byte %d = %d, want %d (full: %v)", i, buf[i], want[i], buf)
		}
	}
}

func TestRC4CipherSegmentBoundary(t *testing.T) {
	c := newRC4Cipher(rc4TestKey())
	buf := make([]byte, 16)
	c.Decrypt(0x1400-8, buf)

	want := []byte{118, 193, 176, 83, 10, 98, 105, 234, 151, 56, 198, 1, 226, 173, 127, 4}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("byte %d = %d, want %d (full: %v)", i, buf[i], want[i], buf)
		}
	}
}

func TestRC4CipherSecondSegment(t *testing.T) {
	c := newRC4Cipher(rc4TestKey())
	buf := make([]byte, 16)
	c.Decrypt(0x1400, buf)

	want := []byte{151, 56, 198, 1, 226, 173, 127, 4, 181, 165, 171, 21, 82, 152, 195, 210}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("byte %d = %d, want %d (full: %v)", i, buf[i], want[i], buf)
		}
	}
}

func TestRC4CipherEntireSegment(t *testing.T) {
	c := newRC4Cipher(rc4TestKey())
	buf := make([]byte, 0x1401)
	c.Decrypt(0x1400, buf)

	want := []byte{151, 56, 198, 1, 226, 173, 127, 4, 181, 165, 171, 21, 82, 152, 195, 210}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("byte %d = %d, want %d (full prefix: %v)", i, buf[i], want[i], buf[:16])
		}
	}
}

func TestRC4CipherInvolution(t *testing.T) {
	c := newRC4Cipher(rc4TestKey())
	plain := []byte("this is a much longer plaintext spanning multiple RC4 segments ")
	for len(plain) < 0x1500 {
		plain = append(plain, plain...)
	}
	plain = plain[:0x1500]

	buf := append([]byte{}, plain...)
	c.Decrypt(3, buf)
	c.Decrypt(3, buf)

	if string(buf) != string(plain) {
		t.Fatal("double decrypt did not return original plaintext")
	}
}

func TestRC4CipherSliceIndependence(t *testing.T) {
	key := rc4TestKey()

	full := make([]byte, 0x1500)
	c1 := newRC4Cipher(key)
	c1.Decrypt(10, full)

	split := make([]byte, 0x1500)
	c2 := newRC4Cipher(key)
	c2.Decrypt(10, split[:100])
	c2.Decrypt(10+100, split[100:0x1000-100])
	c2.Decrypt(10+0x1000-100, split[0x1000-100:])

	for i := range full {
		if full[i] != split[i] {
			t.Fatalf("slice-independence violated at byte %d: whole=%#02x split=%#02x", i, full[i], split[i])
		}
	}
}
