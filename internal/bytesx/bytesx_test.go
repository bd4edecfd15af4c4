package bytesx

import "testing"

func TestReadWriteRoundTrip(t *testing.T) {
	buf := make([]byte, 12)

	WriteU32BE(buf, 4, 0xDEADBEEF)
	if got := ReadU32BE(buf, 4); got != 0xDEADBEEF {
		t.Fatalf("ReadU32BE = %#x, want 0xDEADBEEF", got)
	}

	WriteU32LE(buf, 0, 0x01020304)
	if got := ReadU32LE(buf, 0); got != 0x01020304 {
		t.Fatalf("ReadU32LE = %#x, want 0x01020304", got)
	}
}

func TestReadU32LEKnownBytes(t *testing.T) {
	buf := []byte{0x04, 0x03, 0x02, 0x01}
	if got := ReadU32LE(buf, 0); got != 0x01020304 {
		t.Fatalf("ReadU32LE = %#x, want 0x01020304", got)
	}
	if got := ReadU32BE(buf, 0); got != 0x04030201 {
		t.Fatalf("ReadU32BE = %#x, want 0x04030201", got)
	}
}
