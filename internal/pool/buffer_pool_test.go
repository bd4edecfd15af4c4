package pool

import "testing"

func TestGetReturnsRequestedLength(t *testing.T) {
	for _, size := range []int{1, HeaderProbeSize, HeaderProbeSize + 1, MapBlockSize} {
		buf := GetBuffer(size)
		if len(buf) != size {
			t.Fatalf("GetBuffer(%d) len = %d", size, len(buf))
		}
		PutBuffer(buf)
	}
}

func TestFindBestPoolSize(t *testing.T) {
	bp := NewBufferPool()
	cases := []struct {
		in   int
		want int
	}{
		{1, HeaderProbeSize},
		{HeaderProbeSize, HeaderProbeSize},
		{HeaderProbeSize + 1, MapBlockSize},
		{MapBlockSize, MapBlockSize},
		{MapBlockSize + 1, RC4BlockSize},
		{RC4BlockSize + 1, nextPowerOfTwo(RC4BlockSize + 1)},
	}
	for _, c := range cases {
		if got := bp.findBestPoolSize(c.in); got != c.want {
			t.Errorf("findBestPoolSize(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 1024: 1024, 1025: 2048}
	for in, want := range cases {
		if got := nextPowerOfTwo(in); got != want {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestPutDiscardsMismatchedCapacity(t *testing.T) {
	bp := NewBufferPool()
	odd := make([]byte, 17, 17) // capacity matches no canonical size
	bp.Put(odd)                 // must not panic
}
