package pixelops

import "testing"

func TestAccumulateStackMatchesSerial(t *testing.T) {
	const n = 50_000 // above parallelThreshold, exercises the goroutine path
	src := make([]byte, n)
	for i := range src {
		src[i] = byte(i % 251)
	}

	got := make([]int32, n)
	AccumulateStack(got, src)

	want := make([]int32, n)
	for i := range want {
		want[i] = int32(src[i])
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pixel %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestAccumulateStackIsAdditive(t *testing.T) {
	dst := []int32{1, 2, 3}
	AccumulateStack(dst, []byte{10, 20, 30})
	want := []int32{11, 22, 33}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("index %d: got %d, want %d", i, dst[i], want[i])
		}
	}
}

func TestUpdateMax(t *testing.T) {
	const n = 50_000
	dst := make([]byte, n)
	src := make([]byte, n)
	for i := range src {
		dst[i] = byte(i % 100)
		src[i] = byte((i + 37) % 100)
	}
	UpdateMax(dst, src)
	for i := range dst {
		want := byte(i % 100)
		if s := byte((i + 37) % 100); s > want {
			want = s
		}
		if dst[i] != want {
			t.Fatalf("pixel %d: got %d, want %d", i, dst[i], want)
		}
	}
}

func TestAccumulateInt32(t *testing.T) {
	dst := []int32{5, 5, 5}
	AccumulateInt32(dst, []int32{1, 2, 3})
	want := []int32{6, 7, 8}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("index %d: got %d, want %d", i, dst[i], want[i])
		}
	}
}

func TestClipByte(t *testing.T) {
	cases := []struct {
		in   int32
		want byte
	}{
		{-100, 0},
		{0, 0},
		{128, 128},
		{255, 255},
		{9000, 255},
	}
	for _, c := range cases {
		if got := ClipByte(c.in); got != c.want {
			t.Fatalf("ClipByte(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}
