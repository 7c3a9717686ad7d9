package median

import "testing"

func TestHistogramMedianSinglePixelOddSamples(t *testing.T) {
	h := NewHistogram(1)
	for _, v := range []byte{10, 20, 30, 40, 50} {
		h.Add([]byte{v})
	}
	dst := make([]byte, 1)
	h.Median(dst)
	if dst[0] != 30 {
		t.Fatalf("median = %d, want 30", dst[0])
	}
}

func TestHistogramMedianNoSamples(t *testing.T) {
	h := NewHistogram(3)
	dst := make([]byte, 3)
	h.Median(dst)
	for i, v := range dst {
		if v != 0 {
			t.Fatalf("pixel %d = %d, want 0 with no samples", i, v)
		}
	}
}

func TestHistogramResetClearsSamples(t *testing.T) {
	h := NewHistogram(2)
	h.Add([]byte{1, 2})
	h.Add([]byte{3, 4})
	if h.Samples() != 2 {
		t.Fatalf("Samples() = %d, want 2", h.Samples())
	}
	h.Reset()
	if h.Samples() != 0 {
		t.Fatalf("Samples() after Reset = %d, want 0", h.Samples())
	}
	dst := make([]byte, 2)
	h.Median(dst)
	if dst[0] != 0 || dst[1] != 0 {
		t.Fatalf("median after reset = %v, want zeros", dst)
	}
}

func TestHistogramMultiplePixelsIndependent(t *testing.T) {
	h := NewHistogram(2)
	h.Add([]byte{0, 255})
	h.Add([]byte{10, 200})
	h.Add([]byte{20, 150})
	dst := make([]byte, 2)
	h.Median(dst)
	if dst[0] != 10 {
		t.Fatalf("pixel 0 median = %d, want 10", dst[0])
	}
	if dst[1] != 200 {
		t.Fatalf("pixel 1 median = %d, want 200", dst[1])
	}
}

func TestHistogramConservation(t *testing.T) {
	const frameSize = 16
	h := NewHistogram(frameSize)
	frame := make([]byte, frameSize)
	for n := 0; n < 255; n++ {
		for i := range frame {
			frame[i] = byte((n + i) % 256)
		}
		h.Add(frame)
	}
	if h.Samples() != 255 {
		t.Fatalf("Samples() = %d, want 255", h.Samples())
	}
	var total uint64
	for _, c := range h.counts {
		total += uint64(c)
	}
	if total != 255*frameSize {
		t.Fatalf("total histogram count = %d, want %d", total, 255*frameSize)
	}
}
