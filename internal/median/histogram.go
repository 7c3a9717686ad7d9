// Package median maintains the rolling per-pixel background estimate the
// trigger detector subtracts before looking for motion. Every pixel keeps a
// 256-bucket histogram of the values it has taken over the last window of
// stacked seconds; the median of that histogram is the background level,
// recomputed once the window fills and then the histogram is cleared for
// the next one.
package median

import "github.com/camsci/meteorwatch/internal/pixelops"

// Histogram accumulates, for every pixel, a count of how many times it has
// taken each of the 256 possible 8-bit values. The backing array is laid
// out bucket-major — index(pixel, bucket) = pixel + bucket*frameSize — so
// that Median can stream through one bucket at a time across all pixels,
// which keeps the working set that matters to the CPU cache small even
// though the whole table is frameSize*256 entries.
type Histogram struct {
	frameSize int
	counts    []uint16
	samples   int // number of values folded into every pixel's bucket so far
}

// NewHistogram allocates a zeroed histogram for a sensor of the given
// frameSize (width*height).
func NewHistogram(frameSize int) *Histogram {
	return &Histogram{
		frameSize: frameSize,
		counts:    make([]uint16, frameSize*256),
	}
}

// Add folds one more sample per pixel into the histogram. vals must be
// frameSize long and already clipped to 0..255 by the caller (typically the
// average of one second's worth of stacked frames).
func (h *Histogram) Add(vals []byte) {
	if len(vals) != h.frameSize {
		panic("median: Add called with wrong frame size")
	}
	pixelops.ForRange(h.frameSize, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			h.counts[i+int(vals[i])*h.frameSize]++
		}
	})
	h.samples++
}

// Samples reports how many Add calls have landed since the last Reset.
func (h *Histogram) Samples() int {
	return h.samples
}

// Reset clears every bucket, ready to accumulate the next window.
func (h *Histogram) Reset() {
	for i := range h.counts {
		h.counts[i] = 0
	}
	h.samples = 0
}

// Median writes the per-pixel median (the value at or after the halfway
// point of each pixel's accumulated samples) into dst, which must be
// frameSize long. If a pixel has received no samples yet, its median is 0.
func (h *Histogram) Median(dst []byte) {
	if len(dst) != h.frameSize {
		panic("median: Median called with wrong frame size")
	}
	target := (h.samples + 1) / 2
	frameSize := h.frameSize

	pixelops.ForRange(frameSize, func(lo, hi int) {
		cum := make([]int, hi-lo)
		result := make([]byte, hi-lo)
		found := make([]bool, hi-lo)
		for bucket := 0; bucket < 256; bucket++ {
			base := bucket * frameSize
			for i := lo; i < hi; i++ {
				idx := i - lo
				if found[idx] {
					continue
				}
				cum[idx] += int(h.counts[base+i])
				if cum[idx] >= target {
					result[idx] = byte(bucket)
					found[idx] = true
				}
			}
		}
		for i := lo; i < hi; i++ {
			dst[i] = result[i-lo]
		}
	})
}
