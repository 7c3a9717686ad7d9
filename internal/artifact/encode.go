// Package artifact renders the accumulated stacks and background model into
// the 8-bit images each triggered or timelapse event writes (a plain
// averaged frame, and a background-subtracted, gain-stretched frame for easy
// viewing), packs the trigger diagnostic map, and names the fixed set of
// files per event (schema.go). Maximum-intensity maps are written as they
// are, and the clip is streamed by sink.RawVidWriter; neither is rendered
// here.
package artifact

import "github.com/camsci/meteorwatch/internal/pixelops"

// Plain renders a summed stack of nfr frames back down to an 8-bit image,
// dividing out the stack count and applying gain (use gain 1 for a
// faithful average).
func Plain(stack []int32, nfr, gain int) []byte {
	out := make([]byte, len(stack))
	pixelops.ForRange(len(stack), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i] = pixelops.ClipByte(stack[i] * int32(gain) / int32(nfr))
		}
	})
	return out
}

// PackRGB interleaves three equal-length channels into a packed RGB8
// buffer (r0,g0,b0, r1,g1,b1, ...), the layout the trigger diagnostic map
// is written in.
func PackRGB(red, green, blue []byte) []byte {
	out := make([]byte, len(red)*3)
	pixelops.ForRange(len(red), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i*3] = red[i]
			out[i*3+1] = green[i]
			out[i*3+2] = blue[i]
		}
	})
	return out
}

// BackgroundSubtracted renders a summed stack with the background model
// subtracted out and the result stretched by gain around a mid-grey
// baseline of 128, so faint brightenings that would be invisible in a Plain
// render show up clearly.
func BackgroundSubtracted(stack []int32, nfr, gain int, background []byte) []byte {
	out := make([]byte, len(stack))
	pixelops.ForRange(len(stack), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			avg := stack[i] / int32(nfr)
			diff := (avg - int32(background[i])) * int32(gain)
			out[i] = pixelops.ClipByte(128 + diff)
		}
	})
	return out
}
