package frame

import (
	"fmt"
	"sync/atomic"
)

// Flash describes a disk of elevated intensity injected into one frame of a
// Synthetic source, used to build the "single injected flash" / "flash
// storm" / "margin flash" test scenarios without a real camera.
type Flash struct {
	AtFrame   uint64 // frame index (0-based, from the last Rewind) to draw on
	CX, CY    int    // disk centre, in pixels
	Radius    int    // disk radius, in pixels
	Intensity byte   // pixel value inside the disk
}

// Synthetic is a deterministic, in-memory Source used by tests and the
// standalone utility CLIs. It generates either a flat background (optionally
// ramping by one grey level per frame) with zero or more Flash events drawn
// on top, matching the dark-stream / ramp / flash scenarios in the test
// plan. Frames are produced synchronously from Fetch; there is no
// background goroutine, since the engine pulls one frame at a time and
// never needs more than one in flight.
type Synthetic struct {
	Width, Height int
	FPS           float64
	StartUTC      float64
	// RampPerFrame adds this many grey levels to the whole frame on every
	// tick, clamped to 255, to model the "uniform illumination ramp" case.
	RampPerFrame byte
	// Limit, if non-zero, is the number of frames available before Fetch
	// returns ErrEndOfStream.
	Limit uint64

	Flashes []Flash

	frameIndex uint64
	produced   uint64
}

// NewSynthetic builds a Synthetic source starting at startUTC with a dark
// (all-zero) background and no flashes. Callers mutate RampPerFrame/Flashes/
// Limit before the first Fetch to configure a scenario.
func NewSynthetic(width, height int, fps, startUTC float64) *Synthetic {
	return &Synthetic{
		Width:    width,
		Height:   height,
		FPS:      fps,
		StartUTC: startUTC,
	}
}

// Fetch implements Source.
func (s *Synthetic) Fetch(dst []byte) (float64, error) {
	frameSize := s.Width * s.Height
	if len(dst) != frameSize {
		return 0, fmt.Errorf("synthetic: dst has %d bytes, want %d", len(dst), frameSize)
	}
	if s.Limit > 0 && s.frameIndex >= s.Limit {
		return 0, ErrEndOfStream
	}

	level := byte(0)
	if s.RampPerFrame > 0 {
		total := int(s.RampPerFrame) * int(s.frameIndex)
		if total > 255 {
			total = 255
		}
		level = byte(total)
	}
	for i := range dst {
		dst[i] = level
	}
	for _, f := range s.Flashes {
		if f.AtFrame == s.frameIndex {
			drawDisk(dst, s.Width, s.Height, f)
		}
	}

	utc := s.StartUTC + float64(s.frameIndex)/s.FPS
	s.frameIndex++
	atomic.AddUint64(&s.produced, 1)
	return utc, nil
}

// Rewind implements Source: it restarts the synthetic sequence from frame 0.
func (s *Synthetic) Rewind() (float64, error) {
	s.frameIndex = 0
	return s.StartUTC, nil
}

// Stats reports the number of frames produced so far, mirroring the
// produced/dropped counters the ingest readers in the corpus expose.
func (s *Synthetic) Stats() uint64 {
	return atomic.LoadUint64(&s.produced)
}

func drawDisk(dst []byte, width, height int, f Flash) {
	r2 := f.Radius * f.Radius
	y0, y1 := f.CY-f.Radius, f.CY+f.Radius
	if y0 < 0 {
		y0 = 0
	}
	if y1 >= height {
		y1 = height - 1
	}
	for y := y0; y <= y1; y++ {
		dy := y - f.CY
		x0, x1 := f.CX-f.Radius, f.CX+f.Radius
		if x0 < 0 {
			x0 = 0
		}
		if x1 >= width {
			x1 = width - 1
		}
		for x := x0; x <= x1; x++ {
			dx := x - f.CX
			if dx*dx+dy*dy <= r2 {
				dst[x+y*width] = f.Intensity
			}
		}
	}
}
