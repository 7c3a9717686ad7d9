// Package stacker reads one "short buffer" — one second of video — from a
// frame source, accumulating it into the sums and running statistics the
// trigger detector and background model need: a stack of raw frame values,
// an optional second stack shared across many short buffers (used to build
// timelapse frames), and a per-pixel maximum.
package stacker

import (
	"fmt"

	"github.com/camsci/meteorwatch/internal/frame"
	"github.com/camsci/meteorwatch/internal/pixelops"
)

// Result carries what one ReadShortBuffer call produced, beyond what it
// wrote in place into the caller's buffers.
type Result struct {
	// UTC is the capture time of the last frame read.
	UTC float64
	// AveragePixel is stack1's per-pixel average over numFrames, clipped to
	// 0..255 — the value folded into the background histogram.
	AveragePixel []byte
}

// ReadShortBuffer fills raw with numFrames frames fetched from src (raw must
// be numFrames*frameSize bytes), accumulating every frame into stack1
// (zeroed first) and, if stack2 is non-nil, into stack2 as well (stack2 is
// not zeroed: the caller may be accumulating it across many calls, e.g. to
// build a timelapse frame). maxMap is zeroed first and then set to the
// per-pixel maximum seen.
func ReadShortBuffer(src frame.Source, numFrames, frameSize int, raw []byte, stack1 []int32, stack2 []int32, maxMap []byte) (Result, error) {
	if len(raw) != numFrames*frameSize {
		return Result{}, fmt.Errorf("stacker: raw buffer has %d bytes, want %d", len(raw), numFrames*frameSize)
	}
	if len(stack1) != frameSize || (stack2 != nil && len(stack2) != frameSize) || len(maxMap) != frameSize {
		return Result{}, fmt.Errorf("stacker: stack/max buffers must be %d pixels", frameSize)
	}

	for i := range stack1 {
		stack1[i] = 0
	}
	for i := range maxMap {
		maxMap[i] = 0
	}

	var utc float64
	for j := 0; j < numFrames; j++ {
		dst := raw[j*frameSize : (j+1)*frameSize]
		var err error
		utc, err = src.Fetch(dst)
		if err != nil {
			return Result{}, err
		}
		pixelops.AccumulateStack(stack1, dst)
		if stack2 != nil {
			pixelops.AccumulateStack(stack2, dst)
		}
		pixelops.UpdateMax(maxMap, dst)
	}

	avg := make([]byte, frameSize)
	pixelops.ForRange(frameSize, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			avg[i] = pixelops.ClipByte(stack1[i] / int32(numFrames))
		}
	})

	return Result{UTC: utc, AveragePixel: avg}, nil
}
