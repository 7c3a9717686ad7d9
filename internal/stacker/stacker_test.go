package stacker

import (
	"testing"

	"github.com/camsci/meteorwatch/internal/frame"
)

func TestReadShortBufferAccumulates(t *testing.T) {
	const w, h, n = 2, 2, 4
	frameSize := w * h
	src := frame.NewSynthetic(w, h, 10, 0)
	src.RampPerFrame = 10 // frames: 0, 10, 20, 30

	raw := make([]byte, n*frameSize)
	stack1 := make([]int32, frameSize)
	maxMap := make([]byte, frameSize)

	res, err := ReadShortBuffer(src, n, frameSize, raw, stack1, nil, maxMap)
	if err != nil {
		t.Fatalf("ReadShortBuffer: %v", err)
	}

	wantSum := int32(0 + 10 + 20 + 30)
	for i, v := range stack1 {
		if v != wantSum {
			t.Fatalf("stack1[%d] = %d, want %d", i, v, wantSum)
		}
	}
	for i, v := range maxMap {
		if v != 30 {
			t.Fatalf("maxMap[%d] = %d, want 30", i, v)
		}
	}
	wantAvg := byte(wantSum / int32(n))
	for i, v := range res.AveragePixel {
		if v != wantAvg {
			t.Fatalf("AveragePixel[%d] = %d, want %d", i, v, wantAvg)
		}
	}
}

func TestReadShortBufferSharedStackAccumulatesAcrossCalls(t *testing.T) {
	const w, h, n = 2, 2, 2
	frameSize := w * h
	src := frame.NewSynthetic(w, h, 10, 0)
	src.RampPerFrame = 1 // frames: 0, 1 (first call), 2, 3 (second call)

	raw := make([]byte, n*frameSize)
	stack1 := make([]int32, frameSize)
	stack2 := make([]int32, frameSize)
	maxMap := make([]byte, frameSize)

	if _, err := ReadShortBuffer(src, n, frameSize, raw, stack1, stack2, maxMap); err != nil {
		t.Fatalf("first ReadShortBuffer: %v", err)
	}
	if _, err := ReadShortBuffer(src, n, frameSize, raw, stack1, stack2, maxMap); err != nil {
		t.Fatalf("second ReadShortBuffer: %v", err)
	}
	// stack1 is reset each call; stack2 is cumulative across both calls.
	for i, v := range stack1 {
		if v != 2+3 {
			t.Fatalf("stack1[%d] = %d, want 5 (second call's frames only, reset each call)", i, v)
		}
	}
	if stack2[0] != 0+1+2+3 {
		t.Fatalf("stack2[0] = %d, want 6 (all four frames across both calls)", stack2[0])
	}
}

func TestReadShortBufferWrongSizedBuffers(t *testing.T) {
	src := frame.NewSynthetic(2, 2, 10, 0)
	raw := make([]byte, 999)
	stack1 := make([]int32, 4)
	maxMap := make([]byte, 4)
	if _, err := ReadShortBuffer(src, 4, 4, raw, stack1, nil, maxMap); err == nil {
		t.Fatal("expected an error for a mis-sized raw buffer")
	}
}

func TestReadShortBufferPropagatesEndOfStream(t *testing.T) {
	src := frame.NewSynthetic(2, 2, 10, 0)
	src.Limit = 1
	raw := make([]byte, 2*4)
	stack1 := make([]int32, 4)
	maxMap := make([]byte, 4)
	if _, err := ReadShortBuffer(src, 2, 4, raw, stack1, nil, maxMap); err != frame.ErrEndOfStream {
		t.Fatalf("expected ErrEndOfStream, got %v", err)
	}
}
