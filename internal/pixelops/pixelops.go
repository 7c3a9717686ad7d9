// Package pixelops provides the parallel-for primitive used across the
// observation pipeline to fan out disjoint per-pixel work (stack
// accumulation, max-map updates, long-buffer integration) over several
// goroutines. The original C implementation marks these loops with
// "#pragma omp parallel for"; this is an optimisation hint, not a semantic
// requirement, so every function here has an identical single-goroutine
// result regardless of how many workers actually run.
package pixelops

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// parallelThreshold is the smallest slice length worth splitting across
// goroutines; below it, the fan-out/join overhead swamps the work itself.
const parallelThreshold = 4096

// ForRange calls fn once per disjoint sub-range covering [0, n), in
// parallel when n is large enough to make that worthwhile. Each fn
// invocation touches only indices in [lo, hi), so callers never need
// synchronization inside fn.
func ForRange(n int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	if n < parallelThreshold || workers == 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	for lo := 0; lo < n; lo += chunk {
		lo := lo
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait() // fn never returns an error; Wait only joins the goroutines
}

// AccumulateStack adds one frame's luminance samples into a running
// int32 stack, pixelwise: dst[i] += int32(src[i]).
func AccumulateStack(dst []int32, src []byte) {
	ForRange(len(dst), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst[i] += int32(src[i])
		}
	})
}

// AccumulateInt32 adds src into dst pixelwise, both already-summed stacks.
// Used when merging a short-buffer stack into the long post-trigger stack.
func AccumulateInt32(dst, src []int32) {
	ForRange(len(dst), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst[i] += src[i]
		}
	})
}

// UpdateMax sets dst[i] = max(dst[i], src[i]) pixelwise.
func UpdateMax(dst, src []byte) {
	ForRange(len(dst), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if src[i] > dst[i] {
				dst[i] = src[i]
			}
		}
	})
}

// ClipByte saturates v to the 0..255 range of an 8-bit sample.
func ClipByte(v int32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
