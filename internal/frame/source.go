// Package frame defines the frame source contract the observation engine
// pulls from, plus two implementations used for testing and the standalone
// utility CLIs: a synthetic generator and a .rawvid file replayer. A real
// capture device (V4L2, pixel-format conversion) is an external collaborator
// per the project's scope and is not implemented here.
package frame

import "io"

// Source supplies one 8-bit monochrome frame per Fetch call, each tagged
// with its capture time as UTC seconds since epoch (fractional). Fetch is
// expected to block until a frame is available; the engine does not
// rate-limit reads. Fetch returns io.EOF when the stream is exhausted.
type Source interface {
	// Fetch copies one frame's worth of luminance samples into dst, which
	// must be exactly width*height bytes, and returns the frame's UTC
	// timestamp.
	Fetch(dst []byte) (utc float64, err error)

	// Rewind positions the source so the next Fetch returns the earliest
	// available frame, and reports the UTC timestamp of that frame. Live
	// capture sources implement this as a no-op returning the current time.
	Rewind() (utc float64, err error)
}

// ErrEndOfStream is returned by Fetch when no further frames are available.
// It is defined as an alias of io.EOF so callers can use errors.Is(err,
// io.EOF) interchangeably.
var ErrEndOfStream = io.EOF
