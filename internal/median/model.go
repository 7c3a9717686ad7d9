package median

// Model holds the two alternating background maps (A and B) the engine
// subtracts frames against, plus the histogram used to recompute whichever
// map is currently idle. Exactly one of the two maps is "active" (the one
// the trigger detector reads) at any time; Tick flips which one that is and
// recomputes the newly-active map from the histogram collected since the
// last flip, then clears the histogram for the next window.
//
// The flip happens before the recompute: Tick makes the map that was idle
// during the window just finished active, then rewrites it in place. The
// engine calls Tick and Active from the same goroutine, so no reader
// observes a map while it is being rewritten.
type Model struct {
	frameSize int
	hist      *Histogram
	mapA      []byte
	mapB      []byte
	activeIsB bool
}

// NewModel allocates a Model for a sensor of the given frameSize. Both maps
// start at zero; the first Window samples establish the first real
// estimate.
func NewModel(frameSize int) *Model {
	return &Model{
		frameSize: frameSize,
		hist:      NewHistogram(frameSize),
		mapA:      make([]byte, frameSize),
		mapB:      make([]byte, frameSize),
	}
}

// Accumulate folds one more per-pixel sample (the clipped average of a
// second's stacked frames) into the background histogram.
func (m *Model) Accumulate(vals []byte) {
	m.hist.Add(vals)
}

// Samples reports how many samples have been folded in since the last Tick.
func (m *Model) Samples() int {
	return m.hist.Samples()
}

// Tick checks whether window samples have been accumulated; if so, it
// flips the active map, recomputes the new active map's median from the
// histogram, clears the histogram, and returns true. Otherwise it does
// nothing and returns false.
func (m *Model) Tick(window int) bool {
	if m.hist.Samples() < window {
		return false
	}
	m.activeIsB = !m.activeIsB
	m.hist.Median(m.activeBuf())
	m.hist.Reset()
	return true
}

// Active returns the currently-active background map. Callers must treat
// it as read-only; it is overwritten in place on the next Tick.
func (m *Model) Active() []byte {
	return m.activeBuf()
}

func (m *Model) activeBuf() []byte {
	if m.activeIsB {
		return m.mapB
	}
	return m.mapA
}
