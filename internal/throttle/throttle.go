// Package throttle caps how many triggers the camera is allowed to record
// within a fixed, repeating window, so a storm of real or spurious events (a hailstorm,
// headlights sweeping across the field of view) can't fill the disk.
package throttle

import "sync"

// Governor tracks a cycle counter that resets every window and an event
// counter that resets along with it. Allow reports whether another trigger
// may be accepted; RecordEvent must be called once for every trigger that
// is actually acted on.
type Governor struct {
	mu sync.Mutex

	cyclesPerWindow int
	maxEvents       int

	timer   int
	counter int
}

// NewGovernor builds a Governor that permits at most maxEvents triggers per
// cyclesPerWindow calls to Tick.
func NewGovernor(cyclesPerWindow, maxEvents int) *Governor {
	return &Governor{cyclesPerWindow: cyclesPerWindow, maxEvents: maxEvents}
}

// Tick advances the window by one cycle (one short-buffer second), resetting
// the event count whenever the window rolls over.
func (g *Governor) Tick() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.timer++
	if g.timer >= g.cyclesPerWindow {
		g.timer = 0
		g.counter = 0
	}
}

// Allow reports whether the window has budget left for another trigger.
func (g *Governor) Allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counter < g.maxEvents
}

// RecordEvent consumes one unit of the window's trigger budget.
func (g *Governor) RecordEvent() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
}

// SetParams updates the window length and event cap, for hot-reloading
// configuration changes without restarting the engine. It does not reset
// the current window's progress.
func (g *Governor) SetParams(cyclesPerWindow, maxEvents int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cyclesPerWindow = cyclesPerWindow
	g.maxEvents = maxEvents
}
