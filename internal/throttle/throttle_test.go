package throttle

import "testing"

func TestGovernorCapsEventsPerWindow(t *testing.T) {
	g := NewGovernor(10, 2)
	allowed := 0
	// Nine ticks stay inside the first window: the tenth would bring the
	// timer to cyclesPerWindow and start the next one.
	for i := 0; i < 9; i++ {
		g.Tick()
		if g.Allow() {
			g.RecordEvent()
			allowed++
		}
	}
	if allowed != 2 {
		t.Fatalf("allowed %d events in one window, want 2", allowed)
	}
}

func TestGovernorResetsOnWindowRollover(t *testing.T) {
	g := NewGovernor(3, 1)
	g.Tick()
	if !g.Allow() {
		t.Fatal("should allow the first event")
	}
	g.RecordEvent()
	if g.Allow() {
		t.Fatal("should not allow a second event in the same window")
	}
	g.Tick()
	g.Tick() // timer hits cyclesPerWindow (3) and resets
	if !g.Allow() {
		t.Fatal("should allow an event again once the window rolls over")
	}
}

func TestGovernorSetParams(t *testing.T) {
	g := NewGovernor(10, 1)
	g.Tick()
	g.RecordEvent()
	if g.Allow() {
		t.Fatal("budget should be exhausted")
	}
	g.SetParams(10, 5)
	if !g.Allow() {
		t.Fatal("raising maxEvents should free up budget immediately")
	}
}
