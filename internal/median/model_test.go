package median

import "testing"

func TestModelTickFlipsAndRecomputes(t *testing.T) {
	m := NewModel(1)

	for n := 0; n < 5; n++ {
		m.Accumulate([]byte{100})
	}
	firstActive := m.Active()
	if m.Tick(5) != true {
		t.Fatal("Tick should fire once window samples are reached")
	}
	if m.Active()[0] != 100 {
		t.Fatalf("active median after first tick = %d, want 100", m.Active()[0])
	}
	// The map that was active before the flip is untouched by the first
	// recompute; it still holds its initial zero value.
	if &firstActive[0] == &m.Active()[0] {
		t.Fatal("Tick did not flip to the other map")
	}

	for n := 0; n < 5; n++ {
		m.Accumulate([]byte{200})
	}
	if m.Tick(5) != true {
		t.Fatal("second Tick should also fire")
	}
	if m.Active()[0] != 200 {
		t.Fatalf("active median after second tick = %d, want 200", m.Active()[0])
	}
}

func TestModelTickWaitsForWindow(t *testing.T) {
	m := NewModel(1)
	m.Accumulate([]byte{50})
	if m.Tick(5) {
		t.Fatal("Tick fired before the window filled")
	}
	if m.Samples() != 1 {
		t.Fatalf("Samples() = %d, want 1", m.Samples())
	}
}

func TestModelAlternatesMaps(t *testing.T) {
	m := NewModel(1)
	seen := map[bool]bool{}
	for round := 0; round < 4; round++ {
		for n := 0; n < 3; n++ {
			m.Accumulate([]byte{byte(round * 10)})
		}
		m.Tick(3)
		seen[m.activeIsB] = true
	}
	if len(seen) != 2 {
		t.Fatalf("expected the model to alternate between both maps, saw %v", seen)
	}
}
