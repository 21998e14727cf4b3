package game

import (
	"math"
	"testing"
)

func newTestState() *State {
	return NewState(2400, 2880, 0.2)
}

func fptr(v float64) *float64 { return &v }

func TestFirstEventSeedsMomentumFlat(t *testing.T) {
	s := newTestState()
	s.Apply(Event{Type: EventScore, HomeScore: 3, AwayScore: 0, TimeSeconds: fptr(2300)})

	if s.Lead != 3 {
		t.Fatalf("expected lead 3, got %v", s.Lead)
	}
	if s.Momentum != 0 {
		t.Fatalf("expected momentum seeded to zero, got %v", s.Momentum)
	}
}

func TestMomentumEMA(t *testing.T) {
	s := newTestState()
	s.Apply(Event{Type: EventScore, HomeScore: 3, AwayScore: 0, TimeSeconds: fptr(2300)})
	s.Apply(Event{Type: EventScore, HomeScore: 5, AwayScore: 0, TimeSeconds: fptr(2250)})

	// delta = 2, alpha = 0.2
	if math.Abs(s.Momentum-0.4) > 1e-9 {
		t.Fatalf("expected momentum 0.4, got %v", s.Momentum)
	}

	s.Apply(Event{Type: EventScore, HomeScore: 5, AwayScore: 3, TimeSeconds: fptr(2200)})
	// delta = -3: 0.8*0.4 + 0.2*(-3) = -0.28
	if math.Abs(s.Momentum-(-0.28)) > 1e-9 {
		t.Fatalf("expected momentum -0.28, got %v", s.Momentum)
	}
}

func TestTimeUpdateRegulationConvention(t *testing.T) {
	s := newTestState()
	s.Apply(Event{Type: EventScore, TimeSeconds: fptr(2000)})
	if s.TimeRemaining != 2000 {
		t.Fatalf("expected time 2000, got %v", s.TimeRemaining)
	}
	// Normal flow: clock counts down.
	s.Apply(Event{Type: EventScore, TimeSeconds: fptr(1900)})
	if s.TimeRemaining != 1900 {
		t.Fatalf("expected time 1900, got %v", s.TimeRemaining)
	}
}

func TestTimeUpdateConventionSwitchTakesLarger(t *testing.T) {
	s := newTestState()
	s.Apply(Event{Type: EventScore, TimeSeconds: fptr(2000)})
	// Feed switches to the extended-length convention: a value above the
	// regulation length but within the extended length only moves the clock
	// forward, never backwards.
	s.Apply(Event{Type: EventScore, TimeSeconds: fptr(2600)})
	if s.TimeRemaining != 2600 {
		t.Fatalf("expected time 2600 after convention switch, got %v", s.TimeRemaining)
	}
	// Out-of-range value is ignored entirely.
	s.Apply(Event{Type: EventScore, TimeSeconds: fptr(4000)})
	if s.TimeRemaining != 2600 {
		t.Fatalf("expected out-of-range time ignored, got %v", s.TimeRemaining)
	}
}

func TestMissingTimeLeavesClock(t *testing.T) {
	s := newTestState()
	s.Apply(Event{Type: EventScore, TimeSeconds: fptr(1500)})
	s.Apply(Event{Type: EventFoul})
	if s.TimeRemaining != 1500 {
		t.Fatalf("expected clock unchanged on missing time, got %v", s.TimeRemaining)
	}
}

func TestReset(t *testing.T) {
	s := newTestState()
	s.Apply(Event{Type: EventScore, HomeScore: 10, AwayScore: 4, TimeSeconds: fptr(1000)})
	s.Apply(Event{Type: EventScore, HomeScore: 12, AwayScore: 4, TimeSeconds: fptr(900)})
	s.Reset()

	if s.TimeRemaining != 2880 {
		t.Fatalf("expected full clock after reset, got %v", s.TimeRemaining)
	}
	if s.HomeScore != 0 || s.AwayScore != 0 || s.Lead != 0 || s.Momentum != 0 {
		t.Fatalf("expected zeroed scores, got %d-%d lead=%v momentum=%v", s.HomeScore, s.AwayScore, s.Lead, s.Momentum)
	}
	// First event after reset seeds momentum flat again.
	s.Apply(Event{Type: EventScore, HomeScore: 2, AwayScore: 0, TimeSeconds: fptr(2850)})
	if s.Momentum != 0 {
		t.Fatalf("expected momentum reseeded after reset, got %v", s.Momentum)
	}
}
