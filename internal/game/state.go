package game

// State tracks the running game: clock, score, lead and a short-horizon
// momentum signal (EMA of lead deltas). Mutated only by Apply; the engine
// owns the single instance.
type State struct {
	regulationLen float64
	extendedLen   float64
	momentumAlpha float64

	TimeRemaining float64
	HomeScore     int
	AwayScore     int
	Lead          float64
	Momentum      float64

	seenEvent bool
}

func NewState(regulationLen, extendedLen, momentumAlpha float64) *State {
	s := &State{
		regulationLen: regulationLen,
		extendedLen:   extendedLen,
		momentumAlpha: momentumAlpha,
	}
	s.Reset()
	return s
}

func (s *State) Reset() {
	s.TimeRemaining = s.extendedLen
	s.HomeScore = 0
	s.AwayScore = 0
	s.Lead = 0
	s.Momentum = 0
	s.seenEvent = false
}

// Apply folds one feed event into the state. The clock value is reconciled
// against both known total-game-length conventions: a value inside the
// regulation length overwrites, a value inside the extended length is only
// taken if it does not move the clock backwards. This keeps the clock sane
// when the feed flips conventions mid-stream. Events without a time leave
// the clock at its last known value.
func (s *State) Apply(ev Event) {
	if ev.TimeSeconds != nil {
		t := *ev.TimeSeconds
		if t <= s.regulationLen+1 {
			s.TimeRemaining = t
		}
		if t <= s.extendedLen+1 && t > s.TimeRemaining {
			s.TimeRemaining = t
		}
	}

	prevLead := s.Lead
	s.HomeScore = ev.HomeScore
	s.AwayScore = ev.AwayScore
	s.Lead = float64(s.HomeScore - s.AwayScore)
	if s.seenEvent {
		delta := s.Lead - prevLead
		s.Momentum = (1-s.momentumAlpha)*s.Momentum + s.momentumAlpha*delta
	} else {
		// No prior lead to diff against: seed flat.
		s.Momentum = 0
		s.seenEvent = true
	}
}
