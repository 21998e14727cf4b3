package game

// Impact windows: a score is high-impact from deep range at any time, or
// from anywhere inside the tighter window; possession-changing plays only
// matter inside the wider one.
const (
	scoreImpactWindowSec = 30.0
	playImpactWindowSec  = 45.0
)

// Classify reports whether an event is likely to move fair value enough to
// justify crossing a wide spread. It feeds only the aggressive-crossing
// gate, never sizing or the model itself.
func Classify(ev Event, timeRemaining float64) bool {
	switch ev.Type {
	case EventScore:
		if ev.ShotType != nil && *ev.ShotType == ShotThreePoint {
			return true
		}
		return timeRemaining < scoreImpactWindowSec
	case EventTurnover, EventSteal, EventFoul:
		return timeRemaining < playImpactWindowSec
	default:
		return false
	}
}
