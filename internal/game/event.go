package game

// Feed event types that influence the strategy. The feed carries more
// (substitutions, timeouts, rebounds) but those never move the model.
const (
	EventScore    = "SCORE"
	EventTurnover = "TURNOVER"
	EventSteal    = "STEAL"
	EventFoul     = "FOUL"
	EventEndGame  = "END_GAME"
)

const ShotThreePoint = "THREE_POINT"

// Event is one play-by-play record from the game feed. Optional fields are
// pointers: the feed omits them for most event types.
type Event struct {
	Type         string   `json:"event_type"`
	HomeAway     string   `json:"home_away"`
	HomeScore    int      `json:"home_score"`
	AwayScore    int      `json:"away_score"`
	Player       *string  `json:"player_name,omitempty"`
	Substitution *string  `json:"substituted_player_name,omitempty"`
	ShotType     *string  `json:"shot_type,omitempty"`
	Assist       *string  `json:"assist_player,omitempty"`
	ReboundType  *string  `json:"rebound_type,omitempty"`
	CoordinateX  *float64 `json:"coordinate_x,omitempty"`
	CoordinateY  *float64 `json:"coordinate_y,omitempty"`
	TimeSeconds  *float64 `json:"time_seconds,omitempty"`
}
