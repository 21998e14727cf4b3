package sizing

import (
	"math"

	"courtside-mm-bot/internal/config"
)

// urgencyHorizonSec controls how fast sizing ramps from 1x toward 2x as the
// game clock drains.
const urgencyHorizonSec = 800.0

// Edge multiplier: half size at zero edge, growing with edge, capped.
const (
	edgeMultBase = 0.5
	edgeMultCap  = 1.5
	edgeMultUnit = 2.0
)

// Contracts converts an edge at a reference price into a whole contract
// count. refPrice <= 0 yields 0; the result is floored, capped at
// maxPosition*MaxOrderFraction, and never negative.
func Contracts(edge, refPrice, capital, timeRemaining float64, maxPosition float64, cfg config.SizingConfig) float64 {
	if refPrice <= 0 {
		return 0
	}
	budget := capital * cfg.RiskPerTrade
	base := math.Max(1, budget/math.Max(1, refPrice))

	t := math.Max(timeRemaining, 0)
	urgency := 1 + (1 - math.Tanh(t/urgencyHorizonSec))
	edgeMult := edgeMultBase + math.Min(edgeMultCap, math.Abs(edge)/edgeMultUnit)

	contracts := base * urgency * edgeMult
	contracts = math.Min(contracts, maxPosition*cfg.MaxOrderFraction)
	return math.Max(0, math.Floor(contracts))
}
