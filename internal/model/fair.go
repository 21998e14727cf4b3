package model

import (
	"math"

	"courtside-mm-bot/internal/config"
)

// Decay horizons, in game seconds. leadDecayScale shrinks the lead and
// home-advantage contributions while lots of clock remains (a given lead is
// noisier early); lateHorizon governs both the momentum late-game boost and
// the threshold tightening; urgency uses its own slower horizon in sizing.
const (
	leadDecayMinutes = 60.0
	lateHorizonSec   = 600.0
)

// Probability is clamped strictly inside (0, 1) so fair value can never be
// exactly 0 or 100.
const (
	probFloor = 0.01
	probCeil  = 0.99
)

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// WinProbability maps (lead, momentum, time remaining) to the home team's
// estimated win probability. Pure: recomputed every decision cycle.
func WinProbability(lead, momentum, timeRemaining float64, cfg config.ModelConfig) float64 {
	t := math.Max(timeRemaining, 0)
	scale := 1 / math.Sqrt(t/leadDecayMinutes+1)
	late := 1 + (1 - math.Tanh(t/lateHorizonSec))

	xLead := lead * scale
	xMom := late * momentum
	xHome := cfg.HomeAdvantage * scale

	logit := cfg.LeadWeight*xLead + cfg.MomentumWeight*xMom + cfg.HomeWeight*xHome
	p := sigmoid(logit)
	return math.Min(probCeil, math.Max(probFloor, p))
}

// FairPrice is the win probability on the venue's 0-100 price scale.
func FairPrice(lead, momentum, timeRemaining float64, cfg config.ModelConfig) float64 {
	return 100 * WinProbability(lead, momentum, timeRemaining, cfg)
}

// EdgeThreshold is the minimum mispricing worth trading. It tightens as the
// clock runs down (late prices carry more information) and is floored so the
// strategy never trades on zero edge.
func EdgeThreshold(timeRemaining float64, cfg config.ModelConfig) float64 {
	t := math.Max(timeRemaining, 0)
	lateFactor := 1 - cfg.LateTighten*(1-math.Tanh(t/lateHorizonSec))
	return math.Max(cfg.MinEdgeThreshold, cfg.BaseEdgeThreshold*lateFactor)
}
