package sizing

import (
	"testing"

	"courtside-mm-bot/internal/config"
)

var testCfg = config.SizingConfig{RiskPerTrade: 0.0075, MaxOrderFraction: 0.25}

func TestZeroForDegenerateRefPrice(t *testing.T) {
	if got := Contracts(4, 0, 100000, 1200, 1200, testCfg); got != 0 {
		t.Fatalf("expected 0 contracts at ref price 0, got %v", got)
	}
	if got := Contracts(4, -5, 100000, 1200, 1200, testCfg); got != 0 {
		t.Fatalf("expected 0 contracts at negative ref price, got %v", got)
	}
}

func TestNeverNegative(t *testing.T) {
	if got := Contracts(-10, 50, 0, 0, 1200, testCfg); got < 0 {
		t.Fatalf("expected non-negative contracts, got %v", got)
	}
}

func TestWholeContracts(t *testing.T) {
	got := Contracts(1.3, 47.7, 100000, 900, 1200, testCfg)
	if got != float64(int64(got)) {
		t.Fatalf("expected whole contracts, got %v", got)
	}
}

func TestCappedAtOrderFraction(t *testing.T) {
	// Huge capital drives the raw size far past the cap.
	got := Contracts(10, 10, 10_000_000, 0, 1200, testCfg)
	if got != 300 {
		t.Fatalf("expected cap of 1200*0.25=300, got %v", got)
	}
}

func TestUrgencyGrowsLate(t *testing.T) {
	early := Contracts(2, 50, 100000, 2400, 1200, testCfg)
	late := Contracts(2, 50, 100000, 60, 1200, testCfg)
	if late <= early {
		t.Fatalf("expected larger size late in the game: early=%v late=%v", early, late)
	}
}

func TestEdgeScalesSize(t *testing.T) {
	small := Contracts(0.5, 50, 100000, 1200, 1200, testCfg)
	big := Contracts(3, 50, 100000, 1200, 1200, testCfg)
	if big <= small {
		t.Fatalf("expected bigger edge to size up: small=%v big=%v", small, big)
	}
	// The edge multiplier saturates: past the cap more edge adds nothing.
	atCap := Contracts(3, 50, 100000, 1200, 1200, testCfg)
	past := Contracts(30, 50, 100000, 1200, 1200, testCfg)
	if past != atCap {
		t.Fatalf("expected saturated edge multiplier: atCap=%v past=%v", atCap, past)
	}
}

func TestMinimumBaseOneContract(t *testing.T) {
	// Tiny capital still yields at least the floored base*multipliers.
	got := Contracts(4, 50, 100, 2880, 1200, testCfg)
	if got < 1 {
		t.Fatalf("expected at least one contract from the base floor, got %v", got)
	}
}
