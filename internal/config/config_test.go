package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validEngine() EngineConfig {
	return EngineConfig{Instrument: "HOME_WIN_LAL_BOS"}
}

func TestEngineDefaults(t *testing.T) {
	cfg := &Config{Engine: validEngine()}
	applyDefaults(cfg)
	if cfg.Engine.InitialCapital != 100000 {
		t.Fatalf("expected initial capital default, got %v", cfg.Engine.InitialCapital)
	}
	if cfg.Engine.MaxPosition != 1200 {
		t.Fatalf("expected max position default, got %v", cfg.Engine.MaxPosition)
	}
	if cfg.Engine.MaxSpreadToCross != 2.0 {
		t.Fatalf("expected spread ceiling default, got %v", cfg.Engine.MaxSpreadToCross)
	}
	if cfg.Engine.PriceTick != 0.1 {
		t.Fatalf("expected price tick default, got %v", cfg.Engine.PriceTick)
	}
	if cfg.Engine.InitCooldown != 5*time.Second {
		t.Fatalf("expected init cooldown default, got %v", cfg.Engine.InitCooldown)
	}
	if cfg.Engine.CloseOutBufferSec != 2.0 {
		t.Fatalf("expected close-out buffer default, got %v", cfg.Engine.CloseOutBufferSec)
	}
	if cfg.Engine.NudgeWindowSec != 60.0 || cfg.Engine.NudgeFraction != 0.25 {
		t.Fatalf("expected nudge defaults, got window=%v fraction=%v", cfg.Engine.NudgeWindowSec, cfg.Engine.NudgeFraction)
	}
}

func TestModelDefaults(t *testing.T) {
	cfg := &Config{Engine: validEngine()}
	applyDefaults(cfg)
	m := cfg.Model
	if m.LeadWeight != 0.18 || m.MomentumWeight != 0.10 || m.HomeWeight != 0.20 {
		t.Fatalf("expected weight defaults, got %+v", m)
	}
	if m.BaseEdgeThreshold != 0.9 || m.LateTighten != 0.55 || m.MinEdgeThreshold != 0.2 {
		t.Fatalf("expected threshold defaults, got %+v", m)
	}
	if m.RegulationLenSec != 2400 || m.ExtendedLenSec != 2880 {
		t.Fatalf("expected game length defaults, got %+v", m)
	}
	if m.HomeAdvantage != 1.25 || m.MomentumAlpha != 0.2 {
		t.Fatalf("expected model state defaults, got %+v", m)
	}
}

func TestSizingDefaults(t *testing.T) {
	cfg := &Config{Engine: validEngine()}
	applyDefaults(cfg)
	if cfg.Sizing.RiskPerTrade != 0.0075 {
		t.Fatalf("expected risk per trade default, got %v", cfg.Sizing.RiskPerTrade)
	}
	if cfg.Sizing.MaxOrderFraction != 0.25 {
		t.Fatalf("expected max order fraction default, got %v", cfg.Sizing.MaxOrderFraction)
	}
}

func TestInfraDefaults(t *testing.T) {
	cfg := &Config{Engine: validEngine()}
	applyDefaults(cfg)
	if cfg.Log.Level != "info" {
		t.Fatalf("expected log level default, got %q", cfg.Log.Level)
	}
	if cfg.WS.ReconnectDelay <= 0 || cfg.WS.PingInterval <= 0 {
		t.Fatalf("expected ws timing defaults, got %+v", cfg.WS)
	}
	if cfg.Venue.Timeout <= 0 || cfg.Venue.OrderRate <= 0 || cfg.Venue.OrderBurst <= 0 {
		t.Fatalf("expected venue defaults, got %+v", cfg.Venue)
	}
	if cfg.State.SQLitePath == "" {
		t.Fatalf("expected sqlite path default")
	}
	if cfg.Journal.QueueSize <= 0 || cfg.Journal.Schema == "" {
		t.Fatalf("expected journal defaults, got %+v", cfg.Journal)
	}
}

func TestValidateRequiresInstrument(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	if err := validate(cfg); err == nil {
		t.Fatalf("expected error for missing instrument")
	}
}

func TestValidateRejectsNegativeMaxPosition(t *testing.T) {
	cfg := &Config{Engine: validEngine()}
	applyDefaults(cfg)
	cfg.Engine.MaxPosition = -10
	if err := validate(cfg); err == nil {
		t.Fatalf("expected error for negative max position")
	}
}

func TestValidateRejectsRiskOutOfRange(t *testing.T) {
	cfg := &Config{Engine: validEngine()}
	applyDefaults(cfg)
	cfg.Sizing.RiskPerTrade = 1.5
	if err := validate(cfg); err == nil {
		t.Fatalf("expected error for risk per trade >= 1")
	}
}

func TestValidateRejectsInvertedGameLengths(t *testing.T) {
	cfg := &Config{Engine: validEngine()}
	applyDefaults(cfg)
	cfg.Model.RegulationLenSec = 3000
	if err := validate(cfg); err == nil {
		t.Fatalf("expected error for regulation longer than extended")
	}
}

func TestValidateRequiresJournalDSNWhenEnabled(t *testing.T) {
	cfg := &Config{Engine: validEngine(), Journal: JournalConfig{Enabled: true}}
	applyDefaults(cfg)
	if err := validate(cfg); err == nil {
		t.Fatalf("expected error for enabled journal without dsn")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "" +
		"log:\n" +
		"  level: debug\n" +
		"engine:\n" +
		"  instrument: HOME_WIN_LAL_BOS\n" +
		"  max_position: 600\n" +
		"model:\n" +
		"  home_advantage: 0.8\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected debug level, got %q", cfg.Log.Level)
	}
	if cfg.Engine.Instrument != "HOME_WIN_LAL_BOS" {
		t.Fatalf("expected instrument, got %q", cfg.Engine.Instrument)
	}
	if cfg.Engine.MaxPosition != 600 {
		t.Fatalf("expected explicit max position, got %v", cfg.Engine.MaxPosition)
	}
	if cfg.Model.HomeAdvantage != 0.8 {
		t.Fatalf("expected explicit home advantage, got %v", cfg.Model.HomeAdvantage)
	}
	// Untouched sections still pick up defaults.
	if cfg.Engine.InitialCapital != 100000 {
		t.Fatalf("expected defaulted capital, got %v", cfg.Engine.InitialCapital)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
