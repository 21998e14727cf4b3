package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Log      LoggingConfig  `yaml:"log"`
	WS       WSConfig       `yaml:"ws"`
	Venue    VenueConfig    `yaml:"venue"`
	State    StateConfig    `yaml:"state"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Journal  JournalConfig  `yaml:"journal"`
	Telegram TelegramConfig `yaml:"telegram"`
	Engine   EngineConfig   `yaml:"engine"`
	Model    ModelConfig    `yaml:"model"`
	Sizing   SizingConfig   `yaml:"sizing"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type WSConfig struct {
	URL            string        `yaml:"url"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
	PingInterval   time.Duration `yaml:"ping_interval"`
}

type VenueConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	OrderRate  float64       `yaml:"order_rate"`
	OrderBurst int           `yaml:"order_burst"`
}

type StateConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

type JournalConfig struct {
	Enabled         bool          `yaml:"enabled"`
	DSN             string        `yaml:"dsn"`
	Schema          string        `yaml:"schema"`
	QueueSize       int           `yaml:"queue_size"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type TelegramConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	ChatID  string `yaml:"chat_id"`
}

// EngineConfig holds the execution controller tunables. All values are fixed
// at startup; the engine never mutates them.
type EngineConfig struct {
	Instrument        string        `yaml:"instrument"`
	InitialCapital    float64       `yaml:"initial_capital"`
	MaxPosition       float64       `yaml:"max_position"`
	MaxSpreadToCross  float64       `yaml:"max_spread_to_cross"`
	PriceTick         float64       `yaml:"price_tick"`
	PassiveImprove    float64       `yaml:"passive_improve"`
	MinBookQty        float64       `yaml:"min_book_qty"`
	InitCooldown      time.Duration `yaml:"init_cooldown"`
	CloseOutBufferSec float64       `yaml:"close_out_buffer_sec"`
	NudgeWindowSec    float64       `yaml:"nudge_window_sec"`
	NudgeFraction     float64       `yaml:"nudge_fraction"`
}

// ModelConfig holds the fair-value and threshold coefficients. These are
// calibration outputs supplied as configuration, never learned at runtime.
type ModelConfig struct {
	HomeAdvantage     float64 `yaml:"home_advantage"`
	MomentumAlpha     float64 `yaml:"momentum_alpha"`
	LeadWeight        float64 `yaml:"lead_weight"`
	MomentumWeight    float64 `yaml:"momentum_weight"`
	HomeWeight        float64 `yaml:"home_weight"`
	BaseEdgeThreshold float64 `yaml:"base_edge_threshold"`
	LateTighten       float64 `yaml:"late_tighten"`
	MinEdgeThreshold  float64 `yaml:"min_edge_threshold"`
	RegulationLenSec  float64 `yaml:"regulation_len_sec"`
	ExtendedLenSec    float64 `yaml:"extended_len_sec"`
}

type SizingConfig struct {
	RiskPerTrade     float64 `yaml:"risk_per_trade"`
	MaxOrderFraction float64 `yaml:"max_order_fraction"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, validate(&cfg)
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.WS.URL == "" {
		cfg.WS.URL = "wss://feed.courtside.exchange/ws"
	}
	if cfg.WS.ReconnectDelay == 0 {
		cfg.WS.ReconnectDelay = 3 * time.Second
	}
	if cfg.WS.PingInterval == 0 {
		cfg.WS.PingInterval = 15 * time.Second
	}
	if cfg.Venue.BaseURL == "" {
		cfg.Venue.BaseURL = "https://api.courtside.exchange"
	}
	if cfg.Venue.Timeout == 0 {
		cfg.Venue.Timeout = 10 * time.Second
	}
	if cfg.Venue.OrderRate == 0 {
		cfg.Venue.OrderRate = 20
	}
	if cfg.Venue.OrderBurst == 0 {
		cfg.Venue.OrderBurst = 10
	}
	if cfg.State.SQLitePath == "" {
		cfg.State.SQLitePath = "data/courtside-mm-bot.db"
	}
	if cfg.Metrics.Listen == "" {
		cfg.Metrics.Listen = ":9100"
	}
	if cfg.Journal.Schema == "" {
		cfg.Journal.Schema = "public"
	}
	if cfg.Journal.QueueSize == 0 {
		cfg.Journal.QueueSize = 256
	}

	e := &cfg.Engine
	if e.InitialCapital == 0 {
		e.InitialCapital = 100000
	}
	if e.MaxPosition == 0 {
		e.MaxPosition = 1200
	}
	if e.MaxSpreadToCross == 0 {
		e.MaxSpreadToCross = 2.0
	}
	if e.PriceTick == 0 {
		e.PriceTick = 0.1
	}
	if e.PassiveImprove == 0 {
		e.PassiveImprove = 0.1
	}
	if e.MinBookQty == 0 {
		e.MinBookQty = 1.0
	}
	if e.InitCooldown == 0 {
		e.InitCooldown = 5 * time.Second
	}
	if e.CloseOutBufferSec == 0 {
		e.CloseOutBufferSec = 2.0
	}
	if e.NudgeWindowSec == 0 {
		e.NudgeWindowSec = 60.0
	}
	if e.NudgeFraction == 0 {
		e.NudgeFraction = 0.25
	}

	m := &cfg.Model
	if m.HomeAdvantage == 0 {
		m.HomeAdvantage = 1.25
	}
	if m.MomentumAlpha == 0 {
		m.MomentumAlpha = 0.2
	}
	if m.LeadWeight == 0 {
		m.LeadWeight = 0.18
	}
	if m.MomentumWeight == 0 {
		m.MomentumWeight = 0.10
	}
	if m.HomeWeight == 0 {
		m.HomeWeight = 0.20
	}
	if m.BaseEdgeThreshold == 0 {
		m.BaseEdgeThreshold = 0.9
	}
	if m.LateTighten == 0 {
		m.LateTighten = 0.55
	}
	if m.MinEdgeThreshold == 0 {
		m.MinEdgeThreshold = 0.2
	}
	if m.RegulationLenSec == 0 {
		m.RegulationLenSec = 2400
	}
	if m.ExtendedLenSec == 0 {
		m.ExtendedLenSec = 2880
	}

	s := &cfg.Sizing
	if s.RiskPerTrade == 0 {
		s.RiskPerTrade = 0.0075
	}
	if s.MaxOrderFraction == 0 {
		s.MaxOrderFraction = 0.25
	}
}

func validate(cfg *Config) error {
	if cfg.Engine.Instrument == "" {
		return errors.New("engine.instrument is required")
	}
	if cfg.Engine.MaxPosition <= 0 {
		return errors.New("engine.max_position must be > 0")
	}
	if cfg.Engine.InitialCapital <= 0 {
		return errors.New("engine.initial_capital must be > 0")
	}
	if cfg.Sizing.RiskPerTrade <= 0 || cfg.Sizing.RiskPerTrade >= 1 {
		return errors.New("sizing.risk_per_trade must be in (0, 1)")
	}
	if cfg.Model.RegulationLenSec > cfg.Model.ExtendedLenSec {
		return errors.New("model.regulation_len_sec must not exceed model.extended_len_sec")
	}
	if cfg.Journal.Enabled && cfg.Journal.DSN == "" {
		return errors.New("journal.dsn is required when journal is enabled")
	}
	return nil
}
