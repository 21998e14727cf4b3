package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"courtside-mm-bot/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

const writeTimeout = 3 * time.Second

// Fill is one executed trade as reported by the venue.
type Fill struct {
	Time             time.Time
	Instrument       string
	Side             string
	Price            float64
	Quantity         float64
	CapitalRemaining float64
}

// GameSnapshot is the engine's view after folding in one game event.
type GameSnapshot struct {
	Time          time.Time
	Instrument    string
	EventType     string
	TimeRemaining float64
	Lead          float64
	Momentum      float64
	FairPrice     float64
	Position      float64
	Capital       float64
}

// Writer streams fills and per-event engine snapshots into
// Timescale/Postgres on background channels. Enqueue never blocks; rows are
// dropped when the queue is full.
type Writer struct {
	db        *sql.DB
	log       *zap.Logger
	schema    string
	fills     chan Fill
	snapshots chan GameSnapshot
	started   atomic.Bool
	dropFill  atomic.Uint64
	dropSnap  atomic.Uint64
}

func New(cfg config.JournalConfig, log *zap.Logger) (*Writer, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("journal dsn is required")
	}
	schema := strings.TrimSpace(cfg.Schema)
	if schema == "" {
		schema = "public"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	writer := &Writer{
		db:        db,
		log:       log,
		schema:    schema,
		fills:     make(chan Fill, queueSize),
		snapshots: make(chan GameSnapshot, queueSize),
	}
	if err := writer.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return writer, nil
}

func (w *Writer) Start(ctx context.Context) {
	if w == nil {
		return
	}
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	go w.run(ctx)
}

func (w *Writer) Close() error {
	if w == nil || w.db == nil {
		return nil
	}
	return w.db.Close()
}

func (w *Writer) EnqueueFill(fill Fill) {
	if w == nil {
		return
	}
	select {
	case w.fills <- fill:
		return
	default:
		if w.dropFill.Add(1) == 1 && w.log != nil {
			w.log.Warn("journal fill queue full")
		}
	}
}

func (w *Writer) EnqueueSnapshot(snap GameSnapshot) {
	if w == nil {
		return
	}
	select {
	case w.snapshots <- snap:
		return
	default:
		if w.dropSnap.Add(1) == 1 && w.log != nil {
			w.log.Warn("journal snapshot queue full")
		}
	}
}

func (w *Writer) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fill := <-w.fills:
			w.writeFill(ctx, fill)
		case snap := <-w.snapshots:
			w.writeSnapshot(ctx, snap)
		}
	}
}

func (w *Writer) ensureSchema(ctx context.Context) error {
	if w.db == nil {
		return errors.New("journal db not initialized")
	}
	if w.schema != "public" {
		if err := w.exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", w.schema)); err != nil {
			return err
		}
	}
	if err := w.exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		ts TIMESTAMPTZ NOT NULL,
		instrument TEXT NOT NULL,
		side TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		quantity DOUBLE PRECISION NOT NULL,
		capital_remaining DOUBLE PRECISION NOT NULL
	)`, w.table("fills"))); err != nil {
		return err
	}
	if err := w.exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		ts TIMESTAMPTZ NOT NULL,
		instrument TEXT NOT NULL,
		event_type TEXT NOT NULL,
		time_remaining DOUBLE PRECISION NOT NULL,
		lead DOUBLE PRECISION NOT NULL,
		momentum DOUBLE PRECISION NOT NULL,
		fair_price DOUBLE PRECISION NOT NULL,
		position DOUBLE PRECISION NOT NULL,
		capital DOUBLE PRECISION NOT NULL
	)`, w.table("game_snapshots"))); err != nil {
		return err
	}
	if err := w.exec(ctx, "CREATE EXTENSION IF NOT EXISTS timescaledb"); err != nil {
		if w.log != nil {
			w.log.Warn("timescale extension ensure failed", zap.Error(err))
		}
		return nil
	}
	if err := w.exec(ctx, fmt.Sprintf("SELECT create_hypertable('%s', 'ts', if_not_exists => TRUE)", w.table("fills"))); err != nil && w.log != nil {
		w.log.Warn("journal fills hypertable create failed", zap.Error(err))
	}
	if err := w.exec(ctx, fmt.Sprintf("SELECT create_hypertable('%s', 'ts', if_not_exists => TRUE)", w.table("game_snapshots"))); err != nil && w.log != nil {
		w.log.Warn("journal game_snapshots hypertable create failed", zap.Error(err))
	}
	return nil
}

func (w *Writer) writeFill(ctx context.Context, fill Fill) {
	if w.db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	query := fmt.Sprintf(`INSERT INTO %s (
		ts, instrument, side, price, quantity, capital_remaining
	) VALUES ($1,$2,$3,$4,$5,$6)`, w.table("fills"))
	if _, err := w.db.ExecContext(ctx, query,
		fill.Time,
		fill.Instrument,
		fill.Side,
		fill.Price,
		fill.Quantity,
		fill.CapitalRemaining,
	); err != nil && w.log != nil {
		w.log.Warn("journal fill insert failed", zap.Error(err))
	}
}

func (w *Writer) writeSnapshot(ctx context.Context, snap GameSnapshot) {
	if w.db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	query := fmt.Sprintf(`INSERT INTO %s (
		ts, instrument, event_type, time_remaining, lead, momentum, fair_price, position, capital
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`, w.table("game_snapshots"))
	if _, err := w.db.ExecContext(ctx, query,
		snap.Time,
		snap.Instrument,
		snap.EventType,
		snap.TimeRemaining,
		snap.Lead,
		snap.Momentum,
		snap.FairPrice,
		snap.Position,
		snap.Capital,
	); err != nil && w.log != nil {
		w.log.Warn("journal snapshot insert failed", zap.Error(err))
	}
}

func (w *Writer) exec(ctx context.Context, query string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_, err := w.db.ExecContext(ctx, query)
	return err
}

func (w *Writer) table(name string) string {
	return w.schema + "." + name
}
