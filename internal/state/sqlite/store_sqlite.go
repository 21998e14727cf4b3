package sqlite

import (
	"context"
	"database/sql"
	"time"

	"courtside-mm-bot/internal/state"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS orders (
		ts TEXT NOT NULL,
		client_id TEXT NOT NULL,
		instrument TEXT NOT NULL,
		side TEXT NOT NULL,
		type TEXT NOT NULL,
		quantity REAL NOT NULL,
		price REAL NOT NULL,
		ioc INTEGER NOT NULL,
		handle INTEGER NOT NULL
	)`); err != nil {
		return err
	}
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS cancels (
		ts TEXT NOT NULL,
		instrument TEXT NOT NULL,
		handle INTEGER NOT NULL
	)`)
	return err
}

func (s *Store) RecordOrder(ctx context.Context, rec state.OrderRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO orders (ts, client_id, instrument, side, type, quantity, price, ioc, handle) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Time.UTC().Format(time.RFC3339Nano),
		rec.ClientID,
		rec.Instrument,
		rec.Side,
		rec.Type,
		rec.Quantity,
		rec.Price,
		boolToInt(rec.ImmediateOrCancel),
		rec.Handle,
	)
	return err
}

func (s *Store) RecordCancel(ctx context.Context, instrument string, handle int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cancels (ts, instrument, handle) VALUES (?, ?, ?)`,
		at.UTC().Format(time.RFC3339Nano),
		instrument,
		handle,
	)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
