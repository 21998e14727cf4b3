package state

import (
	"context"
	"time"
)

// OrderRecord is one audit row for a placed order. Audit only: nothing is
// ever read back into strategy state.
type OrderRecord struct {
	Time              time.Time
	ClientID          string
	Instrument        string
	Side              string
	Type              string
	Quantity          float64
	Price             float64
	ImmediateOrCancel bool
	Handle            int64
}

type Store interface {
	RecordOrder(ctx context.Context, rec OrderRecord) error
	RecordCancel(ctx context.Context, instrument string, handle int64, at time.Time) error
	Close() error
}
