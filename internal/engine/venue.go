package engine

import (
	"time"

	"courtside-mm-bot/internal/book"
)

// RejectedHandle is the sentinel a Venue returns when a placement fails.
// Handles are opaque; the engine only compares them against zero.
const RejectedHandle int64 = -1

// Venue is the synchronous order gateway the engine trades through. Calls
// return immediately; fills arrive later through the account feed. Cancel is
// fire-and-forget.
type Venue interface {
	PlaceLimitOrder(side book.Side, instrument string, qty, price float64, ioc bool) int64
	PlaceMarketOrder(side book.Side, instrument string, qty float64) int64
	CancelOrder(instrument string, handle int64)
}

// Clock gates the startup cooldown. Injectable so tests can advance time
// without sleeping.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func RealClock() Clock { return realClock{} }

// Listener receives engine lifecycle notifications. All methods are invoked
// on the callback goroutine and must not block.
type Listener interface {
	Flattened(position float64, reason string)
	EngineReset()
}
