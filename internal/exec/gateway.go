package exec

import (
	"context"
	"time"

	"courtside-mm-bot/internal/book"
	"courtside-mm-bot/internal/engine"
	"courtside-mm-bot/internal/state"
	"courtside-mm-bot/internal/venue"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const callTimeout = 5 * time.Second

// Gateway adapts the venue REST client to the engine's synchronous Venue
// interface. Placements are rate limited: a throttled order is rejected with
// the sentinel handle rather than queued, so the engine never blocks. Every
// accepted order and cancel is journaled to the audit store.
type Gateway struct {
	client  *venue.Client
	store   state.Store
	limiter *rate.Limiter
	log     *zap.Logger
}

func New(client *venue.Client, store state.Store, limiter *rate.Limiter, log *zap.Logger) *Gateway {
	return &Gateway{
		client:  client,
		store:   store,
		limiter: limiter,
		log:     log,
	}
}

func (g *Gateway) PlaceLimitOrder(side book.Side, instrument string, qty, price float64, ioc bool) int64 {
	return g.place(venue.OrderRequest{
		ClientID:          uuid.NewString(),
		Instrument:        instrument,
		Side:              string(side),
		Type:              venue.TypeLimit,
		Quantity:          qty,
		Price:             price,
		ImmediateOrCancel: ioc,
	})
}

func (g *Gateway) PlaceMarketOrder(side book.Side, instrument string, qty float64) int64 {
	return g.place(venue.OrderRequest{
		ClientID:   uuid.NewString(),
		Instrument: instrument,
		Side:       string(side),
		Type:       venue.TypeMarket,
		Quantity:   qty,
	})
}

func (g *Gateway) CancelOrder(instrument string, handle int64) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	if err := g.client.CancelOrder(ctx, instrument, handle); err != nil {
		g.log.Warn("cancel failed", zap.Int64("handle", handle), zap.Error(err))
	}
	g.audit(func(ctx context.Context) error {
		return g.store.RecordCancel(ctx, instrument, handle, time.Now().UTC())
	})
}

func (g *Gateway) place(req venue.OrderRequest) int64 {
	if g.limiter != nil && !g.limiter.Allow() {
		g.log.Warn("order throttled", zap.String("side", req.Side), zap.String("type", req.Type))
		return engine.RejectedHandle
	}
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	handle, err := g.client.PlaceOrder(ctx, req)
	if err != nil {
		g.log.Warn("order failed",
			zap.String("side", req.Side),
			zap.String("type", req.Type),
			zap.Float64("qty", req.Quantity),
			zap.Float64("price", req.Price),
			zap.Error(err),
		)
		return engine.RejectedHandle
	}
	g.audit(func(ctx context.Context) error {
		return g.store.RecordOrder(ctx, state.OrderRecord{
			Time:              time.Now().UTC(),
			ClientID:          req.ClientID,
			Instrument:        req.Instrument,
			Side:              req.Side,
			Type:              req.Type,
			Quantity:          req.Quantity,
			Price:             req.Price,
			ImmediateOrCancel: req.ImmediateOrCancel,
			Handle:            handle,
		})
	})
	return handle
}

func (g *Gateway) audit(fn func(ctx context.Context) error) {
	if g.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		g.log.Warn("audit write failed", zap.Error(err))
	}
}
