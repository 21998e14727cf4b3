package engine

import (
	"math"
	"time"

	"courtside-mm-bot/internal/book"
	"courtside-mm-bot/internal/config"
	"courtside-mm-bot/internal/game"
	"courtside-mm-bot/internal/metrics"
	"courtside-mm-bot/internal/model"
	"courtside-mm-bot/internal/sizing"

	"go.uber.org/zap"
)

// workingOrder is a live resting order handle. A nil slot means no resting
// order on that side; the engine never holds two per side.
type workingOrder struct {
	handle int64
}

// Engine is the single-instrument market-making decision engine. It owns all
// mutable strategy state and assumes callbacks are delivered one at a time;
// it holds no locks and never blocks.
type Engine struct {
	cfg       config.EngineConfig
	modelCfg  config.ModelConfig
	sizingCfg config.SizingConfig

	venue    Venue
	clock    Clock
	log      *zap.Logger
	metrics  *metrics.Metrics
	listener Listener

	book     *book.Book
	game     *game.State
	position float64
	capital  float64

	workingBid *workingOrder
	workingAsk *workingOrder

	resetAt time.Time
}

func New(cfg config.EngineConfig, modelCfg config.ModelConfig, sizingCfg config.SizingConfig, venue Venue, clock Clock, log *zap.Logger, m *metrics.Metrics) *Engine {
	if clock == nil {
		clock = RealClock()
	}
	if m == nil {
		m = metrics.NewNoop()
	}
	e := &Engine{
		cfg:       cfg,
		modelCfg:  modelCfg,
		sizingCfg: sizingCfg,
		venue:     venue,
		clock:     clock,
		log:       log,
		metrics:   m,
		book:      book.New(cfg.PriceTick, cfg.MinBookQty),
		game:      game.NewState(modelCfg.RegulationLenSec, modelCfg.ExtendedLenSec, modelCfg.MomentumAlpha),
	}
	e.reset()
	return e
}

// SetListener installs an optional lifecycle hook. Must be called before the
// first callback is delivered.
func (e *Engine) SetListener(l Listener) { e.listener = l }

// Position returns the current signed net position.
func (e *Engine) Position() float64 { return e.position }

// Capital returns the remaining capital as last reported by the venue.
func (e *Engine) Capital() float64 { return e.capital }

// Status is a read-only view of the engine state for journaling.
type Status struct {
	Position      float64
	Capital       float64
	TimeRemaining float64
	Lead          float64
	Momentum      float64
	FairPrice     float64
}

func (e *Engine) Snapshot() Status {
	return Status{
		Position:      e.position,
		Capital:       e.capital,
		TimeRemaining: e.game.TimeRemaining,
		Lead:          e.game.Lead,
		Momentum:      e.game.Momentum,
		FairPrice:     model.FairPrice(e.game.Lead, e.game.Momentum, e.game.TimeRemaining, e.modelCfg),
	}
}

// reset returns every piece of mutable state to its fresh-construction
// value and re-arms the startup cooldown.
func (e *Engine) reset() {
	e.book.Clear()
	e.game.Reset()
	e.position = 0
	e.capital = e.cfg.InitialCapital
	e.cancelWorking()
	e.resetAt = e.clock.Now()
	e.metrics.Resets.Inc()
}

// OnTradeUpdate is informational only.
func (e *Engine) OnTradeUpdate(instrument string, side book.Side, qty, price float64) {
	_ = instrument
	_ = side
	_ = qty
	_ = price
}

func (e *Engine) OnOrderBookUpdate(instrument string, side book.Side, qty, price float64) {
	if instrument != e.cfg.Instrument {
		return
	}
	e.book.ApplyDelta(side, price, qty)
	e.decide(false)
}

func (e *Engine) OnOrderBookSnapshot(instrument string, bids, asks []book.Level) {
	if instrument != e.cfg.Instrument {
		return
	}
	e.book.ApplySnapshot(bids, asks)
	e.decide(false)
}

// OnAccountUpdate applies a fill. Position moves by the signed fill size and
// capital is overwritten with the venue-reported figure, which is
// authoritative. A fill that leaves the book long pulls any resting bid so a
// filled buy is not chased; symmetric for shorts. Fills never submit orders
// directly; the next trigger re-runs the full decision cycle.
func (e *Engine) OnAccountUpdate(instrument string, side book.Side, price, filledQty, capitalRemaining float64) {
	_ = price
	if instrument != e.cfg.Instrument {
		return
	}
	signed := filledQty
	if side == book.Sell {
		signed = -filledQty
	}
	e.position += signed
	e.capital = capitalRemaining

	if e.position > 0 && e.workingBid != nil {
		e.venue.CancelOrder(e.cfg.Instrument, e.workingBid.handle)
		e.metrics.CancelsIssued.Inc()
		e.workingBid = nil
	}
	if e.position < 0 && e.workingAsk != nil {
		e.venue.CancelOrder(e.cfg.Instrument, e.workingAsk.handle)
		e.metrics.CancelsIssued.Inc()
		e.workingAsk = nil
	}
}

func (e *Engine) OnGameEvent(ev game.Event) {
	e.game.Apply(ev)

	if ev.Type == game.EventEndGame {
		e.flattenAll("end_game")
		e.reset()
		if e.listener != nil {
			e.listener.EngineReset()
		}
		e.log.Info("game over, state reset")
		return
	}

	e.decide(game.Classify(ev, e.game.TimeRemaining))
}

// decide runs one decision cycle. Guards are evaluated in a fixed order:
// startup cooldown, close-out buffer, market readiness, late-game inventory
// nudge, aggressive crossing, passive resting. At most one order action is
// issued per invocation.
func (e *Engine) decide(highImpact bool) {
	if e.clock.Now().Sub(e.resetAt) < e.cfg.InitCooldown {
		return
	}

	// Forced close-out fires on any trigger, independent of market data.
	// No reset here: the feed may still report the game live inside the
	// buffer window.
	if e.game.TimeRemaining <= e.cfg.CloseOutBufferSec {
		e.flattenAll("close_out")
		return
	}

	bestBid, okBid := e.book.BestBid()
	bestAsk, okAsk := e.book.BestAsk()
	mid, okMid := e.book.Mid()
	if !okBid || !okAsk || !okMid {
		return
	}

	t := e.game.TimeRemaining
	spread := math.Max(0, bestAsk-bestBid)
	fair := model.FairPrice(e.game.Lead, e.game.Momentum, t, e.modelCfg)
	threshold := model.EdgeThreshold(t, e.modelCfg)

	edgeBuy := fair - bestAsk
	edgeSell := bestBid - fair

	// Late-game inventory nudge: shed part of a position the model has
	// turned against, then stop for this cycle.
	if t < e.cfg.NudgeWindowSec {
		if e.position > 0.5 && fair < bestBid {
			qty := math.Floor(math.Max(1, e.position*e.cfg.NudgeFraction))
			e.placeMarket(book.Sell, qty)
			e.metrics.Nudges.Inc()
			e.log.Info("inventory nudge", zap.Float64("qty", qty), zap.Float64("fair", fair), zap.Float64("position", e.position))
			return
		}
		if e.position < 0 && fair > bestAsk {
			qty := math.Floor(math.Max(1, -e.position*e.cfg.NudgeFraction))
			e.placeMarket(book.Buy, qty)
			e.metrics.Nudges.Inc()
			e.log.Info("inventory nudge", zap.Float64("qty", qty), zap.Float64("fair", fair), zap.Float64("position", e.position))
			return
		}
	}

	allowCross := spread <= e.cfg.MaxSpreadToCross || highImpact

	if allowCross {
		// Buy is evaluated before sell by policy; when both edges clear the
		// threshold the sell waits for the next cycle.
		if edgeBuy > threshold && e.position < e.cfg.MaxPosition {
			qty := sizing.Contracts(edgeBuy, mid, e.capital, t, e.cfg.MaxPosition, e.sizingCfg)
			qty = math.Min(qty, e.cfg.MaxPosition-e.position)
			if qty >= 1 {
				e.cancelWorking()
				e.placeLimit(book.Buy, qty, bestAsk, true)
				e.metrics.Crossings.Inc()
				return
			}
		}
		if edgeSell > threshold && e.position > -e.cfg.MaxPosition {
			qty := sizing.Contracts(edgeSell, mid, e.capital, t, e.cfg.MaxPosition, e.sizingCfg)
			qty = math.Min(qty, e.position+e.cfg.MaxPosition)
			if qty >= 1 {
				e.cancelWorking()
				e.placeLimit(book.Sell, qty, bestBid, true)
				e.metrics.Crossings.Inc()
				return
			}
		}
	}

	e.restPassive(fair, bestBid, bestAsk, mid, threshold, t)
}

// restPassive posts at most one resting order a tick inside the touch on the
// side with the better qualifying edge, canceling stale orders on both sides
// first. With no qualifying edge it pulls all resting exposure.
func (e *Engine) restPassive(fair, bestBid, bestAsk, mid, threshold, t float64) {
	edgeBuy := fair - bestAsk
	edgeSell := bestBid - fair

	if edgeBuy > edgeSell && edgeBuy > threshold && e.position < e.cfg.MaxPosition {
		qty := sizing.Contracts(edgeBuy, mid, e.capital, t, e.cfg.MaxPosition, e.sizingCfg)
		qty = math.Min(qty, e.cfg.MaxPosition-e.position)
		if qty >= 1 {
			e.cancelWorking()
			px := book.ClampPrice(bestBid + e.cfg.PassiveImprove)
			if h := e.placeLimit(book.Buy, qty, px, false); h >= 0 {
				e.workingBid = &workingOrder{handle: h}
			}
			e.metrics.PassiveQuotes.Inc()
		}
		return
	}
	if edgeSell > threshold && e.position > -e.cfg.MaxPosition {
		qty := sizing.Contracts(edgeSell, mid, e.capital, t, e.cfg.MaxPosition, e.sizingCfg)
		qty = math.Min(qty, e.position+e.cfg.MaxPosition)
		if qty >= 1 {
			e.cancelWorking()
			px := book.ClampPrice(bestAsk - e.cfg.PassiveImprove)
			if h := e.placeLimit(book.Sell, qty, px, false); h >= 0 {
				e.workingAsk = &workingOrder{handle: h}
			}
			e.metrics.PassiveQuotes.Inc()
		}
		return
	}
	// No edge worth resting on: carry no passive exposure.
	e.cancelWorking()
}

// flattenAll cancels both resting orders and market-orders the whole
// position flat, rounded down to whole contracts.
func (e *Engine) flattenAll(reason string) {
	e.cancelWorking()
	if math.Abs(e.position) < 1 {
		return
	}
	if e.listener != nil {
		e.listener.Flattened(e.position, reason)
	}
	if e.position > 0 {
		e.placeMarket(book.Sell, math.Floor(e.position))
	} else {
		e.placeMarket(book.Buy, math.Floor(-e.position))
	}
	e.metrics.Flattens.Inc()
	e.log.Info("flattened position", zap.String("reason", reason), zap.Float64("position", e.position))
}

func (e *Engine) cancelWorking() {
	if e.workingBid != nil {
		e.venue.CancelOrder(e.cfg.Instrument, e.workingBid.handle)
		e.metrics.CancelsIssued.Inc()
		e.workingBid = nil
	}
	if e.workingAsk != nil {
		e.venue.CancelOrder(e.cfg.Instrument, e.workingAsk.handle)
		e.metrics.CancelsIssued.Inc()
		e.workingAsk = nil
	}
}

func (e *Engine) placeLimit(side book.Side, qty, price float64, ioc bool) int64 {
	h := e.venue.PlaceLimitOrder(side, e.cfg.Instrument, qty, price, ioc)
	if h < 0 {
		// Rejections are dropped, not retried; the next trigger revisits.
		e.metrics.OrdersRejected.Inc()
		e.log.Warn("limit order rejected", zap.String("side", string(side)), zap.Float64("qty", qty), zap.Float64("price", price), zap.Bool("ioc", ioc))
		return h
	}
	e.metrics.OrdersPlaced.Inc()
	return h
}

func (e *Engine) placeMarket(side book.Side, qty float64) int64 {
	h := e.venue.PlaceMarketOrder(side, e.cfg.Instrument, qty)
	if h < 0 {
		e.metrics.OrdersRejected.Inc()
		e.log.Warn("market order rejected", zap.String("side", string(side)), zap.Float64("qty", qty))
		return h
	}
	e.metrics.OrdersPlaced.Inc()
	return h
}
