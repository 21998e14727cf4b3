package feed

import (
	"encoding/json"

	"courtside-mm-bot/internal/book"
	"courtside-mm-bot/internal/game"

	"go.uber.org/zap"
)

// Feed channels.
const (
	ChannelTrade     = "trade"
	ChannelBookDelta = "orderbook_delta"
	ChannelSnapshot  = "orderbook_snapshot"
	ChannelFill      = "fill"
	ChannelGameEvent = "game_event"
)

// Handler receives decoded feed callbacks. The production engine is the one
// implementation; hosts and tests can wrap or substitute it.
type Handler interface {
	OnTradeUpdate(instrument string, side book.Side, qty, price float64)
	OnOrderBookUpdate(instrument string, side book.Side, qty, price float64)
	OnOrderBookSnapshot(instrument string, bids, asks []book.Level)
	OnAccountUpdate(instrument string, side book.Side, price, filledQty, capitalRemaining float64)
	OnGameEvent(ev game.Event)
}

type frame struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

type tickMsg struct {
	Instrument string  `json:"instrument"`
	Side       string  `json:"side"`
	Price      float64 `json:"price"`
	Quantity   float64 `json:"quantity"`
}

type levelMsg struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

type snapshotMsg struct {
	Instrument string     `json:"instrument"`
	Bids       []levelMsg `json:"bids"`
	Asks       []levelMsg `json:"asks"`
}

type fillMsg struct {
	Instrument       string  `json:"instrument"`
	Side             string  `json:"side"`
	Price            float64 `json:"price"`
	Quantity         float64 `json:"quantity"`
	CapitalRemaining float64 `json:"capital_remaining"`
}

// Dispatcher decodes raw feed frames and routes them to the handler.
// Malformed frames are dropped with a debug log; the feed is lossy by
// contract and the strategy tolerates gaps.
type Dispatcher struct {
	handler Handler
	log     *zap.Logger
}

func NewDispatcher(handler Handler, log *zap.Logger) *Dispatcher {
	return &Dispatcher{handler: handler, log: log}
}

func (d *Dispatcher) Dispatch(msg json.RawMessage) {
	var f frame
	if err := json.Unmarshal(msg, &f); err != nil {
		d.log.Debug("feed decode error", zap.Error(err))
		return
	}
	switch f.Channel {
	case ChannelTrade:
		var m tickMsg
		if err := json.Unmarshal(f.Data, &m); err != nil {
			d.log.Debug("trade decode error", zap.Error(err))
			return
		}
		d.handler.OnTradeUpdate(m.Instrument, sideFrom(m.Side), m.Quantity, m.Price)
	case ChannelBookDelta:
		var m tickMsg
		if err := json.Unmarshal(f.Data, &m); err != nil {
			d.log.Debug("book delta decode error", zap.Error(err))
			return
		}
		d.handler.OnOrderBookUpdate(m.Instrument, sideFrom(m.Side), m.Quantity, m.Price)
	case ChannelSnapshot:
		var m snapshotMsg
		if err := json.Unmarshal(f.Data, &m); err != nil {
			d.log.Debug("snapshot decode error", zap.Error(err))
			return
		}
		d.handler.OnOrderBookSnapshot(m.Instrument, levels(m.Bids), levels(m.Asks))
	case ChannelFill:
		var m fillMsg
		if err := json.Unmarshal(f.Data, &m); err != nil {
			d.log.Debug("fill decode error", zap.Error(err))
			return
		}
		d.handler.OnAccountUpdate(m.Instrument, sideFrom(m.Side), m.Price, m.Quantity, m.CapitalRemaining)
	case ChannelGameEvent:
		var ev game.Event
		if err := json.Unmarshal(f.Data, &ev); err != nil {
			d.log.Debug("game event decode error", zap.Error(err))
			return
		}
		d.handler.OnGameEvent(ev)
	default:
		// Pongs and channels we do not subscribe to.
	}
}

func sideFrom(s string) book.Side {
	if s == "sell" {
		return book.Sell
	}
	return book.Buy
}

func levels(in []levelMsg) []book.Level {
	out := make([]book.Level, 0, len(in))
	for _, lvl := range in {
		out = append(out, book.Level{Price: lvl.Price, Qty: lvl.Quantity})
	}
	return out
}

// SubscribeMessage builds the subscription payload for one channel and
// instrument. Game events are venue-global and take no instrument.
func SubscribeMessage(channel, instrument string) map[string]any {
	sub := map[string]any{"method": "subscribe", "channel": channel}
	if instrument != "" {
		sub["instrument"] = instrument
	}
	return sub
}
