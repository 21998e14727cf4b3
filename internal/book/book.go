package book

import "math"

// Prices live on the 0-100 probability scale the venue quotes in.
const (
	PriceMin = 0.0
	PriceMax = 100.0
)

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

type Level struct {
	Price float64
	Qty   float64
}

// Book holds one side-keyed depth map per side. Levels are keyed by the
// price quantized to the tick so float noise from the feed cannot split a
// level in two. Dust below MinQty is filtered at query time rather than
// deleted, so a later delta can still top the level back up.
type Book struct {
	tick   float64
	minQty float64
	bids   map[int64]float64
	asks   map[int64]float64
}

func New(tick, minQty float64) *Book {
	if tick <= 0 {
		tick = 0.1
	}
	return &Book{
		tick:   tick,
		minQty: minQty,
		bids:   make(map[int64]float64),
		asks:   make(map[int64]float64),
	}
}

func ClampPrice(p float64) float64 {
	return math.Min(PriceMax, math.Max(PriceMin, p))
}

func (b *Book) key(price float64) int64 {
	return int64(math.Round(ClampPrice(price) / b.tick))
}

func (b *Book) price(key int64) float64 {
	return float64(key) * b.tick
}

// ApplyDelta upserts a level; qty <= 0 removes it.
func (b *Book) ApplyDelta(side Side, price, qty float64) {
	levels := b.bids
	if side == Sell {
		levels = b.asks
	}
	k := b.key(price)
	if qty <= 0 {
		delete(levels, k)
		return
	}
	levels[k] = qty
}

// ApplySnapshot replaces the whole book, dropping dust levels up front.
func (b *Book) ApplySnapshot(bids, asks []Level) {
	b.bids = make(map[int64]float64, len(bids))
	b.asks = make(map[int64]float64, len(asks))
	for _, lvl := range bids {
		if lvl.Qty >= b.minQty {
			b.bids[b.key(lvl.Price)] = lvl.Qty
		}
	}
	for _, lvl := range asks {
		if lvl.Qty >= b.minQty {
			b.asks[b.key(lvl.Price)] = lvl.Qty
		}
	}
}

func (b *Book) Clear() {
	b.bids = make(map[int64]float64)
	b.asks = make(map[int64]float64)
}

func (b *Book) BestBid() (float64, bool) {
	found := false
	var best int64
	for k, qty := range b.bids {
		if qty < b.minQty {
			continue
		}
		if !found || k > best {
			best = k
			found = true
		}
	}
	if !found {
		return 0, false
	}
	return b.price(best), true
}

func (b *Book) BestAsk() (float64, bool) {
	found := false
	var best int64
	for k, qty := range b.asks {
		if qty < b.minQty {
			continue
		}
		if !found || k < best {
			best = k
			found = true
		}
	}
	if !found {
		return 0, false
	}
	return b.price(best), true
}

func (b *Book) Mid() (float64, bool) {
	bid, okBid := b.BestBid()
	ask, okAsk := b.BestAsk()
	if !okBid || !okAsk {
		return 0, false
	}
	return (bid + ask) / 2, true
}
