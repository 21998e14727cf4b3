package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"courtside-mm-bot/internal/alerts"
	"courtside-mm-bot/internal/book"
	"courtside-mm-bot/internal/config"
	"courtside-mm-bot/internal/engine"
	"courtside-mm-bot/internal/exec"
	"courtside-mm-bot/internal/feed"
	"courtside-mm-bot/internal/game"
	"courtside-mm-bot/internal/journal"
	"courtside-mm-bot/internal/metrics"
	"courtside-mm-bot/internal/state/sqlite"
	"courtside-mm-bot/internal/venue"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const alertTimeout = 10 * time.Second

// App wires the feed, engine, venue gateway and observability together. It
// implements feed.Handler (forwarding to the engine and journaling) and
// engine.Listener (alerting on flattens and resets).
type App struct {
	cfg     *config.Config
	log     *zap.Logger
	store   *sqlite.Store
	venue   *venue.Client
	gateway *exec.Gateway
	engine  *engine.Engine
	feed    *feed.Client
	prom    *metrics.Prometheus
	journal *journal.Writer
	alerts  *alerts.Telegram
}

func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	apiKey := strings.TrimSpace(os.Getenv("COURTSIDE_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("COURTSIDE_API_KEY is required")
	}
	apiSecret := strings.TrimSpace(os.Getenv("COURTSIDE_API_SECRET"))
	if apiSecret == "" {
		return nil, errors.New("COURTSIDE_API_SECRET is required")
	}
	signer, err := venue.NewSigner(apiKey, apiSecret)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.State.SQLitePath), 0o755); err != nil {
		return nil, err
	}
	store, err := sqlite.New(cfg.State.SQLitePath)
	if err != nil {
		return nil, err
	}
	venueClient := venue.New(cfg.Venue, signer, log)

	limiter := rate.NewLimiter(rate.Limit(cfg.Venue.OrderRate), cfg.Venue.OrderBurst)
	gateway := exec.New(venueClient, store, limiter, log)

	var m *metrics.Metrics
	var prom *metrics.Prometheus
	if cfg.Metrics.Enabled {
		prom = metrics.NewPrometheus()
		m = prom.Metrics
	} else {
		m = metrics.NewNoop()
	}

	eng := engine.New(cfg.Engine, cfg.Model, cfg.Sizing, gateway, engine.RealClock(), log, m)

	journalWriter, err := journal.New(cfg.Journal, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	feedClient := feed.New(cfg.WS.URL, cfg.WS.ReconnectDelay, cfg.WS.PingInterval, log)

	a := &App{
		cfg:     cfg,
		log:     log,
		store:   store,
		venue:   venueClient,
		gateway: gateway,
		engine:  eng,
		feed:    feedClient,
		prom:    prom,
		journal: journalWriter,
		alerts:  alerts.NewTelegram(cfg.Telegram, log),
	}
	eng.SetListener(a)
	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	defer a.store.Close()
	defer a.journal.Close()

	a.journal.Start(ctx)
	a.startMetricsServer(ctx)

	if err := a.feed.Connect(ctx); err != nil {
		return err
	}
	instrument := a.cfg.Engine.Instrument
	for _, sub := range []map[string]any{
		feed.SubscribeMessage(feed.ChannelBookDelta, instrument),
		feed.SubscribeMessage(feed.ChannelSnapshot, instrument),
		feed.SubscribeMessage(feed.ChannelTrade, instrument),
		feed.SubscribeMessage(feed.ChannelFill, instrument),
		feed.SubscribeMessage(feed.ChannelGameEvent, ""),
	} {
		if err := a.feed.Subscribe(ctx, sub); err != nil {
			return err
		}
	}
	a.log.Info("feed subscribed", zap.String("instrument", instrument))

	dispatcher := feed.NewDispatcher(a, a.log)
	return a.feed.Run(ctx, dispatcher.Dispatch)
}

func (a *App) startMetricsServer(ctx context.Context) {
	if a.prom == nil {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.prom.Handler())
	server := &http.Server{Addr: a.cfg.Metrics.Listen, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	a.log.Info("metrics server started", zap.String("listen", a.cfg.Metrics.Listen))
}

// feed.Handler: forward to the engine, then journal what happened.

func (a *App) OnTradeUpdate(instrument string, side book.Side, qty, price float64) {
	a.engine.OnTradeUpdate(instrument, side, qty, price)
}

func (a *App) OnOrderBookUpdate(instrument string, side book.Side, qty, price float64) {
	a.engine.OnOrderBookUpdate(instrument, side, qty, price)
}

func (a *App) OnOrderBookSnapshot(instrument string, bids, asks []book.Level) {
	a.engine.OnOrderBookSnapshot(instrument, bids, asks)
}

func (a *App) OnAccountUpdate(instrument string, side book.Side, price, filledQty, capitalRemaining float64) {
	a.engine.OnAccountUpdate(instrument, side, price, filledQty, capitalRemaining)
	if instrument != a.cfg.Engine.Instrument {
		return
	}
	a.journal.EnqueueFill(journal.Fill{
		Time:             time.Now().UTC(),
		Instrument:       instrument,
		Side:             string(side),
		Price:            price,
		Quantity:         filledQty,
		CapitalRemaining: capitalRemaining,
	})
}

func (a *App) OnGameEvent(ev game.Event) {
	a.engine.OnGameEvent(ev)
	snap := a.engine.Snapshot()
	a.journal.EnqueueSnapshot(journal.GameSnapshot{
		Time:          time.Now().UTC(),
		Instrument:    a.cfg.Engine.Instrument,
		EventType:     ev.Type,
		TimeRemaining: snap.TimeRemaining,
		Lead:          snap.Lead,
		Momentum:      snap.Momentum,
		FairPrice:     snap.FairPrice,
		Position:      snap.Position,
		Capital:       snap.Capital,
	})
}

// engine.Listener: alert without blocking the callback path.

func (a *App) Flattened(position float64, reason string) {
	msg := fmt.Sprintf("Flattening %s position %.0f (%s)", a.cfg.Engine.Instrument, position, reason)
	a.sendAlert(msg)
}

func (a *App) EngineReset() {
	a.sendAlert(fmt.Sprintf("Game over on %s, engine state reset", a.cfg.Engine.Instrument))
}

func (a *App) sendAlert(msg string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), alertTimeout)
		defer cancel()
		if err := a.alerts.Send(ctx, msg); err != nil {
			a.log.Warn("alert send failed", zap.Error(err))
		}
	}()
}
