package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"courtside-mm-bot/internal/book"
	"courtside-mm-bot/internal/config"
	"courtside-mm-bot/internal/engine"
	"courtside-mm-bot/internal/feed"
	"courtside-mm-bot/internal/logging"
	"courtside-mm-bot/internal/metrics"
)

// replay pushes a recorded feed session (one JSON frame per line) through
// the decision engine against a dry-run venue and prints the order trace.
// Useful for checking strategy behavior on a captured game offline.
func main() {
	configPath := flag.String("config", "internal/config/config.yaml", "path to config file")
	filePath := flag.String("file", "", "recorded feed file, one JSON frame per line")
	verbose := flag.Bool("verbose", true, "print each order action")
	flag.Parse()

	if *filePath == "" {
		fatal(fmt.Errorf("-file is required"))
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}
	// Replays run much faster than wall clock; the startup cooldown would
	// swallow the whole file.
	cfg.Engine.InitCooldown = 0

	log := logging.New(cfg.Log)
	defer func() { _ = log.Sync() }()

	venue := &dryRunVenue{verbose: *verbose}
	eng := engine.New(cfg.Engine, cfg.Model, cfg.Sizing, venue, engine.RealClock(), log, metrics.NewNoop())
	dispatcher := feed.NewDispatcher(eng, log)

	file, err := os.Open(*filePath)
	if err != nil {
		fatal(err)
	}
	defer file.Close()

	frames := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		dispatcher.Dispatch(json.RawMessage(line))
		frames++
	}
	if err := scanner.Err(); err != nil {
		fatal(err)
	}

	snap := eng.Snapshot()
	fmt.Printf("replayed %d frames: orders=%d cancels=%d\n", frames, venue.orders, venue.cancels)
	fmt.Printf("final state: position=%.0f capital=%.2f fair=%.2f time_remaining=%.1f\n",
		snap.Position, snap.Capital, snap.FairPrice, snap.TimeRemaining)
}

// dryRunVenue accepts every order with sequential handles and prints the
// trace instead of trading.
type dryRunVenue struct {
	verbose bool
	next    int64
	orders  int
	cancels int
}

func (v *dryRunVenue) PlaceLimitOrder(side book.Side, instrument string, qty, price float64, ioc bool) int64 {
	h := v.next
	v.next++
	v.orders++
	if v.verbose {
		kind := "limit"
		if ioc {
			kind = "ioc"
		}
		fmt.Printf("order %d: %s %s %.0f @ %.2f (%s)\n", h, side, instrument, qty, price, kind)
	}
	return h
}

func (v *dryRunVenue) PlaceMarketOrder(side book.Side, instrument string, qty float64) int64 {
	h := v.next
	v.next++
	v.orders++
	if v.verbose {
		fmt.Printf("order %d: %s %s %.0f (market)\n", h, side, instrument, qty)
	}
	return h
}

func (v *dryRunVenue) CancelOrder(instrument string, handle int64) {
	v.cancels++
	if v.verbose {
		fmt.Printf("cancel %d: %s\n", handle, instrument)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
