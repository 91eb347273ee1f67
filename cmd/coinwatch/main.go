/*
Package main implements the coinwatch command-line client.

The client lists coin identifiers from a public market-data API, filters the
listing by a literal substring, and for a selected coin loads a one-year USD
price history, reports the latest price, and runs the two-way USD/quantity
calculator.

Usage:

	go run main.go -query=bit
	go run main.go -coin=bitcoin -usd=250
	go run main.go -coin=bitcoin -qty=0.5

The API base URL and HTTP timeout come from the environment (API_BASE_URL,
API_TIMEOUT_SECONDS) or a .env file.
*/
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coinwatch/internal/catalog"
	"coinwatch/internal/config"
	"coinwatch/internal/gecko"
	"coinwatch/internal/money"
	"coinwatch/internal/session"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Command-line flags selecting what the client does on this run
var (
	// query filters the coin listing by literal substring match
	query = flag.String("query", "", "Filter the coin list by substring (case-sensitive, matches symbol, name or id)")
	// coin selects one asset id to open a detail session for
	coin = flag.String("coin", "", "Asset id to load a one-year price history for")
	// usd is a USD amount to convert into asset quantity
	usd = flag.String("usd", "", "USD amount to convert to quantity at the latest price")
	// qty is an asset quantity to convert into USD
	qty = flag.String("qty", "", "Asset quantity to convert to USD at the latest price")
	// smaWindow sets the moving-average overlay window
	smaWindow = flag.Int("sma", session.DefaultSMAWindow, "Moving-average window for the chart overlay")
	// maxListed caps how many filter matches are printed
	maxListed = flag.Int("max", 25, "Maximum number of filter matches to print")
)

// main is the entry point of the coinwatch client. It loads configuration,
// fetches the coin catalog, applies the requested filter, and optionally opens
// a detail session for one coin to report its price history and run the
// calculator.
func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// Initialize structured logger with timestamp and configured level
	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Create context for managing application lifecycle and cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling so an interrupt cancels in-flight fetches
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	// The HTTP timeout lives here, on the injected client, not in the core
	client, err := gecko.NewClient(&gecko.Config{
		BaseURL: cfg.API.BaseURL,
		HTTPClient: &http.Client{
			Timeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create API client")
	}

	// Load the catalog once; filtering afterwards is purely local
	cat := catalog.New(client)
	if err := cat.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load coin catalog")
	}

	matches := cat.Filter(*query)
	log.Info().
		Str("query", *query).
		Int("matches", len(matches)).
		Int("catalog", cat.Len()).
		Msg("filtered coin list")

	for i, a := range matches {
		if i >= *maxListed {
			log.Info().Int("omitted", len(matches)-*maxListed).Msg("more matches not shown")
			break
		}
		log.Info().Str("id", a.ID).Str("symbol", a.Symbol).Str("name", a.Name).Msg("match")
	}

	if *coin == "" {
		return
	}

	runDetail(ctx, cat, client)
}

// runDetail opens a detail session for the selected coin, reports its price
// history and latest price, and runs any requested conversions.
func runDetail(ctx context.Context, cat *catalog.Catalog, client *gecko.Client) {
	asset, err := cat.Find(*coin)
	if err != nil {
		log.Fatal().Err(err).Msg("unknown coin")
	}

	sess := session.New(client, asset)
	if err := sess.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load price history")
	}

	chart := sess.ChartSeries()
	log.Info().
		Str("id", asset.ID).
		Str("name", asset.Name).
		Str("current_price", sess.CurrentPrice().String()).
		Int("chart_points", len(chart)).
		Msg("detail session loaded")

	if overlay := sess.SMASeries(*smaWindow); len(overlay) > 0 {
		last := overlay[len(overlay)-1]
		log.Info().
			Int("window", *smaWindow).
			Str("sma", last.PriceUSD.StringFixed(2)).
			Time("as_of", time.UnixMilli(last.TimestampMillis)).
			Msg("moving average")
	}

	if *usd != "" {
		amount, err := money.ParseAmount(*usd)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid -usd amount")
		}
		sess.SetUSD(amount)
		log.Info().
			Str("usd", amount.String()).
			Str("quantity", sess.State().Quantity.String()).
			Msg("usd to quantity")
	}

	if *qty != "" {
		quantity, err := money.ParseAmount(*qty)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid -qty amount")
		}
		sess.SetQuantity(quantity)
		log.Info().
			Str("quantity", quantity.String()).
			Str("usd", sess.State().USDDisplay).
			Msg("quantity to usd")
	}
}
