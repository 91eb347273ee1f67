// Package session provides the coin detail session: one selected asset's
// price history, its derived chart views, and the two-way USD/quantity
// calculator driven by the latest price.
//
// A Session is created when the user selects a catalog entry and discarded
// when they leave the detail view. It is owned exclusively by that view —
// no cross-task sharing, no locking. A session transitions once, from
// loading to loaded (or failed), and never reverts.
package session

import (
	"context"
	"fmt"

	"coinwatch/internal/model"
	"coinwatch/internal/money"

	"github.com/markcheno/go-talib"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// DefaultSMAWindow is the moving-average window used for the chart overlay:
// a week of samples at the upstream's daily resolution.
const DefaultSMAWindow = 7

// ChartFetcher defines the interface for fetching one asset's price history.
//
// It abstracts the API client so sessions can be exercised against test
// doubles without a network.
type ChartFetcher interface {
	// MarketChart fetches the asset's one-year USD price series in upstream order.
	MarketChart(ctx context.Context, id string) ([]model.PricePoint, error)
}

// Session holds one asset's raw price series and the calculator state bound
// to its latest price.
//
// The raw series is kept exactly as returned upstream. Derived views never
// mutate it: the chart series drops sentinel samples (zero timestamp or
// zero price), while the current price is taken from the last raw sample
// regardless of either. Those two views deliberately read the same data
// differently.
type Session struct {
	fetcher ChartFetcher       // Fetch collaborator supplied by the application shell
	asset   model.Asset        // The selected catalog entry this session is scoped to
	raw     []model.PricePoint // Upstream series, sentinels included; nil until loaded
	loaded  bool
	state   model.CalculatorState
}

// New creates a detail session for the selected asset. The session starts in
// the loading state; call Load before using the chart or calculator.
func New(fetcher ChartFetcher, asset model.Asset) *Session {
	return &Session{fetcher: fetcher, asset: asset}
}

// Asset returns the catalog entry this session is scoped to.
func (s *Session) Asset() model.Asset {
	return s.asset
}

// Loaded reports whether Load has completed successfully.
func (s *Session) Loaded() bool {
	return s.loaded
}

// Load performs the one-shot fetch of the asset's price history and derives
// the current price.
//
// The current price is the price of the last element of the raw series —
// even when that element carries the zero-timestamp sentinel. If the fetch
// yields an empty series the price stays at zero and the chart renders no
// data; that is not an error here. Fetch failures are surfaced verbatim.
func (s *Session) Load(ctx context.Context) error {
	series, err := s.fetcher.MarketChart(ctx, s.asset.ID)
	if err != nil {
		log.Error().Err(err).Str("id", s.asset.ID).Msg("failed to load price history")
		return fmt.Errorf("loading %s history: %w", s.asset.ID, err)
	}

	s.raw = series
	if len(series) > 0 {
		s.state.CurrentPrice = series[len(series)-1].PriceUSD
	}
	s.loaded = true

	log.Info().
		Str("id", s.asset.ID).
		Int("samples", len(series)).
		Str("current_price", s.state.CurrentPrice.String()).
		Msg("price history loaded")

	return nil
}

// ChartSeries derives the plottable series from the raw one: every sentinel
// sample — zero timestamp or zero price — is dropped, order is preserved,
// and the raw series is never mutated.
//
// The result is recomputed on each call, so renders can re-derive it freely
// without side effects. Note the deliberate asymmetry with the current-price
// derivation, which reads the last raw sample even when it is a sentinel.
func (s *Session) ChartSeries() []model.PricePoint {
	chart := make([]model.PricePoint, 0, len(s.raw))
	for _, p := range s.raw {
		if p.Valid() && !p.PriceUSD.IsZero() {
			chart = append(chart, p)
		}
	}
	return chart
}

// SMASeries derives a simple-moving-average overlay of the chart series with
// the given window.
//
// Each returned point carries the timestamp of the chart sample the average
// is aligned to. Returns nil when the window is not positive or the chart
// has fewer samples than the window.
func (s *Session) SMASeries(window int) []model.PricePoint {
	chart := s.ChartSeries()
	if window < 1 || len(chart) < window {
		return nil
	}

	closes := make([]float64, len(chart))
	for i, p := range chart {
		closes[i], _ = p.PriceUSD.Float64()
	}

	sma := talib.Sma(closes, window)

	// talib pads the first window-1 slots with zeros; skip them.
	overlay := make([]model.PricePoint, 0, len(chart)-window+1)
	for i := window - 1; i < len(chart); i++ {
		overlay = append(overlay, model.PricePoint{
			TimestampMillis: chart[i].TimestampMillis,
			PriceUSD:        decimal.NewFromFloat(sma[i]),
		})
	}

	return overlay
}

// CurrentPrice returns the latest known USD price, zero when unknown.
func (s *Session) CurrentPrice() decimal.Decimal {
	return s.state.CurrentPrice
}

// State returns a snapshot of the calculator state.
func (s *Session) State() model.CalculatorState {
	return s.state
}

// SetUSD records a user edit of the USD field and recomputes the quantity
// from the current price.
//
// When the current price is zero the quantity is left unchanged: the
// recompute is skipped entirely so no NaN or infinity can reach observable
// state. This path stores the raw amount and does not touch the formatted
// display text — only the quantity edit path reformats.
func (s *Session) SetUSD(amount decimal.Decimal) {
	s.state.USDAmount = amount
	if s.state.CurrentPrice.IsPositive() {
		s.state.Quantity = amount.Div(s.state.CurrentPrice)
	}
}

// SetQuantity records a user edit of the quantity field and recomputes the
// USD amount as price times quantity, rounded to two decimal places.
//
// This path also produces the formatted display text (currency symbol and
// thousands grouping). The asymmetry with SetUSD — which leaves the display
// text alone — mirrors the reference behaviour and is kept deliberately.
func (s *Session) SetQuantity(qty decimal.Decimal) {
	s.state.Quantity = qty
	s.state.USDAmount = s.state.CurrentPrice.Mul(qty).Round(2)
	s.state.USDDisplay = money.FormatUSD(s.state.USDAmount)
}
