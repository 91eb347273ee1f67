// Package gecko provides the HTTP client for the coinwatch market-data API.
//
// The client implements the two fetch operations the application needs:
// listing every known coin and retrieving one coin's historical price chart.
// It handles the upstream's JSON formats, validation, and conversion into
// the model types used by the rest of the system.
//
// Key features:
//   - One-shot fetches with context support, no retries and no partial results
//   - Comprehensive payload validation using struct tags and validator
//   - Financial precision using decimal.Decimal for price data
//   - Sentinel errors separating transport failures from malformed payloads
//   - Injectable http.Client so deadline policy stays with the caller
package gecko

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"coinwatch/internal/model"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// chartWindowDays is the fixed history window requested for every chart fetch.
const chartWindowDays = 365

var (
	// defaultConfig provides sensible default configuration values for the public API.
	defaultConfig = Config{
		BaseURL:    "https://api.coingecko.com/api/v3",
		HTTPClient: http.DefaultClient,
	}
)

// Client fetches coin listings and market charts from a CoinGecko-style API.
//
// A Client is safe for reuse across fetches. It never mutates responses after
// conversion: callers receive freshly allocated model slices.
type Client struct {
	config   Config              // Configuration parameters for the client
	validate *validator.Validate // Validator instance for payload validation
}

// coinRecord is the wire format of one entry in the /coins/list response.
type coinRecord struct {
	ID     string `json:"id" validate:"required"`
	Symbol string `json:"symbol" validate:"required"`
	Name   string `json:"name" validate:"required"`
}

// marketChart is the wire format of the /coins/{id}/market_chart response.
//
// Each prices element is a [timestampMillis, priceUsd] pair. Numbers are
// decoded as json.Number to avoid float64 round-trips before the decimal
// conversion.
type marketChart struct {
	Prices [][]json.Number `json:"prices" validate:"required,min=1"`
}

// NewClient creates a new API client with the specified configuration.
//
// If no configuration is provided (cfg is nil), the client will use default
// configuration values suitable for the public API. The configuration is
// validated against the defaults to ensure all required fields are present.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = &defaultConfig
	}

	if err := validateConfig(cfg, &defaultConfig); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &Client{
		config:   *cfg,
		validate: validator.New(),
	}, nil
}

// ListCoins fetches the full list of known assets from the list endpoint.
//
// The result preserves the API response order. An empty array or a record
// missing any of the three required fields is a format failure: the catalog
// contract has no notion of a valid empty listing.
func (c *Client) ListCoins(ctx context.Context) ([]model.Asset, error) {
	body, err := c.fetch(ctx, c.config.BaseURL+"/coins/list")
	if err != nil {
		return nil, err
	}

	var records []coinRecord
	if err := json.Unmarshal(body, &records); err != nil {
		log.Error().Err(err).Msg("invalid coin list JSON")
		return nil, fmt.Errorf("%w: %v", ErrFormatFailure, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: coin list is empty", ErrFormatFailure)
	}

	assets := make([]model.Asset, 0, len(records))
	for i, rec := range records {
		if err := c.validate.Struct(&rec); err != nil {
			log.Warn().Err(err).Int("index", i).Msg("coin record validation failed")
			return nil, fmt.Errorf("%w: record %d: %v", ErrFormatFailure, i, err)
		}
		assets = append(assets, model.Asset(rec))
	}

	return assets, nil
}

// MarketChart fetches one asset's historical price series for the prior 365
// days, priced in USD.
//
// The returned series is exactly the upstream order, sentinel samples
// included; filtering for presentation is the session's concern, not the
// client's.
func (c *Client) MarketChart(ctx context.Context, id string) ([]model.PricePoint, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: asset id cannot be empty", ErrInvalidConfig)
	}

	endpoint := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=usd&days=%d",
		c.config.BaseURL, url.PathEscape(id), chartWindowDays)

	body, err := c.fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var chart marketChart
	if err := json.Unmarshal(body, &chart); err != nil {
		log.Error().Err(err).Str("id", id).Msg("invalid market chart JSON")
		return nil, fmt.Errorf("%w: %v", ErrFormatFailure, err)
	}

	if err := c.validate.Struct(&chart); err != nil {
		log.Warn().Err(err).Str("id", id).Msg("market chart validation failed")
		return nil, fmt.Errorf("%w: missing or empty prices field", ErrFormatFailure)
	}

	series := make([]model.PricePoint, 0, len(chart.Prices))
	for i, pair := range chart.Prices {
		point, err := toPricePoint(pair)
		if err != nil {
			log.Error().Err(err).Str("id", id).Int("index", i).Msg("invalid price sample")
			return nil, fmt.Errorf("%w: sample %d: %v", ErrFormatFailure, i, err)
		}
		series = append(series, point)
	}

	return series, nil
}

// fetch performs one GET against the endpoint and returns the raw body.
//
// Any non-2xx status is a load failure surfaced verbatim; there is no retry
// and no partial result.
func (c *Client) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		log.Error().Err(err).Str("url", endpoint).Msg("request failed")
		return nil, fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		log.Error().Int("status", resp.StatusCode).Str("url", endpoint).Msg("non-success status")
		return nil, fmt.Errorf("%w: unexpected status %s", ErrLoadFailure, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}

	return body, nil
}

// toPricePoint converts one raw [timestampMillis, priceUsd] pair into a model sample.
func toPricePoint(pair []json.Number) (model.PricePoint, error) {
	if len(pair) != 2 {
		return model.PricePoint{}, fmt.Errorf("expected [timestamp, price] pair, got %d elements", len(pair))
	}

	ts, err := decimal.NewFromString(pair[0].String())
	if err != nil {
		return model.PricePoint{}, fmt.Errorf("invalid timestamp: %v", err)
	}

	price, err := decimal.NewFromString(pair[1].String())
	if err != nil {
		return model.PricePoint{}, fmt.Errorf("invalid price: %v", err)
	}

	return model.PricePoint{
		TimestampMillis: ts.IntPart(),
		PriceUSD:        price,
	}, nil
}
