// Package model defines core data types for the coinwatch client.
//
// This package contains the fundamental data structures shared between the
// coin catalog and the detail session: catalog entries, price samples and
// the calculator state. All monetary values use decimal.Decimal for precise
// financial calculations to avoid floating-point precision issues common in
// financial applications.
package model

import (
	"github.com/shopspring/decimal"
)

// Asset is one catalog entry representing a tradable instrument.
//
// Assets are uniquely identified by ID and are immutable once fetched:
// the full set is loaded atomically from one API response and never
// mutated afterwards.
type Asset struct {
	ID     string `json:"id" validate:"required"`     // API identifier (e.g. "bitcoin")
	Symbol string `json:"symbol" validate:"required"` // Ticker symbol (e.g. "btc")
	Name   string `json:"name" validate:"required"`   // Display name (e.g. "Bitcoin")
}

// PricePoint is a single historical price sample.
//
// A TimestampMillis of exactly 0 marks an invalid sentinel sample. Sentinel
// samples are excluded from chart views but are still part of the raw series,
// so the latest-price derivation sees them.
type PricePoint struct {
	TimestampMillis int64           // Sample time in Unix milliseconds; 0 is the sentinel
	PriceUSD        decimal.Decimal // Price in USD (precise decimal)
}

// Valid reports whether the sample carries a real timestamp.
func (p PricePoint) Valid() bool {
	return p.TimestampMillis != 0
}

// CalculatorState holds the two-way USD/quantity binding for a detail session.
//
// While CurrentPrice is positive the session keeps USDAmount close to
// Quantity times CurrentPrice after every edit: each edit recomputes the
// other field, and two-decimal USD rounding may introduce sub-cent drift,
// which is accepted.
type CalculatorState struct {
	USDAmount    decimal.Decimal // Amount in USD
	Quantity     decimal.Decimal // Amount in units of the asset
	CurrentPrice decimal.Decimal // Latest known USD price; zero when unknown
	USDDisplay   string          // Formatted USD text ("$1,234.56"); set only by the quantity edit path
}
