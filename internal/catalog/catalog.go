// Package catalog provides the coin catalog: the full asset listing and the
// substring filter a user types against.
//
// The catalog is loaded once at startup and owned by the view that created it;
// there is no cross-task sharing and therefore no locking. Filtering is a pure
// linear scan re-evaluated on every query change — cheap at current catalog
// sizes, and accepted as such because the three-field check must inspect every
// candidate anyway.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"coinwatch/internal/model"

	"github.com/rs/zerolog/log"
)

// ErrNotLoaded indicates a filter or lookup was attempted before a successful Load.
var ErrNotLoaded = errors.New("catalog not loaded")

// CoinLister defines the interface for fetching the full coin listing.
//
// It abstracts the API client so the catalog can be exercised against test
// doubles without a network.
type CoinLister interface {
	// ListCoins fetches every known asset in API response order.
	ListCoins(ctx context.Context) ([]model.Asset, error)
}

// Catalog holds the ordered, immutable set of known assets.
//
// A Catalog has exactly two observable states: empty (before Load, or after a
// failed Load) and loaded. Load failures leave it empty; there is no partial
// or degraded catalog.
type Catalog struct {
	lister CoinLister    // Fetch collaborator supplied by the application shell
	assets []model.Asset // Full asset set in API response order; nil until loaded
}

// New creates a catalog backed by the given lister. The catalog starts empty;
// call Load before filtering.
func New(lister CoinLister) *Catalog {
	return &Catalog{lister: lister}
}

// Load performs the one-shot fetch of the full asset listing.
//
// Any failure is surfaced verbatim from the lister — transport failures and
// malformed payloads alike — and leaves the catalog empty. A successful Load
// replaces the whole set atomically.
func (c *Catalog) Load(ctx context.Context) error {
	assets, err := c.lister.ListCoins(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load coin catalog")
		return fmt.Errorf("loading catalog: %w", err)
	}

	c.assets = assets
	log.Info().Int("assets", len(assets)).Msg("coin catalog loaded")
	return nil
}

// Len returns the number of assets in the loaded catalog.
func (c *Catalog) Len() int {
	return len(c.assets)
}

// Assets returns the full loaded listing in original order.
//
// The returned slice is the catalog's backing storage; callers must treat it
// as read-only.
func (c *Catalog) Assets() []model.Asset {
	return c.assets
}

// Filter returns, in original order, every asset whose symbol, name or id
// contains query as a literal, case-sensitive substring.
//
// An empty query returns the full catalog unchanged. The match is OR across
// the three fields. Filter is a pure function of the catalog and the query:
// it never mutates the source and may be re-run on every keystroke.
func (c *Catalog) Filter(query string) []model.Asset {
	if query == "" {
		return c.assets
	}

	var matched []model.Asset
	for _, a := range c.assets {
		if strings.Contains(a.Symbol, query) ||
			strings.Contains(a.Name, query) ||
			strings.Contains(a.ID, query) {
			matched = append(matched, a)
		}
	}

	return matched
}

// Find returns the asset with the given id, or ErrNotLoaded / a not-found
// error. It is the selection hand-off: the returned entry is what initializes
// a new detail session.
func (c *Catalog) Find(id string) (model.Asset, error) {
	if len(c.assets) == 0 {
		return model.Asset{}, ErrNotLoaded
	}

	for _, a := range c.assets {
		if a.ID == id {
			return a, nil
		}
	}

	return model.Asset{}, fmt.Errorf("unknown asset %q", id)
}
