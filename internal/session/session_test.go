package session

import (
	"context"
	"errors"
	"testing"

	"coinwatch/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher is a ChartFetcher test double returning a fixed series or error.
type fakeFetcher struct {
	series []model.PricePoint
	err    error
	gotID  string
}

func (f *fakeFetcher) MarketChart(ctx context.Context, id string) ([]model.PricePoint, error) {
	f.gotID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.series, nil
}

// point builds a sample from a millisecond timestamp and a float price.
func point(ts int64, price float64) model.PricePoint {
	return model.PricePoint{TimestampMillis: ts, PriceUSD: decimal.NewFromFloat(price)}
}

// testAsset is the catalog entry sessions are opened for in these tests.
var testAsset = model.Asset{ID: "btc", Symbol: "btc", Name: "Bitcoin"}

// loadedSession creates a session preloaded with the given raw series.
func loadedSession(t *testing.T, raw []model.PricePoint) *Session {
	t.Helper()
	s := New(&fakeFetcher{series: raw}, testAsset)
	require.NoError(t, s.Load(context.Background()))
	return s
}

func Test_Load(t *testing.T) {
	t.Run("Derives current price from last raw sample", func(t *testing.T) {
		fetcher := &fakeFetcher{series: []model.PricePoint{
			point(1000, 95),
			point(2000, 100),
		}}
		s := New(fetcher, testAsset)

		err := s.Load(context.Background())

		require.NoError(t, err)
		assert.True(t, s.Loaded())
		assert.Equal(t, "btc", fetcher.gotID, "Should fetch the selected asset's id")
		assert.True(t, s.CurrentPrice().Equal(decimal.NewFromInt(100)))
	})

	t.Run("Current price uses raw series even when last timestamp is the sentinel", func(t *testing.T) {
		// The chart drops sentinel samples; the price derivation must not.
		s := loadedSession(t, []model.PricePoint{
			point(1000, 100),
			point(0, 55),
		})

		assert.True(t, s.CurrentPrice().Equal(decimal.NewFromInt(55)),
			"Last raw sample is never dropped from the price derivation")
	})

	t.Run("Empty raw series leaves price at zero", func(t *testing.T) {
		s := loadedSession(t, nil)

		assert.True(t, s.CurrentPrice().IsZero())
		assert.Empty(t, s.ChartSeries(), "Chart should render no data")
	})

	t.Run("Fetch failure is surfaced verbatim", func(t *testing.T) {
		wantErr := errors.New("load failure: unexpected status 404 Not Found")
		s := New(&fakeFetcher{err: wantErr}, testAsset)

		err := s.Load(context.Background())

		require.Error(t, err)
		assert.ErrorIs(t, err, wantErr)
		assert.False(t, s.Loaded())
	})
}

// Test_ChartSeries tests sentinel filtering for the plotting view
func Test_ChartSeries(t *testing.T) {
	tests := []struct {
		name        string
		raw         []model.PricePoint
		expectTS    []int64
		description string
	}{
		{
			name: "Drops zero-timestamp and zero-price sentinels",
			raw: []model.PricePoint{
				point(0, 0),
				point(1000, 100),
				point(2000, 0),
			},
			expectTS:    []int64{1000},
			description: "Only the real sample survives; zero-priced samples do not plot",
		},
		{
			name: "No sentinels",
			raw: []model.PricePoint{
				point(1000, 1),
				point(2000, 2),
			},
			expectTS:    []int64{1000, 2000},
			description: "A clean series passes through in order",
		},
		{
			name: "All zero timestamps",
			raw: []model.PricePoint{
				point(0, 1),
				point(0, 2),
			},
			expectTS:    []int64{},
			description: "A series of only sentinels plots nothing",
		},
		{
			name: "Zero price with real timestamp",
			raw: []model.PricePoint{
				point(1000, 1),
				point(2000, 0),
			},
			expectTS:    []int64{1000},
			description: "A zero price is a sentinel for plotting even when the timestamp is real",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := loadedSession(t, tt.raw)

			chart := s.ChartSeries()

			ts := make([]int64, 0, len(chart))
			for _, p := range chart {
				ts = append(ts, p.TimestampMillis)
			}
			assert.Equal(t, tt.expectTS, ts, tt.description)
			assert.LessOrEqual(t, len(chart), len(tt.raw))
		})
	}
}

// Test_ChartSeries_RepeatedDerivation verifies the derivation is restartable
// and never mutates the raw series
func Test_ChartSeries_RepeatedDerivation(t *testing.T) {
	raw := []model.PricePoint{point(0, 0), point(1000, 100), point(2000, 0)}
	s := loadedSession(t, raw)

	first := s.ChartSeries()
	second := s.ChartSeries()

	assert.Equal(t, first, second, "Re-deriving the chart must yield the same result")
	require.Len(t, first, 1)
	assert.Equal(t, point(1000, 100), first[0], "Only the real sample plots")
	assert.True(t, s.CurrentPrice().IsZero(),
		"Deriving the chart must not affect the raw-series price derivation")
}

// Test_Calculator covers the concrete two-way binding scenarios
func Test_Calculator(t *testing.T) {
	t.Run("Quantity edit recomputes and formats USD", func(t *testing.T) {
		s := loadedSession(t, []model.PricePoint{point(1000, 100)})

		s.SetQuantity(decimal.NewFromInt(2))

		state := s.State()
		assert.Equal(t, "200", state.USDAmount.String())
		assert.Equal(t, "200.00", state.USDAmount.StringFixed(2))
		assert.Equal(t, "$200.00", state.USDDisplay, "Quantity edits produce the formatted display text")
	})

	t.Run("USD edit recomputes quantity", func(t *testing.T) {
		s := loadedSession(t, []model.PricePoint{point(1000, 100)})

		s.SetUSD(decimal.NewFromInt(50))

		state := s.State()
		assert.True(t, state.Quantity.Equal(decimal.RequireFromString("0.5")))
		assert.True(t, state.USDAmount.Equal(decimal.NewFromInt(50)))
	})

	t.Run("USD edit does not reformat the display", func(t *testing.T) {
		s := loadedSession(t, []model.PricePoint{point(1000, 100)})

		s.SetQuantity(decimal.NewFromInt(2))
		s.SetUSD(decimal.NewFromInt(50))

		assert.Equal(t, "$200.00", s.State().USDDisplay,
			"Only the quantity edit path formats; the USD path leaves the display alone")
	})

	t.Run("Zero price skips the quantity recompute", func(t *testing.T) {
		s := loadedSession(t, []model.PricePoint{point(1000, 0)})

		s.SetUSD(decimal.NewFromInt(100))

		state := s.State()
		assert.True(t, state.Quantity.IsZero(), "Quantity must stay unchanged, never NaN or infinity")
		assert.True(t, state.USDAmount.Equal(decimal.NewFromInt(100)), "The USD amount itself is still recorded")
	})

	t.Run("Zero price still allows quantity edits", func(t *testing.T) {
		s := loadedSession(t, []model.PricePoint{point(1000, 0)})

		s.SetQuantity(decimal.NewFromInt(3))

		state := s.State()
		assert.True(t, state.USDAmount.IsZero(), "Multiplication by a zero price is defined and yields zero")
		assert.Equal(t, "$0.00", state.USDDisplay)
	})
}

// Test_Calculator_RoundTrip verifies the quantity→USD→quantity round trip
// stays within two-decimal rounding tolerance
func Test_Calculator_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		quantity string
	}{
		{name: "Whole quantity", price: 100, quantity: "2"},
		{name: "Fractional quantity", price: 97.31, quantity: "0.333"},
		{name: "Small quantity at high price", price: 64123.77, quantity: "0.0017"},
		{name: "Large quantity at low price", price: 0.073, quantity: "15000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := loadedSession(t, []model.PricePoint{point(1000, tt.price)})
			qty := decimal.RequireFromString(tt.quantity)

			s.SetQuantity(qty)
			s.SetUSD(s.State().USDAmount)

			// Two-decimal USD rounding may shift the amount by up to half a
			// cent, which maps to 0.005/price in quantity terms.
			price := decimal.NewFromFloat(tt.price)
			tolerance := decimal.RequireFromString("0.005").Div(price)
			drift := s.State().Quantity.Sub(qty).Abs()
			assert.True(t, drift.LessThanOrEqual(tolerance),
				"quantity drifted by %s, tolerance %s", drift, tolerance)
		})
	}
}

// Test_SMASeries tests the moving-average overlay derivation
func Test_SMASeries(t *testing.T) {
	raw := []model.PricePoint{
		point(1000, 10),
		point(2000, 20),
		point(3000, 30),
		point(4000, 40),
	}

	t.Run("Window of two", func(t *testing.T) {
		s := loadedSession(t, raw)

		overlay := s.SMASeries(2)

		require.Len(t, overlay, 3)
		assert.Equal(t, int64(2000), overlay[0].TimestampMillis, "Overlay aligns to the window's last sample")
		assert.InDelta(t, 15, mustFloat(overlay[0].PriceUSD), 1e-9)
		assert.InDelta(t, 25, mustFloat(overlay[1].PriceUSD), 1e-9)
		assert.InDelta(t, 35, mustFloat(overlay[2].PriceUSD), 1e-9)
	})

	t.Run("Window exceeding chart length", func(t *testing.T) {
		s := loadedSession(t, raw)

		assert.Nil(t, s.SMASeries(10))
	})

	t.Run("Non-positive window", func(t *testing.T) {
		s := loadedSession(t, raw)

		assert.Nil(t, s.SMASeries(0))
	})

	t.Run("Sentinels excluded before averaging", func(t *testing.T) {
		s := loadedSession(t, append([]model.PricePoint{point(0, 1000000)}, raw...))

		overlay := s.SMASeries(2)

		require.Len(t, overlay, 3)
		assert.InDelta(t, 15, mustFloat(overlay[0].PriceUSD), 1e-9,
			"Sentinel samples must not leak into the average")
	})
}

func mustFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
