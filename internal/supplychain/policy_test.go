package supplychain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/demandplan/internal/domain"
)

func fp(v float64) *float64 { return &v }

func testSeries() []domain.ForecastPoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := []domain.ForecastPoint{
		{Date: start, Historical: fp(90), Forecast: 90},
		{Date: start.AddDate(0, 1, 0), Historical: fp(110), Forecast: 110},
	}
	for i := 1; i <= 3; i++ {
		series = append(series, domain.ForecastPoint{
			Date:       start.AddDate(0, 1+i, 0),
			Forecast:   100,
			LowerBound: fp(80),
			UpperBound: fp(120),
			IsForecast: true,
		})
	}
	return series
}

func baseParams() PolicyParams {
	return PolicyParams{
		HistoricalStdDev: 20,
		LeadTimeDays:     30,
		ServiceLevel:     0.95,
		OnHand:           1000,
		Attributes: []domain.ProductAttribute{
			{SKU: "A", UnitCost: 10, SellingPrice: 25},
		},
	}
}

func TestCalculateSupplyChainMetrics(t *testing.T) {
	t.Run("policy numbers are constant across the run", func(t *testing.T) {
		points := CalculateSupplyChainMetrics(testSeries(), baseParams())
		require.Len(t, points, 5)
		for _, p := range points {
			// round(1.645 * 20 * sqrt(1))
			require.Equal(t, float64(33), p.SafetyStock)
			// round(100/30 * 30 + 33)
			require.Equal(t, float64(133), p.ReorderPoint)
		}
	})

	t.Run("historical periods keep on-hand", func(t *testing.T) {
		points := CalculateSupplyChainMetrics(testSeries(), baseParams())
		for _, p := range points[:2] {
			require.Equal(t, float64(1000), p.ProjectedInventory)
			require.Equal(t, float64(10000), *p.InventoryValue)
			require.Nil(t, p.ScenarioForecast)
			require.Nil(t, p.ProjectedRevenue)
		}
	})

	t.Run("scenario scales only its month", func(t *testing.T) {
		params := baseParams()
		params.Scenarios = []domain.Scenario{{ID: "s1", Name: "promo", Month: 2, Multiplier: 1.5}}

		points := CalculateSupplyChainMetrics(testSeries(), params)
		projected := points[2:]

		require.Equal(t, float64(100), *projected[0].ScenarioForecast)
		require.Equal(t, float64(150), *projected[1].ScenarioForecast)
		require.Equal(t, float64(100), *projected[2].ScenarioForecast)

		require.Equal(t, float64(900), projected[0].ProjectedInventory)
		require.Equal(t, float64(750), projected[1].ProjectedInventory)
		require.Equal(t, float64(650), projected[2].ProjectedInventory)

		require.Equal(t, float64(3750), *projected[1].ProjectedRevenue)
		require.Equal(t, float64(2250), *projected[1].ProjectedMargin)
		require.Equal(t, float64(7500), *projected[1].InventoryValue)

		// underlying forecast is untouched
		require.Equal(t, float64(100), projected[1].Forecast)
	})

	t.Run("duplicate scenario months: last wins", func(t *testing.T) {
		params := baseParams()
		params.Scenarios = []domain.Scenario{
			{Month: 1, Multiplier: 2},
			{Month: 1, Multiplier: 0.5},
		}
		points := CalculateSupplyChainMetrics(testSeries(), params)
		require.Equal(t, float64(50), *points[2].ScenarioForecast)
	})

	t.Run("inventory may run negative", func(t *testing.T) {
		params := baseParams()
		params.OnHand = 150
		points := CalculateSupplyChainMetrics(testSeries(), params)
		require.Equal(t, float64(-150), points[4].ProjectedInventory)
	})

	t.Run("volatility stresses safety stock", func(t *testing.T) {
		var got []float64
		for _, v := range []float64{0, 0.5, 1.0} {
			params := baseParams()
			params.VolatilityMultiplier = v
			points := CalculateSupplyChainMetrics(testSeries(), params)
			got = append(got, points[0].SafetyStock)
			require.GreaterOrEqual(t, points[0].ReorderPoint, points[0].SafetyStock)
		}
		require.Equal(t, []float64{33, 40, 47}, got)
	})

	t.Run("lead time offset shifts forecast dates only", func(t *testing.T) {
		series := testSeries()
		params := baseParams()
		params.LeadTimeDays = 14
		params.VolatilityMultiplier = 1
		params.ShowLeadTimeOffset = true

		shifted := CalculateSupplyChainMetrics(series, params)
		params.ShowLeadTimeOffset = false
		plain := CalculateSupplyChainMetrics(series, params)

		for i := range series {
			if series[i].IsForecast {
				require.True(t, shifted[i].Date.Equal(series[i].Date.AddDate(0, 0, -14)))
			} else {
				require.True(t, shifted[i].Date.Equal(series[i].Date))
			}
			require.Equal(t, plain[i].ProjectedInventory, shifted[i].ProjectedInventory)
			require.Equal(t, plain[i].SafetyStock, shifted[i].SafetyStock)
		}
	})

	t.Run("no forecast periods", func(t *testing.T) {
		series := testSeries()[:2]
		points := CalculateSupplyChainMetrics(series, baseParams())
		require.Len(t, points, 2)
		require.Equal(t, float64(33), points[0].ReorderPoint)
	})

	t.Run("default economics without attributes", func(t *testing.T) {
		params := baseParams()
		params.Attributes = nil
		points := CalculateSupplyChainMetrics(testSeries(), params)
		require.Equal(t, float64(100*DefaultSellingPrice), *points[2].ProjectedRevenue)
		require.Equal(t, float64(100*(DefaultSellingPrice-DefaultUnitCost)), *points[2].ProjectedMargin)
	})

	t.Run("empty series", func(t *testing.T) {
		require.Empty(t, CalculateSupplyChainMetrics(nil, baseParams()))
	})
}

func TestResolveParameters(t *testing.T) {
	attrs := []domain.ProductAttribute{
		{SKU: "A", LeadTimeDays: 10, UnitCost: 4, SellingPrice: 10, ServiceLevel: 0.9},
		{SKU: "B", LeadTimeDays: 20, UnitCost: 6, SellingPrice: 14, ServiceLevel: 0.98},
		{SKU: "C", LeadTimeDays: 60, UnitCost: 100, SellingPrice: 300, ServiceLevel: 0.5},
	}
	inventory := []domain.InventoryLevel{
		{SKU: "A", OnHand: 40},
		{SKU: "B", OnHand: 60},
		{SKU: "C", OnHand: 1000},
	}

	t.Run("selected skus", func(t *testing.T) {
		p := ResolveParameters(attrs, inventory, []string{"a", " B "})
		require.InDelta(t, 15, p.LeadTimeDays, 1e-9)
		require.InDelta(t, 0.94, p.ServiceLevel, 1e-9)
		require.InDelta(t, 5, p.UnitCost, 1e-9)
		require.InDelta(t, 12, p.SellingPrice, 1e-9)
		require.Equal(t, float64(100), p.OnHand)
	})

	t.Run("no selection uses everything", func(t *testing.T) {
		p := ResolveParameters(attrs, inventory, nil)
		require.InDelta(t, 30, p.LeadTimeDays, 1e-9)
		require.Equal(t, float64(1100), p.OnHand)
	})

	t.Run("fallbacks", func(t *testing.T) {
		p := ResolveParameters(nil, nil, []string{"Z"})
		require.Equal(t, domain.PortfolioParameters{
			LeadTimeDays: DefaultLeadTimeDays,
			ServiceLevel: DefaultServiceLevel,
			UnitCost:     DefaultUnitCost,
			SellingPrice: DefaultSellingPrice,
		}, p)
	})
}

func TestResolveParametersMissingColumns(t *testing.T) {
	// Attribute files without lead time or service level columns parse those fields as zero.
	attrs := []domain.ProductAttribute{
		{SKU: "A", UnitCost: 4, SellingPrice: 10},
		{SKU: "B", UnitCost: 6, SellingPrice: 14},
	}
	p := ResolveParameters(attrs, nil, nil)
	require.Equal(t, DefaultLeadTimeDays, p.LeadTimeDays)
	require.Equal(t, DefaultServiceLevel, p.ServiceLevel)
	require.InDelta(t, 5, p.UnitCost, 1e-9)
	require.InDelta(t, 12, p.SellingPrice, 1e-9)

	t.Run("blank values are skipped per sku", func(t *testing.T) {
		partial := []domain.ProductAttribute{
			{SKU: "A", LeadTimeDays: 10, ServiceLevel: 0.9},
			{SKU: "B", LeadTimeDays: 0, ServiceLevel: 0, UnitCost: 8},
		}
		p := ResolveParameters(partial, nil, nil)
		require.InDelta(t, 10, p.LeadTimeDays, 1e-9)
		require.InDelta(t, 0.9, p.ServiceLevel, 1e-9)
		require.InDelta(t, 8, p.UnitCost, 1e-9)
		require.Equal(t, DefaultSellingPrice, p.SellingPrice)
	})

	t.Run("policy keeps a positive safety stock", func(t *testing.T) {
		params := baseParams()
		params.LeadTimeDays = p.LeadTimeDays
		params.ServiceLevel = p.ServiceLevel
		points := CalculateSupplyChainMetrics(testSeries(), params)
		require.Greater(t, points[0].SafetyStock, float64(0))
		require.Greater(t, points[0].ReorderPoint, float64(0))
	})
}
