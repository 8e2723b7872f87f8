package supplychain

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/demandplan/internal/domain"
	"github.com/andresuchdata/demandplan/internal/stats"
)

const (
	// DaysPerPeriod approximates one monthly period.
	DaysPerPeriod = 30.0

	DefaultUnitCost     = 30.0
	DefaultSellingPrice = 50.0
)

// PolicyParams is the resolved operating context for one policy run.
type PolicyParams struct {
	HistoricalStdDev     float64
	LeadTimeDays         float64
	ServiceLevel         float64
	OnHand               float64
	Scenarios            []domain.Scenario
	ShowLeadTimeOffset   bool
	VolatilityMultiplier float64
	Attributes           []domain.ProductAttribute
}

// Policy holds the run-wide numbers derived before walking the series.
type Policy struct {
	ZScore           float64
	AdjustedLeadTime float64
	SafetyStock      float64
	ReorderPoint     float64
	AvgDailyDemand   float64
	AvgUnitCost      float64
	AvgSellingPrice  float64
}

// DerivePolicy computes safety stock and reorder point for the forecast periods of series.
// Volatility stretches the lead time; negative volatility is treated as none.
func DerivePolicy(series []domain.ForecastPoint, p PolicyParams) Policy {
	volatility := math.Max(0, p.VolatilityMultiplier)

	pol := Policy{
		ZScore:           stats.ServiceLevelZScore(p.ServiceLevel),
		AdjustedLeadTime: p.LeadTimeDays * (1 + volatility),
	}
	leadTimePeriods := math.Max(0, pol.AdjustedLeadTime/DaysPerPeriod)
	pol.SafetyStock = math.Round(pol.ZScore * p.HistoricalStdDev * math.Sqrt(leadTimePeriods))

	var forecastSum float64
	var forecastCount int
	for _, pt := range series {
		if pt.IsForecast {
			forecastSum += pt.Forecast
			forecastCount++
		}
	}
	if forecastCount > 0 {
		pol.AvgDailyDemand = forecastSum / float64(forecastCount) / DaysPerPeriod
	}
	pol.ReorderPoint = math.Round(pol.AvgDailyDemand*pol.AdjustedLeadTime + pol.SafetyStock)

	pol.AvgUnitCost, pol.AvgSellingPrice = averageEconomics(p.Attributes)
	return pol
}

// CalculateSupplyChainMetrics enriches a forecast series with safety stock,
// reorder point, scenario-adjusted demand and a running inventory projection.
//
// Historical periods do not consume stock. When several scenarios target the
// same month the last one in the slice wins. ShowLeadTimeOffset moves forecast
// dates back by the unadjusted lead time and touches nothing else.
func CalculateSupplyChainMetrics(series []domain.ForecastPoint, p PolicyParams) []domain.DecisionPoint {
	pol := DerivePolicy(series, p)

	multipliers := make(map[int]float64, len(p.Scenarios))
	for _, s := range p.Scenarios {
		multipliers[s.Month] = s.Multiplier
	}

	offsetDays := int(math.Round(p.LeadTimeDays))
	running := p.OnHand
	forecastIdx := 0

	out := make([]domain.DecisionPoint, 0, len(series))
	for _, pt := range series {
		dp := domain.DecisionPoint{
			ForecastPoint: pt,
			SafetyStock:   pol.SafetyStock,
			ReorderPoint:  pol.ReorderPoint,
		}

		if !pt.IsForecast {
			dp.ProjectedInventory = p.OnHand
			value := mul(running, pol.AvgUnitCost).InexactFloat64()
			dp.InventoryValue = &value
			out = append(out, dp)
			continue
		}

		forecastIdx++
		scenarioVal := pt.Forecast
		if m, ok := multipliers[forecastIdx]; ok {
			scenarioVal = pt.Forecast * m
		}
		running -= scenarioVal

		revenue := mul(scenarioVal, pol.AvgSellingPrice).Round(0).InexactFloat64()
		margin := mul(scenarioVal, pol.AvgSellingPrice-pol.AvgUnitCost).Round(0).InexactFloat64()
		value := mul(running, pol.AvgUnitCost).Round(0).InexactFloat64()

		dp.ScenarioForecast = &scenarioVal
		dp.ProjectedInventory = running
		dp.ProjectedRevenue = &revenue
		dp.ProjectedMargin = &margin
		dp.InventoryValue = &value

		if p.ShowLeadTimeOffset {
			dp.Date = pt.Date.AddDate(0, 0, -offsetDays)
		}
		out = append(out, dp)
	}
	return out
}

func averageEconomics(attrs []domain.ProductAttribute) (unitCost, sellingPrice float64) {
	unitCost = averageField(attrs, func(a domain.ProductAttribute) float64 { return a.UnitCost }, DefaultUnitCost)
	sellingPrice = averageField(attrs, func(a domain.ProductAttribute) float64 { return a.SellingPrice }, DefaultSellingPrice)
	return unitCost, sellingPrice
}

func mul(qty, unit float64) decimal.Decimal {
	return decimal.NewFromFloat(qty).Mul(decimal.NewFromFloat(unit))
}
