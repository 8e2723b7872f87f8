// internal/domain/planning.go
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnknownMethod   = errors.New("unknown forecast method")
	ErrInvalidScenario = errors.New("invalid scenario")
)

// ForecastMethod names one of the point-forecast strategies.
type ForecastMethod string

const (
	MethodHoltWinters      ForecastMethod = "holt_winters"
	MethodProphet          ForecastMethod = "prophet"
	MethodARIMA            ForecastMethod = "arima"
	MethodLinearRegression ForecastMethod = "linear_regression"
)

// DefaultMethod is used when a request does not pick a method.
const DefaultMethod = MethodHoltWinters

// ForecastMethods lists every strategy in declaration order.
func ForecastMethods() []ForecastMethod {
	return []ForecastMethod{MethodHoltWinters, MethodProphet, MethodARIMA, MethodLinearRegression}
}

// ParseForecastMethod accepts the canonical names plus a few aliases used by the dashboard.
func ParseForecastMethod(raw string) (ForecastMethod, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return DefaultMethod, nil
	case "holt_winters", "holt-winters", "holtwinters", "hw":
		return MethodHoltWinters, nil
	case "prophet":
		return MethodProphet, nil
	case "arima":
		return MethodARIMA, nil
	case "linear_regression", "linear-regression", "linear", "regression":
		return MethodLinearRegression, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, raw)
}

// Observation is one period's demand for one item.
type Observation struct {
	Date     time.Time `json:"date"`
	SKU      string    `json:"sku"`
	Category string    `json:"category"`
	Quantity int       `json:"quantity"`
}

// SeriesPoint is the summed demand across the selected observations for one date.
type SeriesPoint struct {
	Date     time.Time `json:"date"`
	Quantity int       `json:"quantity"`
}

// SeriesFilter narrows observations before aggregation. Empty sets mean "all".
type SeriesFilter struct {
	SKUs       []string   `json:"skus"`
	Categories []string   `json:"categories"`
	From       *time.Time `json:"from,omitempty"`
	To         *time.Time `json:"to,omitempty"`
}

// ForecastPoint is a historical actual or a projected period.
type ForecastPoint struct {
	Date       time.Time `json:"date"`
	Historical *float64  `json:"historical,omitempty"`
	Forecast   float64   `json:"forecast"`
	LowerBound *float64  `json:"lower_bound,omitempty"`
	UpperBound *float64  `json:"upper_bound,omitempty"`
	IsForecast bool      `json:"is_forecast"`
}

// Scenario scales demand of exactly one forecast period (Month is 1-based within the horizon).
type Scenario struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Month      int     `json:"month"`
	Multiplier float64 `json:"multiplier"`
}

// ValidateScenarios rejects duplicate months and non-positive multipliers.
func ValidateScenarios(scenarios []Scenario) error {
	seen := make(map[int]struct{}, len(scenarios))
	for _, s := range scenarios {
		if s.Month < 1 {
			return fmt.Errorf("%w: month %d must be >= 1", ErrInvalidScenario, s.Month)
		}
		if s.Multiplier <= 0 {
			return fmt.Errorf("%w: multiplier %v for month %d must be positive", ErrInvalidScenario, s.Multiplier, s.Month)
		}
		if _, ok := seen[s.Month]; ok {
			return fmt.Errorf("%w: duplicate month %d", ErrInvalidScenario, s.Month)
		}
		seen[s.Month] = struct{}{}
	}
	return nil
}

// ProductAttribute holds per-item operating parameters.
type ProductAttribute struct {
	SKU          string  `json:"sku"`
	LeadTimeDays float64 `json:"lead_time_days"`
	UnitCost     float64 `json:"unit_cost"`
	SellingPrice float64 `json:"selling_price"`
	ServiceLevel float64 `json:"service_level"`
}

// InventoryLevel is the current physical stock of one item.
type InventoryLevel struct {
	SKU         string    `json:"sku"`
	OnHand      float64   `json:"on_hand"`
	LastUpdated time.Time `json:"last_updated"`
}

// PortfolioParameters are the operating parameters resolved over the selected SKUs.
type PortfolioParameters struct {
	LeadTimeDays float64 `json:"lead_time_days"`
	ServiceLevel float64 `json:"service_level"`
	UnitCost     float64 `json:"unit_cost"`
	SellingPrice float64 `json:"selling_price"`
	OnHand       float64 `json:"on_hand"`
}

// DecisionPoint is a ForecastPoint enriched with inventory policy numbers.
type DecisionPoint struct {
	ForecastPoint
	SafetyStock        float64  `json:"safety_stock"`
	ReorderPoint       float64  `json:"reorder_point"`
	ScenarioForecast   *float64 `json:"scenario_forecast,omitempty"`
	ProjectedInventory float64  `json:"projected_inventory"`
	ProjectedRevenue   *float64 `json:"projected_revenue,omitempty"`
	ProjectedMargin    *float64 `json:"projected_margin,omitempty"`
	InventoryValue     *float64 `json:"inventory_value,omitempty"`
}

// AccuracyMetrics compares an actual series against a forecast.
type AccuracyMetrics struct {
	MAPE                float64 `json:"mape"`
	RMSE                float64 `json:"rmse"`
	Bias                float64 `json:"bias"`
	MAD                 float64 `json:"mad"`
	Accuracy            float64 `json:"accuracy"`
	HoldingCostRisk     float64 `json:"holding_cost_risk"`
	StockoutRevenueRisk float64 `json:"stockout_revenue_risk"`
}

// MethodAccuracy is one row of a comparative backtest.
type MethodAccuracy struct {
	Method    ForecastMethod  `json:"method"`
	Metrics   AccuracyMetrics `json:"metrics"`
	Actual    []float64       `json:"actual"`
	Predicted []float64       `json:"predicted"`
}

// ParetoGrade is the ABC class of an item.
type ParetoGrade string

const (
	GradeA ParetoGrade = "A"
	GradeB ParetoGrade = "B"
	GradeC ParetoGrade = "C"
)

// ParetoItem is the aggregated volume of one SKU.
type ParetoItem struct {
	SKU         string  `json:"sku"`
	TotalVolume float64 `json:"total_volume"`
}

// ParetoResult is a graded ParetoItem. Share and CumulativeShare are percentages.
type ParetoResult struct {
	SKU             string      `json:"sku"`
	TotalVolume     float64     `json:"total_volume"`
	Grade           ParetoGrade `json:"grade"`
	Share           float64     `json:"share"`
	CumulativeShare float64     `json:"cumulative_share"`
}
