// internal/domain/analysis.go
package domain

// AnalysisRequest is a fully-resolved parameter object for one planning run.
// Zero values for Horizon and HoldoutPeriods and a missing ConfidenceLevel fall back
// to configured defaults. An explicit confidence of 0 is kept and selects the
// narrowest band.
type AnalysisRequest struct {
	Observations []Observation      `json:"observations"`
	Attributes   []ProductAttribute `json:"attributes"`
	Inventory    []InventoryLevel   `json:"inventory"`

	Filter               SeriesFilter   `json:"filter"`
	Horizon              int            `json:"horizon"`
	ConfidenceLevel      *float64       `json:"confidence_level,omitempty"`
	Method               ForecastMethod `json:"method"`
	CleanAnomalies       bool           `json:"clean_anomalies"`
	Scenarios            []Scenario     `json:"scenarios"`
	ShowLeadTimeOffset   bool           `json:"show_lead_time_offset"`
	VolatilityMultiplier float64        `json:"volatility_multiplier"`
	HoldoutPeriods       int            `json:"holdout_periods"`
}

// NarrativeSummary carries the scalars narrative generators build prompts from.
type NarrativeSummary struct {
	HistoricalAverage float64  `json:"historical_average"`
	ForecastAverage   float64  `json:"forecast_average"`
	Accuracy          float64  `json:"accuracy"`
	SafetyStock       float64  `json:"safety_stock"`
	ReorderPoint      float64  `json:"reorder_point"`
	TopASKUs          []string `json:"top_a_skus"`
}

// AnalysisResult is everything the dashboard renders for one run.
type AnalysisResult struct {
	Method           ForecastMethod      `json:"method"`
	Horizon          int                 `json:"horizon"`
	ConfidenceLevel  float64             `json:"confidence_level"`
	Series           []SeriesPoint       `json:"series"`
	AnomaliesCleaned int                 `json:"anomalies_cleaned"`
	Parameters       PortfolioParameters `json:"parameters"`
	Points           []DecisionPoint     `json:"points"`
	Backtest         MethodAccuracy      `json:"backtest"`
	MethodComparison []MethodAccuracy    `json:"method_comparison"`
	Pareto           []ParetoResult      `json:"pareto"`
	Summary          NarrativeSummary    `json:"summary"`
}

// SKUAnalysis pairs a SKU with its independent analysis.
type SKUAnalysis struct {
	SKU    string          `json:"sku"`
	Result *AnalysisResult `json:"result"`
}

// ForecastRequest drives the standalone forecast endpoint. A missing
// ConfidenceLevel uses the configured default; an explicit 0 is honoured.
type ForecastRequest struct {
	Series          []SeriesPoint  `json:"series"`
	Horizon         int            `json:"horizon"`
	ConfidenceLevel *float64       `json:"confidence_level,omitempty"`
	Method          ForecastMethod `json:"method"`
	CleanAnomalies  bool           `json:"clean_anomalies"`
}

// BacktestRequest drives the comparative backtest endpoint.
type BacktestRequest struct {
	Series         []SeriesPoint `json:"series"`
	HoldoutPeriods int           `json:"holdout_periods"`
	UnitCost       float64       `json:"unit_cost"`
	SellingPrice   float64       `json:"selling_price"`
}
