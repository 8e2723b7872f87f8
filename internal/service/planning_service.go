package service

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/demandplan/internal/aggregate"
	"github.com/andresuchdata/demandplan/internal/cache"
	"github.com/andresuchdata/demandplan/internal/config"
	"github.com/andresuchdata/demandplan/internal/domain"
	"github.com/andresuchdata/demandplan/internal/export"
	"github.com/andresuchdata/demandplan/internal/forecast"
	"github.com/andresuchdata/demandplan/internal/pareto"
	"github.com/andresuchdata/demandplan/internal/stats"
	"github.com/andresuchdata/demandplan/internal/supplychain"
)

// summaryTopSKUs caps the A-class SKUs quoted in the narrative summary.
const summaryTopSKUs = 5

type PlanningService struct {
	cfg   config.PlanningConfig
	cache cache.AnalysisCache
}

func NewPlanningService(cfg config.PlanningConfig, cacheImpl cache.AnalysisCache) *PlanningService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAnalysisCache()
	}
	defaults := config.DefaultPlanningConfig()
	if cfg.DefaultHorizon <= 0 {
		cfg.DefaultHorizon = defaults.DefaultHorizon
	}
	if cfg.DefaultConfidence <= 0 {
		cfg.DefaultConfidence = defaults.DefaultConfidence
	}
	if cfg.HoldoutPeriods <= 0 {
		cfg.HoldoutPeriods = defaults.HoldoutPeriods
	}
	if cfg.BatchWorkers <= 0 {
		cfg.BatchWorkers = defaults.BatchWorkers
	}
	return &PlanningService{cfg: cfg, cache: cacheImpl}
}

// Resolve fills unset request fields from configuration and validates the
// method and scenarios.
func (s *PlanningService) Resolve(req domain.AnalysisRequest) (domain.AnalysisRequest, error) {
	method, err := domain.ParseForecastMethod(string(req.Method))
	if err != nil {
		return req, err
	}
	req.Method = method

	if err := domain.ValidateScenarios(req.Scenarios); err != nil {
		return req, err
	}
	if req.Horizon <= 0 {
		req.Horizon = s.cfg.DefaultHorizon
	}
	if req.ConfidenceLevel == nil {
		confidence := s.cfg.DefaultConfidence
		req.ConfidenceLevel = &confidence
	}
	if req.HoldoutPeriods <= 0 {
		req.HoldoutPeriods = s.cfg.HoldoutPeriods
	}
	return req, nil
}

// Analyze runs one full planning pass: aggregate, clean, forecast, derive the
// inventory policy, backtest, classify and summarise.
func (s *PlanningService) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	req, err := s.Resolve(req)
	if err != nil {
		return nil, err
	}
	return s.analyzeResolved(ctx, req)
}

func (s *PlanningService) analyzeResolved(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key, keyErr := cache.AnalysisKey(req)
	if keyErr != nil {
		log.Warn().Err(keyErr).Msg("planning: cache key build failed")
	} else if result, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		return result, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("planning: cache get analysis failed")
	}

	result := s.run(req)

	if keyErr == nil {
		if err := s.cache.Set(ctx, key, result); err != nil {
			log.Warn().Err(err).Msg("planning: cache set analysis failed")
		}
	}

	log.Debug().
		Str("method", string(result.Method)).
		Int("periods", len(result.Series)).
		Int("anomalies", result.AnomaliesCleaned).
		Strs("skus", req.Filter.SKUs).
		Msg("planning: analysis complete")

	return result, nil
}

func (s *PlanningService) run(req domain.AnalysisRequest) *domain.AnalysisResult {
	series := aggregate.BuildSeries(req.Observations, req.Filter)

	anomalies := 0
	if req.CleanAnomalies {
		series, anomalies = forecast.CleanAnomalies(series, s.cfg.AnomalyThreshold)
	}

	params := supplychain.ResolveParameters(req.Attributes, req.Inventory, req.Filter.SKUs)
	points := forecast.CalculateForecast(series, req.Horizon, *req.ConfidenceLevel, req.Method)

	decisions := supplychain.CalculateSupplyChainMetrics(points, supplychain.PolicyParams{
		HistoricalStdDev:     stats.StandardDeviation(forecast.HistoricalValues(points)),
		LeadTimeDays:         params.LeadTimeDays,
		ServiceLevel:         params.ServiceLevel,
		OnHand:               params.OnHand,
		Scenarios:            req.Scenarios,
		ShowLeadTimeOffset:   req.ShowLeadTimeOffset,
		VolatilityMultiplier: req.VolatilityMultiplier,
		Attributes:           supplychain.SelectAttributes(req.Attributes, req.Filter.SKUs),
	})

	backtest := forecast.Backtest(series, req.HoldoutPeriods, req.Method, params.UnitCost, params.SellingPrice)
	comparison := forecast.CompareMethods(series, req.HoldoutPeriods, params.UnitCost, params.SellingPrice)

	// Classification always spans the whole portfolio in scope, not the selected SKUs.
	portfolio := req.Filter
	portfolio.SKUs = nil
	classes := pareto.RunParetoAnalysis(pareto.TotalsBySKU(aggregate.Filter(req.Observations, portfolio)))

	result := &domain.AnalysisResult{
		Method:           req.Method,
		Horizon:          req.Horizon,
		ConfidenceLevel:  *req.ConfidenceLevel,
		Series:           series,
		AnomaliesCleaned: anomalies,
		Parameters:       params,
		Points:           decisions,
		Backtest:         backtest,
		MethodComparison: comparison,
		Pareto:           classes,
	}
	result.Summary = Summarize(result)
	return result
}

// AnalyzeBySKU runs an independent analysis for each selected SKU, or for every
// SKU in scope when none is selected. Results keep SKU order.
func (s *PlanningService) AnalyzeBySKU(ctx context.Context, req domain.AnalysisRequest) ([]domain.SKUAnalysis, error) {
	req, err := s.Resolve(req)
	if err != nil {
		return nil, err
	}

	skus := req.Filter.SKUs
	if len(skus) == 0 {
		skus = aggregate.DistinctSKUs(aggregate.Filter(req.Observations, req.Filter))
	}

	results := make([]domain.SKUAnalysis, len(skus))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchWorkers)

	for i, sku := range skus {
		g.Go(func() error {
			skuReq := req
			skuReq.Filter.SKUs = []string{sku}
			res, err := s.analyzeResolved(gctx, skuReq)
			if err != nil {
				return fmt.Errorf("analyze sku %s: %w", sku, err)
			}
			results[i] = domain.SKUAnalysis{SKU: sku, Result: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Forecast cleans (optionally) and projects a pre-aggregated series.
func (s *PlanningService) Forecast(req domain.ForecastRequest) ([]domain.ForecastPoint, error) {
	method, err := domain.ParseForecastMethod(string(req.Method))
	if err != nil {
		return nil, err
	}
	horizon := req.Horizon
	if horizon <= 0 {
		horizon = s.cfg.DefaultHorizon
	}
	confidence := s.cfg.DefaultConfidence
	if req.ConfidenceLevel != nil {
		confidence = *req.ConfidenceLevel
	}

	series := req.Series
	if req.CleanAnomalies {
		series, _ = forecast.CleanAnomalies(series, s.cfg.AnomalyThreshold)
	}
	return forecast.CalculateForecast(series, horizon, confidence, method), nil
}

// Backtest compares every method on the held-out tail of the series.
func (s *PlanningService) Backtest(req domain.BacktestRequest) []domain.MethodAccuracy {
	holdout := req.HoldoutPeriods
	if holdout <= 0 {
		holdout = s.cfg.HoldoutPeriods
	}
	unitCost := req.UnitCost
	if unitCost <= 0 {
		unitCost = supplychain.DefaultUnitCost
	}
	sellingPrice := req.SellingPrice
	if sellingPrice <= 0 {
		sellingPrice = supplychain.DefaultSellingPrice
	}
	return forecast.CompareMethods(req.Series, holdout, unitCost, sellingPrice)
}

func (s *PlanningService) Pareto(items []domain.ParetoItem) []domain.ParetoResult {
	return pareto.RunParetoAnalysis(items)
}

// Export analyses the request and renders its decision points as CSV.
func (s *PlanningService) Export(ctx context.Context, req domain.AnalysisRequest) ([]byte, error) {
	result, err := s.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}
	return export.DecisionPointsCSV(result.Points)
}

// InvalidateCache drops every cached analysis.
func (s *PlanningService) InvalidateCache(ctx context.Context) error {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		return fmt.Errorf("invalidate analysis cache: %w", err)
	}
	log.Info().Msg("planning: analysis cache invalidated")
	return nil
}

// Summarize extracts the scalars a narrative layer needs from a finished analysis.
func Summarize(result *domain.AnalysisResult) domain.NarrativeSummary {
	summary := domain.NarrativeSummary{
		Accuracy: result.Backtest.Metrics.Accuracy,
		TopASKUs: pareto.TopSKUs(result.Pareto, domain.GradeA, summaryTopSKUs),
	}

	var hist, fc []float64
	for _, p := range result.Points {
		if p.IsForecast {
			fc = append(fc, p.Forecast)
		} else if p.Historical != nil {
			hist = append(hist, *p.Historical)
		}
	}
	summary.HistoricalAverage = math.Round(stats.Mean(hist))
	summary.ForecastAverage = math.Round(stats.Mean(fc))

	if len(result.Points) > 0 {
		summary.SafetyStock = result.Points[0].SafetyStock
		summary.ReorderPoint = result.Points[0].ReorderPoint
	}
	return summary
}
