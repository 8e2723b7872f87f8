package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/demandplan/internal/aggregate"
	"github.com/andresuchdata/demandplan/internal/cache"
	"github.com/andresuchdata/demandplan/internal/config"
	"github.com/andresuchdata/demandplan/internal/domain"
	"github.com/andresuchdata/demandplan/internal/export"
	"github.com/andresuchdata/demandplan/internal/forecast"
	"github.com/andresuchdata/demandplan/internal/pareto"
	"github.com/andresuchdata/demandplan/internal/service"
	"github.com/andresuchdata/demandplan/internal/supplychain"
)

func newService(cfg *config.Config) *service.PlanningService {
	return service.NewPlanningService(cfg.Planning, cache.NewNoopAnalysisCache())
}

func buildRequest(c *cli.Context, in *inputs) (domain.AnalysisRequest, error) {
	scenarios, err := parseScenarios(c.StringSlice("scenario"))
	if err != nil {
		return domain.AnalysisRequest{}, err
	}
	confidence := c.Float64("confidence")
	return domain.AnalysisRequest{
		Observations:         in.observations,
		Attributes:           in.attributes,
		Inventory:            in.inventory,
		Filter:               seriesFilter(c),
		Horizon:              c.Int("horizon"),
		ConfidenceLevel:      &confidence,
		Method:               domain.ForecastMethod(c.String("method")),
		CleanAnomalies:       c.Bool("clean-anomalies"),
		Scenarios:            scenarios,
		ShowLeadTimeOffset:   c.Bool("lead-time-offset"),
		VolatilityMultiplier: c.Float64("volatility"),
		HoldoutPeriods:       c.Int("holdout"),
	}, nil
}

// parseScenarios reads "month:multiplier" pairs, e.g. "3:1.5".
func parseScenarios(raw []string) ([]domain.Scenario, error) {
	scenarios := make([]domain.Scenario, 0, len(raw))
	for _, r := range raw {
		monthStr, multStr, ok := strings.Cut(strings.TrimSpace(r), ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q is not month:multiplier", domain.ErrInvalidScenario, r)
		}
		month, err := strconv.Atoi(strings.TrimSpace(monthStr))
		if err != nil {
			return nil, fmt.Errorf("%w: month %q: %v", domain.ErrInvalidScenario, monthStr, err)
		}
		mult, err := strconv.ParseFloat(strings.TrimSpace(multStr), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: multiplier %q: %v", domain.ErrInvalidScenario, multStr, err)
		}
		scenarios = append(scenarios, domain.Scenario{
			ID:         uuid.NewString(),
			Name:       fmt.Sprintf("month %d x%s", month, strconv.FormatFloat(mult, 'f', -1, 64)),
			Month:      month,
			Multiplier: mult,
		})
	}
	return scenarios, domain.ValidateScenarios(scenarios)
}

func runAnalyze(c *cli.Context, cfg *config.Config) error {
	in, err := loadInputs(c)
	if err != nil {
		return err
	}
	req, err := buildRequest(c, in)
	if err != nil {
		return err
	}

	result, err := newService(cfg).Analyze(c.Context, req)
	if err != nil {
		return err
	}

	if err := exportPoints(c, result.Points); err != nil {
		return err
	}
	return writeJSON(c.App.Writer, result)
}

func runBySKU(c *cli.Context, cfg *config.Config) error {
	in, err := loadInputs(c)
	if err != nil {
		return err
	}
	req, err := buildRequest(c, in)
	if err != nil {
		return err
	}

	results, err := newService(cfg).AnalyzeBySKU(c.Context, req)
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, results)
}

func runBacktest(c *cli.Context, cfg *config.Config) error {
	in, err := loadInputs(c)
	if err != nil {
		return err
	}

	filter := seriesFilter(c)
	series := aggregate.BuildSeries(in.observations, filter)

	if c.Bool("clean-anomalies") {
		var cleaned int
		series, cleaned = forecast.CleanAnomalies(series, cfg.Planning.AnomalyThreshold)
		log.Info().Int("anomalies", cleaned).Msg("planner: anomalies cleaned")
	}

	params := supplychain.ResolveParameters(in.attributes, in.inventory, filter.SKUs)
	return writeJSON(c.App.Writer, newService(cfg).Backtest(domain.BacktestRequest{
		Series:         series,
		HoldoutPeriods: c.Int("holdout"),
		UnitCost:       params.UnitCost,
		SellingPrice:   params.SellingPrice,
	}))
}

func runPareto(c *cli.Context, cfg *config.Config) error {
	in, err := loadInputs(c)
	if err != nil {
		return err
	}
	filter := seriesFilter(c)
	filter.SKUs = nil

	items := pareto.TotalsBySKU(aggregate.Filter(in.observations, filter))
	return writeJSON(c.App.Writer, newService(cfg).Pareto(items))
}

func exportPoints(c *cli.Context, points []domain.DecisionPoint) error {
	path := strings.TrimSpace(c.String("export"))
	key := strings.TrimSpace(c.String("upload-key"))
	if path == "" && key == "" {
		return nil
	}

	payload, err := export.DecisionPointsCSV(points)
	if err != nil {
		return err
	}

	if path != "" {
		if err := os.WriteFile(path, payload, 0o644); err != nil {
			return fmt.Errorf("write export %s: %w", path, err)
		}
		log.Info().Str("path", path).Int("rows", len(points)).Msg("planner: export written")
	}

	if key != "" {
		client, err := newObjectStorage(c)
		if err != nil {
			return err
		}
		if err := client.UploadObject(c.Context, key, payload); err != nil {
			return err
		}
		log.Info().Str("key", key).Int("rows", len(points)).Msg("planner: export uploaded")
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
