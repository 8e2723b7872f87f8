package forecast

import (
	"math"
	"sort"

	"github.com/andresuchdata/demandplan/internal/domain"
)

// Backtest trains on all but the last holdout points, projects holdout periods
// and scores them against the held-out actuals. When the training prefix is
// shorter than MinHistory the metrics are all zero and no values are returned.
func Backtest(series []domain.SeriesPoint, holdout int, method domain.ForecastMethod, unitCost, sellingPrice float64) domain.MethodAccuracy {
	if _, ok := projectors[method]; !ok {
		method = domain.DefaultMethod
	}
	result := domain.MethodAccuracy{
		Method:    method,
		Actual:    []float64{},
		Predicted: []float64{},
	}
	if holdout <= 0 || len(series)-holdout < MinHistory {
		return result
	}

	split := len(series) - holdout
	train := quantities(series[:split])
	actual := quantities(series[split:])

	predicted := Project(method, train, holdout)
	for i, v := range predicted {
		predicted[i] = math.Round(v)
	}

	result.Actual = actual
	result.Predicted = predicted
	result.Metrics = CalculateMetrics(actual, predicted, unitCost, sellingPrice)
	return result
}

// CompareMethods backtests every method and orders them by descending accuracy.
// Equal accuracies keep declaration order.
func CompareMethods(series []domain.SeriesPoint, holdout int, unitCost, sellingPrice float64) []domain.MethodAccuracy {
	methods := domain.ForecastMethods()
	results := make([]domain.MethodAccuracy, 0, len(methods))
	for _, m := range methods {
		results = append(results, Backtest(series, holdout, m, unitCost, sellingPrice))
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Metrics.Accuracy > results[j].Metrics.Accuracy
	})
	return results
}
