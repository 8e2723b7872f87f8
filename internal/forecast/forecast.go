package forecast

import (
	"math"

	"github.com/andresuchdata/demandplan/internal/domain"
	"github.com/andresuchdata/demandplan/internal/stats"
)

const (
	// MinHistory is the shortest history a forecast is defined for.
	MinHistory = 3

	// uncertaintyDamping narrows the raw confidence interval so bands stay
	// plausible at long horizons.
	uncertaintyDamping = 0.4
)

// CalculateForecast echoes history as historical points and appends horizon
// projected monthly periods with confidence bounds. Histories shorter than
// MinHistory yield an empty result.
func CalculateForecast(history []domain.SeriesPoint, horizon int, confidenceLevelPercent float64, method domain.ForecastMethod) []domain.ForecastPoint {
	if len(history) < MinHistory {
		return []domain.ForecastPoint{}
	}
	if horizon < 0 {
		horizon = 0
	}

	series := quantities(history)
	raw := Project(method, series, horizon)

	points := make([]domain.ForecastPoint, 0, len(history)+horizon)
	for i, obs := range history {
		actual := series[i]
		points = append(points, domain.ForecastPoint{
			Date:       obs.Date,
			Historical: &actual,
			Forecast:   actual,
			IsForecast: false,
		})
	}

	multiplier := stats.ConfidenceZMultiplier(confidenceLevelPercent)
	sd := stats.StandardDeviation(series)
	lastDate := history[len(history)-1].Date

	for i := 1; i <= horizon; i++ {
		value := raw[i-1]
		uncertainty := multiplier * sd * math.Sqrt(float64(i)) * uncertaintyDamping
		lower := math.Max(0, math.Round(value-uncertainty))
		upper := math.Round(value + uncertainty)

		points = append(points, domain.ForecastPoint{
			Date:       lastDate.AddDate(0, i, 0),
			Forecast:   math.Round(value),
			LowerBound: &lower,
			UpperBound: &upper,
			IsForecast: true,
		})
	}

	return points
}

// ForecastValues returns the point estimates of the projected periods only.
func ForecastValues(points []domain.ForecastPoint) []float64 {
	values := make([]float64, 0, len(points))
	for _, p := range points {
		if p.IsForecast {
			values = append(values, p.Forecast)
		}
	}
	return values
}

// HistoricalValues returns the actuals of the historical prefix.
func HistoricalValues(points []domain.ForecastPoint) []float64 {
	values := make([]float64, 0, len(points))
	for _, p := range points {
		if !p.IsForecast && p.Historical != nil {
			values = append(values, *p.Historical)
		}
	}
	return values
}
