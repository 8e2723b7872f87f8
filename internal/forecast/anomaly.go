package forecast

import (
	"math"

	"github.com/andresuchdata/demandplan/internal/domain"
	"github.com/andresuchdata/demandplan/internal/stats"
)

// DefaultAnomalyThreshold is the number of standard deviations from the mean
// beyond which an observation is treated as an outlier.
const DefaultAnomalyThreshold = 2.5

// CleanAnomalies returns a copy of series where every quantity further than
// threshold standard deviations from the mean is replaced with the rounded mean.
// A non-positive threshold uses DefaultAnomalyThreshold. The second return value
// is the number of replaced points.
func CleanAnomalies(series []domain.SeriesPoint, threshold float64) ([]domain.SeriesPoint, int) {
	if threshold <= 0 {
		threshold = DefaultAnomalyThreshold
	}

	cleaned := make([]domain.SeriesPoint, len(series))
	copy(cleaned, series)
	if len(series) == 0 {
		return cleaned, 0
	}

	values := quantities(series)
	mean := stats.Mean(values)
	sd := stats.StandardDeviation(values)
	if sd == 0 {
		return cleaned, 0
	}

	limit := threshold * sd
	replacement := int(math.Round(mean))
	replaced := 0
	for i, v := range values {
		if math.Abs(v-mean) > limit {
			cleaned[i].Quantity = replacement
			replaced++
		}
	}
	return cleaned, replaced
}

func quantities(series []domain.SeriesPoint) []float64 {
	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = float64(p.Quantity)
	}
	return values
}
