package forecast

import (
	"math"

	"github.com/andresuchdata/demandplan/internal/domain"
	"github.com/andresuchdata/demandplan/internal/stats"
)

const (
	// seasonLength is fixed for monthly data.
	seasonLength = 12

	hwAlpha = 0.3
	hwBeta  = 0.1
	hwGamma = 0.2

	// prophetTrendAmplification pushes the additive simulation toward a steeper
	// trend than plain linear extrapolation.
	prophetTrendAmplification = 1.2

	arCoefficient = 0.85
)

// projector turns a history into exactly horizon future values.
type projector func(series []float64, horizon int) []float64

var projectors = map[domain.ForecastMethod]projector{
	domain.MethodHoltWinters:      holtWintersProjection,
	domain.MethodProphet:          prophetProjection,
	domain.MethodARIMA:            arimaProjection,
	domain.MethodLinearRegression: linearProjection,
}

// Project runs the named method. Unknown methods fall back to domain.DefaultMethod.
// Every returned value is >= 0.
func Project(method domain.ForecastMethod, series []float64, horizon int) []float64 {
	if horizon <= 0 {
		return []float64{}
	}
	p, ok := projectors[method]
	if !ok {
		p = projectors[domain.DefaultMethod]
	}
	if len(series) == 0 {
		return make([]float64, horizon)
	}
	out := p(series, horizon)
	for i, v := range out {
		out[i] = clampNonNegative(v)
	}
	return out
}

// holtWinters keeps multiplicative level/trend/seasonal state.
type holtWinters struct {
	level    float64
	trend    float64
	seasonal []float64
	samples  int
}

func newHoltWinters(series []float64) *holtWinters {
	hw := &holtWinters{
		level:    series[0],
		seasonal: make([]float64, seasonLength),
	}
	if len(series) > 1 {
		hw.trend = series[1] - series[0]
	}
	for i := range hw.seasonal {
		hw.seasonal[i] = 1
		if i < len(series) && hw.level != 0 {
			hw.seasonal[i] = series[i] / hw.level
		}
	}
	return hw
}

func (hw *holtWinters) update(value float64) {
	idx := hw.samples % seasonLength
	hw.samples++

	s := hw.seasonal[idx]
	deseasonalized := value
	if s != 0 {
		deseasonalized = value / s
	}

	prevLevel := hw.level
	hw.level = hwAlpha*deseasonalized + (1-hwAlpha)*(prevLevel+hw.trend)
	hw.trend = hwBeta*(hw.level-prevLevel) + (1-hwBeta)*hw.trend
	if hw.level != 0 {
		hw.seasonal[idx] = hwGamma*(value/hw.level) + (1-hwGamma)*s
	}
}

func (hw *holtWinters) predict(stepsAhead int) float64 {
	idx := (hw.samples + stepsAhead - 1) % seasonLength
	return (hw.level + float64(stepsAhead)*hw.trend) * hw.seasonal[idx]
}

func holtWintersProjection(series []float64, horizon int) []float64 {
	hw := newHoltWinters(series)
	for _, v := range series {
		hw.update(v)
	}

	out := make([]float64, horizon)
	for step := 1; step <= horizon; step++ {
		out[step-1] = hw.predict(step)
	}
	return out
}

// prophetProjection repeats the latest season and adds an amplified average growth.
func prophetProjection(series []float64, horizon int) []float64 {
	n := len(series)
	start := n - seasonLength
	if start < 0 {
		start = 0
	}
	template := series[start:]
	growth := (series[n-1] - series[0]) / float64(n)

	out := make([]float64, horizon)
	for step := 1; step <= horizon; step++ {
		base := template[(step-1)%len(template)]
		out[step-1] = base + growth*prophetTrendAmplification*float64(step)
	}
	return out
}

// arimaProjection decays from the last observation toward the full-history mean.
func arimaProjection(series []float64, horizon int) []float64 {
	mean := stats.Mean(series)
	current := series[len(series)-1]

	out := make([]float64, horizon)
	for step := 0; step < horizon; step++ {
		current = mean + arCoefficient*(current-mean)
		out[step] = current
	}
	return out
}

func linearProjection(series []float64, horizon int) []float64 {
	slope, intercept := linearFit(series)
	n := len(series)

	out := make([]float64, horizon)
	for step := 1; step <= horizon; step++ {
		out[step-1] = slope*float64(n+step-1) + intercept
	}
	return out
}

// linearFit is ordinary least squares of value against period index 0..n-1.
func linearFit(series []float64) (slope, intercept float64) {
	n := float64(len(series))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range series {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

func clampNonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
