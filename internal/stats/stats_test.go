package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStandardDeviation(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		require.Equal(t, float64(0), StandardDeviation(nil))
		require.Equal(t, float64(0), StandardDeviation([]float64{}))
	})

	t.Run("single value", func(t *testing.T) {
		require.Equal(t, float64(0), StandardDeviation([]float64{42}))
	})

	t.Run("population not sample", func(t *testing.T) {
		// mean 5, squared deviations sum to 32, /8 = 4
		sd := StandardDeviation([]float64{2, 4, 4, 4, 5, 5, 7, 9})
		require.InDelta(t, 2.0, sd, 1e-9)
	})
}

func TestMean(t *testing.T) {
	require.Equal(t, float64(0), Mean(nil))
	require.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-9)
}

func TestConfidenceZMultiplier(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{100, 2.576},
		{99, 2.576},
		{98.9, 1.96},
		{95, 1.96},
		{94.99, 1.645},
		{90, 1.645},
		{89, 1.28},
		{80, 1.28},
		{0, 1.28},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ConfidenceZMultiplier(tc.in), "confidence %v", tc.in)
	}

	require.GreaterOrEqual(t, ConfidenceZMultiplier(99), ConfidenceZMultiplier(95))
	require.GreaterOrEqual(t, ConfidenceZMultiplier(95), ConfidenceZMultiplier(90))
}

func TestServiceLevelZScore(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{1, 3.09},
		{0.999, 3.09},
		{0.99, 2.33},
		{0.98, 2.05},
		{0.95, 1.645},
		{0.9, 1.28},
		{0.85, 1.04},
		{0.8, 0.84},
		{0.79, 0.5},
		{0, 0.5},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ServiceLevelZScore(tc.in), "service level %v", tc.in)
	}

	t.Run("non-increasing as service level drops", func(t *testing.T) {
		prev := math.Inf(1)
		for sl := 1.0; sl >= 0; sl -= 0.005 {
			z := ServiceLevelZScore(sl)
			require.LessOrEqual(t, z, prev)
			prev = z
		}
	})
}
