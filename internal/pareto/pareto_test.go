package pareto

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/demandplan/internal/domain"
)

func TestRunParetoAnalysis(t *testing.T) {
	t.Run("inclusive class boundaries", func(t *testing.T) {
		items := []domain.ParetoItem{
			{SKU: "D", TotalVolume: 50},
			{SKU: "B", TotalVolume: 300},
			{SKU: "A", TotalVolume: 500},
			{SKU: "C", TotalVolume: 150},
		}

		results := RunParetoAnalysis(items)

		require.Equal(t, "", cmp.Diff([]domain.ParetoResult{
			{SKU: "A", TotalVolume: 500, Grade: domain.GradeA, Share: 50, CumulativeShare: 50},
			{SKU: "B", TotalVolume: 300, Grade: domain.GradeA, Share: 30, CumulativeShare: 80},
			{SKU: "C", TotalVolume: 150, Grade: domain.GradeB, Share: 15, CumulativeShare: 95},
			{SKU: "D", TotalVolume: 50, Grade: domain.GradeC, Share: 5, CumulativeShare: 100},
		}, results))

		// input order preserved
		require.Equal(t, "D", items[0].SKU)
	})

	t.Run("ties keep input order", func(t *testing.T) {
		results := RunParetoAnalysis([]domain.ParetoItem{
			{SKU: "x", TotalVolume: 10},
			{SKU: "y", TotalVolume: 10},
			{SKU: "z", TotalVolume: 10},
		})
		require.Equal(t, []string{"x", "y", "z"}, []string{results[0].SKU, results[1].SKU, results[2].SKU})
	})

	t.Run("empty and zero totals", func(t *testing.T) {
		require.Empty(t, RunParetoAnalysis(nil))

		results := RunParetoAnalysis([]domain.ParetoItem{{SKU: "a"}, {SKU: "b"}})
		for _, r := range results {
			require.Equal(t, float64(0), r.Share)
			require.Equal(t, domain.GradeA, r.Grade)
		}
	})
}

func TestTotalsBySKU(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	obs := []domain.Observation{
		{Date: day, SKU: "B", Quantity: 5},
		{Date: day, SKU: "A", Quantity: 2},
		{Date: day.AddDate(0, 1, 0), SKU: "B ", Quantity: 7},
	}
	require.Equal(t, []domain.ParetoItem{
		{SKU: "B", TotalVolume: 12},
		{SKU: "A", TotalVolume: 2},
	}, TotalsBySKU(obs))
}

func TestTopSKUs(t *testing.T) {
	results := RunParetoAnalysis([]domain.ParetoItem{
		{SKU: "a", TotalVolume: 400},
		{SKU: "b", TotalVolume: 300},
		{SKU: "c", TotalVolume: 150},
		{SKU: "d", TotalVolume: 100},
		{SKU: "e", TotalVolume: 50},
	})
	require.Equal(t, []string{"a", "b"}, TopSKUs(results, domain.GradeA, 5))
	require.Equal(t, []string{"a"}, TopSKUs(results, domain.GradeA, 1))
}
