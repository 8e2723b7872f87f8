package pareto

import (
	"sort"
	"strings"

	"github.com/andresuchdata/demandplan/internal/domain"
)

// Cumulative share thresholds (inclusive) for the A and B classes.
const (
	ClassAThreshold = 80.0
	ClassBThreshold = 95.0
)

// RunParetoAnalysis ranks items by descending volume (stable for ties) and grades
// them by cumulative share of the grand total. The input is not modified.
func RunParetoAnalysis(items []domain.ParetoItem) []domain.ParetoResult {
	sorted := append([]domain.ParetoItem{}, items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalVolume > sorted[j].TotalVolume
	})

	var total float64
	for _, it := range sorted {
		total += it.TotalVolume
	}

	results := make([]domain.ParetoResult, 0, len(sorted))
	var cumulative float64
	for _, it := range sorted {
		cumulative += it.TotalVolume

		var cumulativePct, share float64
		if total != 0 {
			cumulativePct = 100 * cumulative / total
			share = 100 * it.TotalVolume / total
		}

		results = append(results, domain.ParetoResult{
			SKU:             it.SKU,
			TotalVolume:     it.TotalVolume,
			Grade:           gradeFor(cumulativePct),
			Share:           share,
			CumulativeShare: cumulativePct,
		})
	}
	return results
}

func gradeFor(cumulativePct float64) domain.ParetoGrade {
	switch {
	case cumulativePct <= ClassAThreshold:
		return domain.GradeA
	case cumulativePct <= ClassBThreshold:
		return domain.GradeB
	default:
		return domain.GradeC
	}
}

// TotalsBySKU sums observation quantities per SKU, in first-seen order.
func TotalsBySKU(observations []domain.Observation) []domain.ParetoItem {
	index := make(map[string]int)
	items := make([]domain.ParetoItem, 0)
	for _, obs := range observations {
		sku := strings.TrimSpace(obs.SKU)
		i, ok := index[sku]
		if !ok {
			i = len(items)
			index[sku] = i
			items = append(items, domain.ParetoItem{SKU: sku})
		}
		items[i].TotalVolume += float64(obs.Quantity)
	}
	return items
}

// TopSKUs returns up to limit SKUs of the given grade in ranked order.
func TopSKUs(results []domain.ParetoResult, grade domain.ParetoGrade, limit int) []string {
	out := make([]string, 0, limit)
	for _, r := range results {
		if len(out) >= limit {
			break
		}
		if r.Grade == grade {
			out = append(out, r.SKU)
		}
	}
	return out
}
