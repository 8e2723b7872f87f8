package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/demandplan/internal/domain"
)

// Filter returns the observations that match f. Dates are compared at day precision.
func Filter(observations []domain.Observation, f domain.SeriesFilter) []domain.Observation {
	skus := normalizedSet(f.SKUs)
	categories := normalizedSet(f.Categories)

	var from, to time.Time
	if f.From != nil {
		from = Day(*f.From)
	}
	if f.To != nil {
		to = Day(*f.To)
	}

	out := make([]domain.Observation, 0, len(observations))
	for _, obs := range observations {
		if len(skus) > 0 {
			if _, ok := skus[normalize(obs.SKU)]; !ok {
				continue
			}
		}
		if len(categories) > 0 {
			if _, ok := categories[normalize(obs.Category)]; !ok {
				continue
			}
		}
		d := Day(obs.Date)
		if f.From != nil && d.Before(from) {
			continue
		}
		if f.To != nil && d.After(to) {
			continue
		}
		out = append(out, obs)
	}
	return out
}

// BuildSeries filters observations and sums quantities per day, returning one
// point per distinct date in strictly increasing order.
func BuildSeries(observations []domain.Observation, f domain.SeriesFilter) []domain.SeriesPoint {
	totals := make(map[time.Time]int)
	for _, obs := range Filter(observations, f) {
		qty := obs.Quantity
		if qty < 0 {
			qty = 0
		}
		totals[Day(obs.Date)] += qty
	}

	series := make([]domain.SeriesPoint, 0, len(totals))
	for d, q := range totals {
		series = append(series, domain.SeriesPoint{Date: d, Quantity: q})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
	return series
}

// DistinctSKUs lists SKUs in first-seen order.
func DistinctSKUs(observations []domain.Observation) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, obs := range observations {
		sku := strings.TrimSpace(obs.SKU)
		if sku == "" {
			continue
		}
		if _, ok := seen[sku]; ok {
			continue
		}
		seen[sku] = struct{}{}
		out = append(out, sku)
	}
	return out
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func normalizedSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if k := normalize(v); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
