package supplychain

import (
	"strings"

	"github.com/andresuchdata/demandplan/internal/domain"
)

const (
	DefaultLeadTimeDays = 14.0
	DefaultServiceLevel = 0.95
)

// SelectAttributes returns the attributes of the given SKUs, or all of them when skus is empty.
func SelectAttributes(attrs []domain.ProductAttribute, skus []string) []domain.ProductAttribute {
	set := skuSet(skus)
	if len(set) == 0 {
		return append([]domain.ProductAttribute{}, attrs...)
	}
	out := make([]domain.ProductAttribute, 0, len(skus))
	for _, a := range attrs {
		if _, ok := set[normalizeSKU(a.SKU)]; ok {
			out = append(out, a)
		}
	}
	return out
}

// ResolveParameters averages operating parameters over the selected SKUs and sums
// their on-hand stock. Each field is averaged over the SKUs that carry a value
// for it and falls back to its package default when none does.
func ResolveParameters(attrs []domain.ProductAttribute, inventory []domain.InventoryLevel, skus []string) domain.PortfolioParameters {
	selected := SelectAttributes(attrs, skus)

	params := domain.PortfolioParameters{
		LeadTimeDays: averageField(selected, func(a domain.ProductAttribute) float64 { return a.LeadTimeDays }, DefaultLeadTimeDays),
		ServiceLevel: averageField(selected, func(a domain.ProductAttribute) float64 { return a.ServiceLevel }, DefaultServiceLevel),
	}
	params.UnitCost, params.SellingPrice = averageEconomics(selected)

	set := skuSet(skus)
	for _, inv := range inventory {
		if len(set) > 0 {
			if _, ok := set[normalizeSKU(inv.SKU)]; !ok {
				continue
			}
		}
		params.OnHand += inv.OnHand
	}

	return params
}

// averageField averages the positive values of one attribute field. Zero means
// the column was absent or blank for that SKU.
func averageField(attrs []domain.ProductAttribute, field func(domain.ProductAttribute) float64, fallback float64) float64 {
	var sum float64
	n := 0
	for _, a := range attrs {
		if v := field(a); v > 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return fallback
	}
	return sum / float64(n)
}

func skuSet(skus []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skus))
	for _, s := range skus {
		if k := normalizeSKU(s); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

func normalizeSKU(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
