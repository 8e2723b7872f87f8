package forecast

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/demandplan/internal/domain"
)

// HoldingRate is the monthly carrying cost as a fraction of unit cost.
const HoldingRate = 0.02

// CalculateMetrics aligns actual and forecast by index up to the shorter length.
//
// Periods with zero actual demand are skipped for the percentage error, so MAPE
// is averaged over the non-zero-actual pairs only. RMSE and MAD use every
// aligned pair.
func CalculateMetrics(actual, forecast []float64, unitCost, sellingPrice float64) domain.AccuracyMetrics {
	n := len(actual)
	if len(forecast) < n {
		n = len(forecast)
	}
	if n == 0 {
		return domain.AccuracyMetrics{}
	}

	var (
		sumAbsPctError float64
		pctCount       int
		sumSqError     float64
		sumError       float64
		sumAbsError    float64
		sumActual      float64
		overstock      float64
		stockout       float64
	)
	for i := 0; i < n; i++ {
		diff := forecast[i] - actual[i]
		if actual[i] != 0 {
			sumAbsPctError += math.Abs(diff / actual[i])
			pctCount++
		}
		sumSqError += diff * diff
		sumError += diff
		sumAbsError += math.Abs(diff)
		sumActual += actual[i]
		if diff > 0 {
			overstock += diff
		} else if diff < 0 {
			stockout += -diff
		}
	}

	var m domain.AccuracyMetrics
	if pctCount > 0 {
		m.MAPE = 100 * sumAbsPctError / float64(pctCount)
	}
	m.RMSE = math.Sqrt(sumSqError / float64(n))
	if sumActual != 0 {
		m.Bias = 100 * sumError / sumActual
	}
	m.MAD = sumAbsError / float64(n)
	m.Accuracy = math.Max(0, 100-m.MAPE)

	m.HoldingCostRisk = decimal.NewFromFloat(overstock).
		Mul(decimal.NewFromFloat(unitCost)).
		Mul(decimal.NewFromFloat(HoldingRate)).
		InexactFloat64()
	m.StockoutRevenueRisk = decimal.NewFromFloat(stockout).
		Mul(decimal.NewFromFloat(sellingPrice - unitCost)).
		InexactFloat64()

	return m
}
