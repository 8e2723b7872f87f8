package export

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/andresuchdata/demandplan/internal/domain"
)

// decisionRow is the flat CSV shape of a DecisionPoint. Optional fields are
// pre-formatted so absent values render as empty cells.
type decisionRow struct {
	Date               string `csv:"date"`
	Historical         string `csv:"historical"`
	Forecast           string `csv:"forecast"`
	LowerBound         string `csv:"lower_bound"`
	UpperBound         string `csv:"upper_bound"`
	IsForecast         string `csv:"is_forecast"`
	ScenarioForecast   string `csv:"scenario_forecast"`
	SafetyStock        string `csv:"safety_stock"`
	ReorderPoint       string `csv:"reorder_point"`
	ProjectedInventory string `csv:"projected_inventory"`
	ProjectedRevenue   string `csv:"projected_revenue"`
	ProjectedMargin    string `csv:"projected_margin"`
	InventoryValue     string `csv:"inventory_value"`
}

// WriteDecisionPoints writes a header row followed by one row per point.
func WriteDecisionPoints(w io.Writer, points []domain.DecisionPoint) error {
	rows := make([]*decisionRow, 0, len(points))
	for _, p := range points {
		rows = append(rows, &decisionRow{
			Date:               p.Date.Format("2006-01-02"),
			Historical:         optional(p.Historical),
			Forecast:           number(p.Forecast),
			LowerBound:         optional(p.LowerBound),
			UpperBound:         optional(p.UpperBound),
			IsForecast:         strconv.FormatBool(p.IsForecast),
			ScenarioForecast:   optional(p.ScenarioForecast),
			SafetyStock:        number(p.SafetyStock),
			ReorderPoint:       number(p.ReorderPoint),
			ProjectedInventory: number(p.ProjectedInventory),
			ProjectedRevenue:   optional(p.ProjectedRevenue),
			ProjectedMargin:    optional(p.ProjectedMargin),
			InventoryValue:     optional(p.InventoryValue),
		})
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("encode decision points: %w", err)
	}
	return nil
}

// DecisionPointsCSV is WriteDecisionPoints into a byte slice.
func DecisionPointsCSV(points []domain.DecisionPoint) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDecisionPoints(&buf, points); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optional(v *float64) string {
	if v == nil {
		return ""
	}
	return number(*v)
}
