package ingest

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/demandplan/internal/domain"
)

// ReadObservations loads sales history from a .csv or .xlsx file.
func ReadObservations(path string) ([]domain.Observation, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, fmt.Errorf("read sales %s: %w", path, err)
	}
	return observationsFromTable(t)
}

// ParseObservations reads sales history CSV from r.
func ParseObservations(r io.Reader) ([]domain.Observation, error) {
	t, err := parseCSV(r)
	if err != nil {
		return nil, err
	}
	return observationsFromTable(t)
}

func observationsFromTable(t *table) ([]domain.Observation, error) {
	idxDate, err := t.require("date", "date", "period", "tanggal")
	if err != nil {
		return nil, err
	}
	idxSKU, err := t.require("sku", "sku", "item", "product")
	if err != nil {
		return nil, err
	}
	idxQty, err := t.require("quantity", "quantity", "qty", "sales", "units")
	if err != nil {
		return nil, err
	}
	idxCategory := t.colIndex("category", "kategori", "kategori brand")

	out := make([]domain.Observation, 0, len(t.records))
	skipped := 0
	for _, record := range t.records {
		date, err := parseDate(field(record, idxDate))
		if err != nil {
			skipped++
			continue
		}
		sku := field(record, idxSKU)
		if sku == "" {
			skipped++
			continue
		}
		out = append(out, domain.Observation{
			Date:     date,
			SKU:      sku,
			Category: field(record, idxCategory),
			Quantity: parseQuantity(record, idxQty),
		})
	}
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("ingest: dropped sales rows without a valid date or sku")
	}
	return out, nil
}

// ReadAttributes loads per-SKU lead time, cost, price and service level.
func ReadAttributes(path string) ([]domain.ProductAttribute, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, fmt.Errorf("read attributes %s: %w", path, err)
	}
	return attributesFromTable(t)
}

// ParseAttributes reads product attribute CSV from r.
func ParseAttributes(r io.Reader) ([]domain.ProductAttribute, error) {
	t, err := parseCSV(r)
	if err != nil {
		return nil, err
	}
	return attributesFromTable(t)
}

func attributesFromTable(t *table) ([]domain.ProductAttribute, error) {
	idxSKU, err := t.require("sku", "sku", "item", "product")
	if err != nil {
		return nil, err
	}
	idxLead := t.colIndex("lead_time_days", "lead time", "lead_time", "leadtime")
	idxCost := t.colIndex("unit_cost", "cost", "hpp")
	idxPrice := t.colIndex("selling_price", "price", "harga")
	idxService := t.colIndex("service_level", "service level")

	out := make([]domain.ProductAttribute, 0, len(t.records))
	for _, record := range t.records {
		sku := field(record, idxSKU)
		if sku == "" {
			continue
		}
		service := parseFloat(record, idxService)
		// accept 95 as well as 0.95
		if service > 1 {
			service /= 100
		}
		out = append(out, domain.ProductAttribute{
			SKU:          sku,
			LeadTimeDays: parseFloat(record, idxLead),
			UnitCost:     parseFloat(record, idxCost),
			SellingPrice: parseFloat(record, idxPrice),
			ServiceLevel: service,
		})
	}
	return out, nil
}

// ReadInventory loads current on-hand stock per SKU.
func ReadInventory(path string) ([]domain.InventoryLevel, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory %s: %w", path, err)
	}
	return inventoryFromTable(t)
}

// ParseInventory reads inventory CSV from r.
func ParseInventory(r io.Reader) ([]domain.InventoryLevel, error) {
	t, err := parseCSV(r)
	if err != nil {
		return nil, err
	}
	return inventoryFromTable(t)
}

func inventoryFromTable(t *table) ([]domain.InventoryLevel, error) {
	idxSKU, err := t.require("sku", "sku", "item", "product")
	if err != nil {
		return nil, err
	}
	idxOnHand, err := t.require("on_hand", "on_hand", "onhand", "stock", "stok")
	if err != nil {
		return nil, err
	}
	idxUpdated := t.colIndex("last_updated", "updated_at", "date")

	out := make([]domain.InventoryLevel, 0, len(t.records))
	for _, record := range t.records {
		sku := field(record, idxSKU)
		if sku == "" {
			continue
		}
		var updated time.Time
		if raw := field(record, idxUpdated); raw != "" {
			updated, _ = parseDate(raw)
		}
		onHand := parseFloat(record, idxOnHand)
		if onHand < 0 {
			onHand = 0
		}
		out = append(out, domain.InventoryLevel{
			SKU:         sku,
			OnHand:      onHand,
			LastUpdated: updated,
		})
	}
	return out, nil
}
