// Package reorder computes restocking plans and low-stock alerts from an
// inventory snapshot. Every operation is a pure function over the snapshot
// and a policy value: no I/O, no shared state, safe for concurrent callers.
package reorder

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPolicy = errors.New("invalid reorder policy")
	ErrInvalidItem   = errors.New("invalid inventory item")
)

// Item is one product record inside a snapshot. The engine never mutates it.
type Item struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Stock     int             `json:"stock"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Policy parameterizes one evaluation. TargetLevel is the safe-stock
// watermark restock orders aim to reach, LowStockThreshold the alert
// boundary, and CriticalRatio the fraction of the threshold below which
// an alert escalates to critical.
type Policy struct {
	TargetLevel       int     `json:"target_level"`
	LowStockThreshold int     `json:"low_stock_threshold"`
	CriticalRatio     float64 `json:"critical_ratio"`
}

func (p Policy) Validate() error {
	if p.TargetLevel < 0 {
		return fmt.Errorf("%w: target_level must be >= 0, got %d", ErrInvalidPolicy, p.TargetLevel)
	}
	if p.LowStockThreshold < 0 {
		return fmt.Errorf("%w: low_stock_threshold must be >= 0, got %d", ErrInvalidPolicy, p.LowStockThreshold)
	}
	if p.CriticalRatio <= 0 || p.CriticalRatio > 1 {
		return fmt.Errorf("%w: critical_ratio must be in (0,1], got %v", ErrInvalidPolicy, p.CriticalRatio)
	}
	return nil
}

// Recommendation is the suggested order for a single under-target item.
type Recommendation struct {
	ItemID        string          `json:"item_id"`
	OrderQuantity int             `json:"order_quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	LineCost      decimal.Decimal `json:"line_cost"`
}

// Plan is the result of one evaluation. Recommendations keep the snapshot
// order and contain only items with a positive order quantity.
type Plan struct {
	Recommendations []Recommendation `json:"recommendations"`
	TotalCost       decimal.Decimal  `json:"total_cost"`
}

func validateItem(item Item) error {
	if item.Stock < 0 {
		return fmt.Errorf("%w: item %s has negative stock %d", ErrInvalidItem, item.ID, item.Stock)
	}
	if item.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: item %s has negative unit price %s", ErrInvalidItem, item.ID, item.UnitPrice)
	}
	return nil
}

// EvaluateReorder computes the restocking plan for a snapshot. For each item
// the order quantity is max(0, targetLevel-stock); items already at or above
// the target are excluded. Negative stock or price fails the whole
// evaluation: a corrupt record is an upstream data problem that must not be
// masked by clamping or partial results.
func EvaluateReorder(items []Item, policy Policy) (Plan, error) {
	if err := policy.Validate(); err != nil {
		return Plan{}, err
	}

	plan := Plan{
		Recommendations: []Recommendation{},
		TotalCost:       decimal.Zero,
	}

	for _, item := range items {
		if err := validateItem(item); err != nil {
			return Plan{}, err
		}

		qty := policy.TargetLevel - item.Stock
		if qty <= 0 {
			continue
		}

		lineCost := item.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
		plan.Recommendations = append(plan.Recommendations, Recommendation{
			ItemID:        item.ID,
			OrderQuantity: qty,
			UnitPrice:     item.UnitPrice,
			LineCost:      lineCost,
		})
		plan.TotalCost = plan.TotalCost.Add(lineCost)
	}

	return plan, nil
}

// ApplyRestock returns a new snapshot with each recommended item's stock
// raised by its order quantity; items without a recommendation pass through
// unchanged. Recommendations are single-use: they are only valid against the
// snapshot they were derived from, so callers must re-run EvaluateReorder
// before applying again. Applying a stale plan twice double-adds stock.
func ApplyRestock(items []Item, recommendations []Recommendation) []Item {
	ordered := make(map[string]int, len(recommendations))
	for _, rec := range recommendations {
		if rec.OrderQuantity > 0 {
			ordered[rec.ItemID] = rec.OrderQuantity
		}
	}

	updated := make([]Item, len(items))
	for i, item := range items {
		if qty, ok := ordered[item.ID]; ok {
			item.Stock += qty
		}
		updated[i] = item
	}
	return updated
}
