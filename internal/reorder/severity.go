package reorder

// Severity classifies how urgently an item needs restocking. The values
// form a total order: SeverityNormal < SeverityWarning < SeverityCritical.
type Severity int

const (
	SeverityNormal Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return "normal"
	}
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Alert flags one item sitting below the low-stock threshold.
type Alert struct {
	ItemID       string   `json:"item_id"`
	Name         string   `json:"name"`
	CurrentStock int      `json:"current_stock"`
	Threshold    int      `json:"threshold"`
	Severity     Severity `json:"severity"`
}

// Classify returns the severity for a single stock level. It is total:
// defined for every stock value, including items that never surface as
// alerts. The threshold boundary is inclusive, stock == threshold is normal.
func Classify(stock int, policy Policy) Severity {
	if stock >= policy.LowStockThreshold {
		return SeverityNormal
	}
	if float64(stock) < float64(policy.LowStockThreshold)*policy.CriticalRatio {
		return SeverityCritical
	}
	return SeverityWarning
}

// ClassifyLowStock returns alerts for every item below the low-stock
// threshold, in snapshot order. Healthy items produce no alert.
func ClassifyLowStock(items []Item, policy Policy) ([]Alert, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	alerts := []Alert{}
	for _, item := range items {
		if err := validateItem(item); err != nil {
			return nil, err
		}

		severity := Classify(item.Stock, policy)
		if severity == SeverityNormal {
			continue
		}

		alerts = append(alerts, Alert{
			ItemID:       item.ID,
			Name:         item.Name,
			CurrentStock: item.Stock,
			Threshold:    policy.LowStockThreshold,
			Severity:     severity,
		})
	}
	return alerts, nil
}
