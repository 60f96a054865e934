package reorder

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyBoundaries(t *testing.T) {
	policy := testPolicy() // threshold 10, ratio 0.5

	assert.Equal(t, SeverityNormal, Classify(10, policy), "stock == threshold is normal")
	assert.Equal(t, SeverityNormal, Classify(50, policy))
	assert.Equal(t, SeverityWarning, Classify(9, policy))
	assert.Equal(t, SeverityWarning, Classify(5, policy), "stock == critical cut is warning")
	assert.Equal(t, SeverityCritical, Classify(4, policy))
	assert.Equal(t, SeverityCritical, Classify(0, policy))
}

func TestClassifyMonotonicity(t *testing.T) {
	policy := Policy{TargetLevel: 50, LowStockThreshold: 40, CriticalRatio: 0.8}

	previous := Classify(60, policy)
	for stock := 59; stock >= 0; stock-- {
		current := Classify(stock, policy)
		assert.GreaterOrEqual(t, current, previous, "severity must never decrease as stock falls (stock=%d)", stock)
		previous = current
	}
}

func TestClassifyLowStock(t *testing.T) {
	items := []Item{
		{ID: "1", Name: "Sony Headphones", Stock: 4, UnitPrice: decimal.NewFromInt(299)},
		{ID: "2", Name: "Dell XPS", Stock: 8, UnitPrice: decimal.NewFromInt(999)},
		{ID: "3", Name: "iPhone 15", Stock: 45, UnitPrice: decimal.NewFromInt(1800)},
	}

	alerts, err := ClassifyLowStock(items, testPolicy())
	require.NoError(t, err)

	require.Len(t, alerts, 2, "healthy items must not surface as alerts")

	assert.Equal(t, "1", alerts[0].ItemID)
	assert.Equal(t, 4, alerts[0].CurrentStock)
	assert.Equal(t, 10, alerts[0].Threshold)
	assert.Equal(t, SeverityCritical, alerts[0].Severity)

	assert.Equal(t, "2", alerts[1].ItemID)
	assert.Equal(t, SeverityWarning, alerts[1].Severity)
}

func TestClassifyLowStockEmptySnapshot(t *testing.T) {
	alerts, err := ClassifyLowStock(nil, testPolicy())
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestClassifyLowStockValidation(t *testing.T) {
	_, err := ClassifyLowStock([]Item{{ID: "1", Stock: 5}}, Policy{TargetLevel: 50, LowStockThreshold: -1, CriticalRatio: 0.5})
	assert.ErrorIs(t, err, ErrInvalidPolicy)

	_, err = ClassifyLowStock([]Item{{ID: "1", Stock: -2}}, testPolicy())
	assert.ErrorIs(t, err, ErrInvalidItem)
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "normal", SeverityNormal.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "critical", SeverityCritical.String())
}
