package reorder

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func testPolicy() Policy {
	return Policy{TargetLevel: 50, LowStockThreshold: 10, CriticalRatio: 0.5}
}

func TestEvaluateReorder(t *testing.T) {
	items := []Item{
		{ID: "1", Name: "Sony Headphones", Stock: 5, UnitPrice: price(299)},
		{ID: "2", Name: "Dell XPS", Stock: 50, UnitPrice: price(999)},
		{ID: "3", Name: "iPhone 15", Stock: 45, UnitPrice: price(1800)},
	}

	plan, err := EvaluateReorder(items, testPolicy())
	require.NoError(t, err)

	require.Len(t, plan.Recommendations, 2)

	assert.Equal(t, "1", plan.Recommendations[0].ItemID)
	assert.Equal(t, 45, plan.Recommendations[0].OrderQuantity)
	assert.True(t, plan.Recommendations[0].LineCost.Equal(price(13455)))

	assert.Equal(t, "3", plan.Recommendations[1].ItemID)
	assert.Equal(t, 5, plan.Recommendations[1].OrderQuantity)
	assert.True(t, plan.Recommendations[1].LineCost.Equal(price(9000)))

	assert.True(t, plan.TotalCost.Equal(price(22455)))
}

func TestEvaluateReorderExcludesHealthyItems(t *testing.T) {
	items := []Item{
		{ID: "at-target", Stock: 50, UnitPrice: price(10)},
		{ID: "above-target", Stock: 80, UnitPrice: price(10)},
	}

	plan, err := EvaluateReorder(items, testPolicy())
	require.NoError(t, err)

	assert.Empty(t, plan.Recommendations)
	assert.True(t, plan.TotalCost.IsZero())
}

func TestEvaluateReorderEmptySnapshot(t *testing.T) {
	plan, err := EvaluateReorder([]Item{}, testPolicy())
	require.NoError(t, err)

	assert.Empty(t, plan.Recommendations)
	assert.True(t, plan.TotalCost.IsZero())

	plan, err = EvaluateReorder(nil, testPolicy())
	require.NoError(t, err)
	assert.Empty(t, plan.Recommendations)
	assert.True(t, plan.TotalCost.IsZero())
}

func TestEvaluateReorderOrderQuantityNeverNegative(t *testing.T) {
	for stock := 0; stock <= 120; stock += 5 {
		plan, err := EvaluateReorder([]Item{{ID: "x", Stock: stock, UnitPrice: price(7)}}, testPolicy())
		require.NoError(t, err)

		if stock >= 50 {
			assert.Empty(t, plan.Recommendations, "stock %d should need no order", stock)
		} else {
			require.Len(t, plan.Recommendations, 1)
			assert.Equal(t, 50-stock, plan.Recommendations[0].OrderQuantity)
			assert.Greater(t, plan.Recommendations[0].OrderQuantity, 0)
		}
	}
}

func TestEvaluateReorderIsDeterministic(t *testing.T) {
	items := []Item{
		{ID: "1", Stock: 12, UnitPrice: decimal.RequireFromString("19.99")},
		{ID: "2", Stock: 3, UnitPrice: decimal.RequireFromString("4.25")},
	}

	first, err := EvaluateReorder(items, testPolicy())
	require.NoError(t, err)
	second, err := EvaluateReorder(items, testPolicy())
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestEvaluateReorderDoesNotMutateInput(t *testing.T) {
	items := []Item{{ID: "1", Stock: 5, UnitPrice: price(299)}}

	_, err := EvaluateReorder(items, testPolicy())
	require.NoError(t, err)

	assert.Equal(t, 5, items[0].Stock)
	assert.True(t, items[0].UnitPrice.Equal(price(299)))
}

func TestEvaluateReorderInvalidPolicy(t *testing.T) {
	items := []Item{{ID: "1", Stock: 5, UnitPrice: price(10)}}

	_, err := EvaluateReorder(items, Policy{TargetLevel: -1, LowStockThreshold: 10, CriticalRatio: 0.5})
	assert.ErrorIs(t, err, ErrInvalidPolicy)

	_, err = EvaluateReorder(items, Policy{TargetLevel: 50, LowStockThreshold: -3, CriticalRatio: 0.5})
	assert.ErrorIs(t, err, ErrInvalidPolicy)

	_, err = EvaluateReorder(items, Policy{TargetLevel: 50, LowStockThreshold: 10, CriticalRatio: 0})
	assert.ErrorIs(t, err, ErrInvalidPolicy)

	_, err = EvaluateReorder(items, Policy{TargetLevel: 50, LowStockThreshold: 10, CriticalRatio: 1.5})
	assert.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestEvaluateReorderInvalidItem(t *testing.T) {
	_, err := EvaluateReorder([]Item{{ID: "bad", Stock: -5, UnitPrice: price(10)}}, testPolicy())
	assert.ErrorIs(t, err, ErrInvalidItem)

	_, err = EvaluateReorder([]Item{{ID: "bad", Stock: 5, UnitPrice: price(-1)}}, testPolicy())
	assert.ErrorIs(t, err, ErrInvalidItem)
}

func TestApplyRestockRoundTrip(t *testing.T) {
	policy := testPolicy()
	items := []Item{
		{ID: "1", Stock: 5, UnitPrice: price(299)},
		{ID: "2", Stock: 50, UnitPrice: price(999)},
		{ID: "3", Stock: 45, UnitPrice: price(1800)},
		{ID: "4", Stock: 72, UnitPrice: price(15)},
	}

	plan, err := EvaluateReorder(items, policy)
	require.NoError(t, err)

	updated := ApplyRestock(items, plan.Recommendations)
	require.Len(t, updated, len(items))

	for i, item := range updated {
		if items[i].Stock < policy.TargetLevel {
			assert.Equal(t, policy.TargetLevel, item.Stock, "item %s should land on the target level", item.ID)
		} else {
			assert.Equal(t, items[i].Stock, item.Stock, "item %s should be untouched", item.ID)
		}
	}

	// Input snapshot stays intact.
	assert.Equal(t, 5, items[0].Stock)

	// A fresh evaluation over the restocked snapshot finds nothing to order.
	plan, err = EvaluateReorder(updated, policy)
	require.NoError(t, err)
	assert.Empty(t, plan.Recommendations)
}

func TestApplyRestockIgnoresUnknownRecommendations(t *testing.T) {
	items := []Item{{ID: "1", Stock: 20, UnitPrice: price(5)}}
	recs := []Recommendation{
		{ItemID: "ghost", OrderQuantity: 30},
		{ItemID: "1", OrderQuantity: 0},
	}

	updated := ApplyRestock(items, recs)
	assert.Equal(t, 20, updated[0].Stock)
}

func TestApplyRestockAddsOrderQuantity(t *testing.T) {
	items := []Item{{ID: "1", Stock: 10, UnitPrice: price(5)}}
	recs := []Recommendation{{ItemID: "1", OrderQuantity: 40}}

	updated := ApplyRestock(items, recs)
	assert.Equal(t, 50, updated[0].Stock)
}
