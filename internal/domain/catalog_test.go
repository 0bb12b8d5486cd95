package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscount(t *testing.T) {
	testCases := []struct {
		name         string
		basePrice    float64
		sellingPrice float64
		expected     float64
	}{
		{"cheaper listing gets a discount", 100, 80, 20},
		{"equal price means no discount", 100, 100, 0},
		{"more expensive listing clamps to zero", 100, 120, 0},
		{"zero base price is guarded", 0, 50, 0},
		{"negative base price is guarded", -10, 5, 0},
		{"free listing against priced base", 50, 0, 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, Discount(tc.basePrice, tc.sellingPrice), 1e-9)
		})
	}
}

func TestParseSortOrder(t *testing.T) {
	for _, valid := range []string{"popularity", "price_low", "price_high", "rating", "newest"} {
		order, known := ParseSortOrder(valid)
		assert.True(t, known, "expected %q to be recognized", valid)
		assert.Equal(t, SortOrder(valid), order)
	}

	order, known := ParseSortOrder("cheapest_first")
	assert.False(t, known)
	assert.Equal(t, SortPopularity, order)

	order, known = ParseSortOrder("")
	assert.False(t, known)
	assert.Equal(t, SortPopularity, order)
}

func TestInteractionTypeIsValid(t *testing.T) {
	assert.True(t, InteractionView.IsValid())
	assert.True(t, InteractionLike.IsValid())
	assert.True(t, InteractionCart.IsValid())
	assert.True(t, InteractionPurchase.IsValid())
	assert.False(t, InteractionType("view").IsValid())
	assert.False(t, InteractionType("FAVORITE").IsValid())
	assert.False(t, InteractionType("").IsValid())
}

func TestPreferencesUpdateIsEmpty(t *testing.T) {
	assert.True(t, PreferencesUpdate{}.IsEmpty())

	categories := []string{"electronics"}
	assert.False(t, PreferencesUpdate{PreferredCategories: &categories}.IsEmpty())

	pr := PriceRange{Min: 10, Max: 200, Currency: "USD"}
	assert.False(t, PreferencesUpdate{PriceRange: &pr}.IsEmpty())
}
