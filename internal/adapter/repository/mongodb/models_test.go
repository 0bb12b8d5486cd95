package mongodb

import (
	"testing"
	"time"

	"github.com/54ba/midostore-sub004/internal/domain"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBuyerProductToDomain_DerivesDiscount(t *testing.T) {
	doc := buyerProductDocument{
		ListingID:     "l1",
		BaseProductID: "bp1",
		OriginalPrice: 100,
		SellingPrice:  80,
	}
	assert.InDelta(t, 20.0, doc.toDomain().Discount, 1e-9)

	doc.SellingPrice = 100
	assert.Zero(t, doc.toDomain().Discount)

	doc.SellingPrice = 120
	assert.Zero(t, doc.toDomain().Discount, "listing above base price clamps to zero")

	doc.OriginalPrice = 0
	doc.SellingPrice = 5
	assert.Zero(t, doc.toDomain().Discount, "zero base price must not divide")
}

func TestListingToDomain_CarriesOverridesAndCounters(t *testing.T) {
	custom := "Custom Title"
	now := time.Now().UTC()
	doc := sellerListingDocument{
		ID:            "l1",
		SellerID:      "s1",
		BaseProductID: "bp1",
		SellingPrice:  80,
		CustomTitle:   &custom,
		Views:         7,
		IsActive:      true,
		CreatedAt:     now,
	}

	listing := doc.toDomain()
	assert.Equal(t, "l1", listing.ID)
	assert.Equal(t, &custom, listing.CustomTitle)
	assert.Nil(t, listing.CustomDescription)
	assert.Equal(t, int64(7), listing.Views)
	assert.Equal(t, now, listing.CreatedAt)
}

func TestSortStage_PopularityUsesRatingAsTieBreaker(t *testing.T) {
	stage := sortStage(domain.SortPopularity)
	assert.Equal(t, bson.D{
		{Key: "sold_count", Value: -1},
		{Key: "rating", Value: -1},
	}, stage)

	// unknown orders are normalized before the repository is reached,
	// but the stage itself also defaults to popularity
	assert.Equal(t, stage, sortStage(domain.SortOrder("whatever")))

	assert.Equal(t, bson.D{{Key: "selling_price", Value: 1}}, sortStage(domain.SortPriceLow))
	assert.Equal(t, bson.D{{Key: "selling_price", Value: -1}}, sortStage(domain.SortPriceHigh))
	assert.Equal(t, bson.D{{Key: "listing_created_at", Value: -1}}, sortStage(domain.SortNewest))
}
