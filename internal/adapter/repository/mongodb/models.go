package mongodb

import (
	"time"

	"github.com/54ba/midostore-sub004/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	baseProductsCollection = "base_products"
	listingsCollection     = "seller_listings"
	sellersCollection      = "sellers"
	interactionsCollection = "user_interactions"
	preferencesCollection  = "buyer_preferences"
)

// buyerProductDocument is the shape produced by the buyer-product
// aggregation pipelines. sold_count and listing_created_at are carried
// through the projection only so the sort stages can use them; the
// discount is derived from original and selling price in toDomain.
type buyerProductDocument struct {
	ListingID         string    `bson:"listing_id"`
	SellerID          string    `bson:"seller_id"`
	BaseProductID     string    `bson:"base_product_id"`
	SellerName        string    `bson:"seller_name"`
	SellerLogo        string    `bson:"seller_logo"`
	SellerRating      float64   `bson:"seller_rating"`
	Title             string    `bson:"title"`
	Description       string    `bson:"description"`
	Images            []string  `bson:"images"`
	SellingPrice      float64   `bson:"selling_price"`
	Currency          string    `bson:"currency"`
	OriginalPrice     float64   `bson:"original_price"`
	AvailableStock    int32     `bson:"available_stock"`
	ShippingCost      float64   `bson:"shipping_cost"`
	EstimatedDelivery string    `bson:"estimated_delivery"`
	Rating            float64   `bson:"rating"`
	ReviewCount       int32     `bson:"review_count"`
	SoldCount         int64     `bson:"sold_count"`
	IsInStock         bool      `bson:"is_in_stock"`
	IsFeatured        bool      `bson:"is_featured"`
	ListingCreatedAt  time.Time `bson:"listing_created_at"`
}

func (d *buyerProductDocument) toDomain() *domain.BuyerProduct {
	return &domain.BuyerProduct{
		ListingID:         d.ListingID,
		SellerID:          d.SellerID,
		BaseProductID:     d.BaseProductID,
		SellerName:        d.SellerName,
		SellerLogo:        d.SellerLogo,
		SellerRating:      d.SellerRating,
		Title:             d.Title,
		Description:       d.Description,
		Images:            d.Images,
		SellingPrice:      d.SellingPrice,
		Currency:          d.Currency,
		OriginalPrice:     d.OriginalPrice,
		Discount:          domain.Discount(d.OriginalPrice, d.SellingPrice),
		AvailableStock:    d.AvailableStock,
		ShippingCost:      d.ShippingCost,
		EstimatedDelivery: d.EstimatedDelivery,
		Rating:            d.Rating,
		ReviewCount:       d.ReviewCount,
		IsInStock:         d.IsInStock,
		IsFeatured:        d.IsFeatured,
	}
}

type baseProductDocument struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	Images      []string  `bson:"images"`
	BasePrice   float64   `bson:"base_price"`
	Category    string    `bson:"category"`
	Tags        []string  `bson:"tags"`
	Rating      float64   `bson:"rating"`
	ReviewCount int32     `bson:"review_count"`
	SoldCount   int64     `bson:"sold_count"`
	IsActive    bool      `bson:"is_active"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (d *baseProductDocument) toDomain() *domain.BaseProduct {
	return &domain.BaseProduct{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Images:      d.Images,
		BasePrice:   d.BasePrice,
		Category:    d.Category,
		Tags:        d.Tags,
		Rating:      d.Rating,
		ReviewCount: d.ReviewCount,
		SoldCount:   d.SoldCount,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type sellerListingDocument struct {
	ID                string    `bson:"_id"`
	SellerID          string    `bson:"seller_id"`
	BaseProductID     string    `bson:"base_product_id"`
	SellingPrice      float64   `bson:"selling_price"`
	Currency          string    `bson:"currency"`
	AvailableStock    int32     `bson:"available_stock"`
	ShippingCost      float64   `bson:"shipping_cost"`
	EstimatedDelivery string    `bson:"estimated_delivery"`
	CustomTitle       *string   `bson:"custom_title,omitempty"`
	CustomDescription *string   `bson:"custom_description,omitempty"`
	CustomImages      []string  `bson:"custom_images,omitempty"`
	IsFeatured        bool      `bson:"is_featured"`
	IsActive          bool      `bson:"is_active"`
	Views             int64     `bson:"views"`
	CreatedAt         time.Time `bson:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at"`
}

func (d *sellerListingDocument) toDomain() *domain.SellerListing {
	return &domain.SellerListing{
		ID:                d.ID,
		SellerID:          d.SellerID,
		BaseProductID:     d.BaseProductID,
		SellingPrice:      d.SellingPrice,
		Currency:          d.Currency,
		AvailableStock:    d.AvailableStock,
		ShippingCost:      d.ShippingCost,
		EstimatedDelivery: d.EstimatedDelivery,
		CustomTitle:       d.CustomTitle,
		CustomDescription: d.CustomDescription,
		CustomImages:      d.CustomImages,
		IsFeatured:        d.IsFeatured,
		IsActive:          d.IsActive,
		Views:             d.Views,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

type sellerDocument struct {
	ID            string    `bson:"_id"`
	BusinessName  string    `bson:"business_name"`
	Logo          string    `bson:"logo"`
	AverageRating float64   `bson:"average_rating"`
	TotalSales    int64     `bson:"total_sales"`
	IsVerified    bool      `bson:"is_verified"`
	IsActive      bool      `bson:"is_active"`
	CreatedAt     time.Time `bson:"created_at"`
}

func (d *sellerDocument) toDomain() *domain.SellerProfile {
	return &domain.SellerProfile{
		ID:            d.ID,
		BusinessName:  d.BusinessName,
		Logo:          d.Logo,
		AverageRating: d.AverageRating,
		TotalSales:    d.TotalSales,
		IsVerified:    d.IsVerified,
		IsActive:      d.IsActive,
		CreatedAt:     d.CreatedAt,
	}
}

type interactionDocument struct {
	UserID        string    `bson:"user_id"`
	BaseProductID string    `bson:"base_product_id"`
	Type          string    `bson:"type"`
	Timestamp     time.Time `bson:"timestamp"`
}

func (d *interactionDocument) toDomain() *domain.UserInteraction {
	return &domain.UserInteraction{
		UserID:        d.UserID,
		BaseProductID: d.BaseProductID,
		Type:          domain.InteractionType(d.Type),
		Timestamp:     d.Timestamp,
	}
}

type preferencesDocument struct {
	UserID              string                     `bson:"user_id"`
	PreferredCategories []string                   `bson:"preferred_categories"`
	PriceRange          domain.PriceRange          `bson:"price_range"`
	PreferredSellers    []string                   `bson:"preferred_sellers"`
	Shipping            domain.ShippingPreferences `bson:"shipping"`
	CreatedAt           time.Time                  `bson:"created_at"`
	UpdatedAt           time.Time                  `bson:"updated_at"`
}

func (d *preferencesDocument) toDomain() *domain.BuyerPreferences {
	return &domain.BuyerPreferences{
		UserID:              d.UserID,
		PreferredCategories: d.PreferredCategories,
		PriceRange:          d.PriceRange,
		PreferredSellers:    d.PreferredSellers,
		Shipping:            d.Shipping,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

// buyerProductProjection shapes the joined base-product/listing/seller
// stream into buyerProductDocument. The discount is deliberately not
// computed in the pipeline: deriving it from original_price and
// selling_price in toDomain keeps a single implementation of the
// zero-base-price guard, in domain.Discount.
func buyerProductProjection() bson.M {
	return bson.M{
		"_id":                0,
		"listing_id":         "$listing._id",
		"seller_id":          "$listing.seller_id",
		"base_product_id":    "$_id",
		"seller_name":        "$seller.business_name",
		"seller_logo":        "$seller.logo",
		"seller_rating":      "$seller.average_rating",
		"title":              bson.M{"$ifNull": bson.A{"$listing.custom_title", "$title"}},
		"description":        bson.M{"$ifNull": bson.A{"$listing.custom_description", "$description"}},
		"images":             bson.M{"$ifNull": bson.A{"$listing.custom_images", "$images"}},
		"selling_price":      "$listing.selling_price",
		"currency":           "$listing.currency",
		"original_price":     "$base_price",
		"available_stock":    "$listing.available_stock",
		"shipping_cost":      "$listing.shipping_cost",
		"estimated_delivery": "$listing.estimated_delivery",
		"rating":             "$rating",
		"review_count":       "$review_count",
		"sold_count":         "$sold_count",
		"is_in_stock":        bson.M{"$gt": bson.A{"$listing.available_stock", 0}},
		"is_featured":        "$listing.is_featured",
		"listing_created_at": "$listing.created_at",
	}
}

// buyerProductPipeline builds the shared join stages: base products that
// match productMatch, inner-joined to listings matching listingMatch,
// inner-joined to active, verified sellers, projected to
// buyerProductDocument. Sort/skip/limit stages are appended by the caller.
func buyerProductPipeline(productMatch, listingMatch bson.M) []bson.M {
	return []bson.M{
		{"$match": productMatch},
		{"$lookup": bson.M{
			"from":         listingsCollection,
			"localField":   "_id",
			"foreignField": "base_product_id",
			"as":           "listing",
		}},
		{"$unwind": "$listing"},
		{"$match": listingMatch},
		{"$lookup": bson.M{
			"from":         sellersCollection,
			"localField":   "listing.seller_id",
			"foreignField": "_id",
			"as":           "seller",
		}},
		{"$unwind": "$seller"},
		{"$match": bson.M{"seller.is_active": true, "seller.is_verified": true}},
		{"$project": buyerProductProjection()},
	}
}

// sortStage maps a SortOrder to its pipeline sort document. Popularity is
// a two-key sort: sold count descending, then rating descending as the
// tie breaker between equally sold products.
func sortStage(s domain.SortOrder) bson.D {
	switch s {
	case domain.SortPriceLow:
		return bson.D{{Key: "selling_price", Value: 1}}
	case domain.SortPriceHigh:
		return bson.D{{Key: "selling_price", Value: -1}}
	case domain.SortRating:
		return bson.D{{Key: "rating", Value: -1}}
	case domain.SortNewest:
		return bson.D{{Key: "listing_created_at", Value: -1}}
	default:
		return bson.D{{Key: "sold_count", Value: -1}, {Key: "rating", Value: -1}}
	}
}

// ratingSort is the fixed ranking for search and recommendation results.
func ratingSort() bson.D {
	return bson.D{{Key: "rating", Value: -1}, {Key: "sold_count", Value: -1}}
}
