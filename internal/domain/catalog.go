package domain

import "time"

// --- Sort Orders ---

// SortOrder selects the ranking applied to category queries.
type SortOrder string

const (
	SortPopularity SortOrder = "popularity"
	SortPriceLow   SortOrder = "price_low"
	SortPriceHigh  SortOrder = "price_high"
	SortRating     SortOrder = "rating"
	SortNewest     SortOrder = "newest"
)

// ParseSortOrder maps a caller-supplied sort key to a SortOrder.
// Unknown values fall back to SortPopularity; the second return value
// tells the caller whether the input was recognized, so the fallback
// can be logged instead of silently swallowed.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(s) {
	case SortPopularity, SortPriceLow, SortPriceHigh, SortRating, SortNewest:
		return SortOrder(s), true
	}
	return SortPopularity, false
}

// --- Catalog Entities ---

// BaseProduct is the canonical, seller-agnostic catalog entry. It is owned
// by catalog administrators and read-only from the buyer flow.
type BaseProduct struct {
	ID          string
	Title       string
	Description string
	Images      []string
	BasePrice   float64
	Category    string
	Tags        []string
	Rating      float64
	ReviewCount int32
	SoldCount   int64
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SellerListing is one seller's priced, stocked offer against a BaseProduct.
// Custom title/description/images, when set, override the base product's.
type SellerListing struct {
	ID                string
	SellerID          string
	BaseProductID     string
	SellingPrice      float64
	Currency          string
	AvailableStock    int32
	ShippingCost      float64
	EstimatedDelivery string
	CustomTitle       *string
	CustomDescription *string
	CustomImages      []string
	IsFeatured        bool
	IsActive          bool
	Views             int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SellerProfile is a seller's public identity and trust signals.
type SellerProfile struct {
	ID            string    `json:"id"`
	BusinessName  string    `json:"businessName"`
	Logo          string    `json:"logo"`
	AverageRating float64   `json:"averageRating"`
	TotalSales    int64     `json:"totalSales"`
	IsVerified    bool      `json:"isVerified"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
}

// --- Derived Views ---

// BuyerProduct is the flattened projection consumed by buyer surfaces:
// base product fields (with listing overrides preferred), computed discount
// and stock flags, and seller display fields. It is never persisted.
type BuyerProduct struct {
	ListingID         string   `json:"listingId"`
	SellerID          string   `json:"sellerId"`
	BaseProductID     string   `json:"baseProductId"`
	SellerName        string   `json:"sellerName"`
	SellerLogo        string   `json:"sellerLogo"`
	SellerRating      float64  `json:"sellerRating"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Images            []string `json:"images"`
	SellingPrice      float64  `json:"sellingPrice"`
	Currency          string   `json:"currency"`
	OriginalPrice     float64  `json:"originalPrice"`
	Discount          float64  `json:"discount"`
	AvailableStock    int32    `json:"availableStock"`
	ShippingCost      float64  `json:"shippingCost"`
	EstimatedDelivery string   `json:"estimatedDelivery"`
	Rating            float64  `json:"rating"`
	ReviewCount       int32    `json:"reviewCount"`
	IsInStock         bool     `json:"isInStock"`
	IsFeatured        bool     `json:"isFeatured"`
}

// SellerOffer is one seller's entry inside a ProductComparison.
type SellerOffer struct {
	SellerID          string  `json:"sellerId"`
	SellerName        string  `json:"sellerName"`
	SellerLogo        string  `json:"sellerLogo"`
	SellerRating      float64 `json:"sellerRating"`
	SellingPrice      float64 `json:"sellingPrice"`
	ShippingCost      float64 `json:"shippingCost"`
	TotalPrice        float64 `json:"totalPrice"`
	EstimatedDelivery string  `json:"estimatedDelivery"`
	AvailableStock    int32   `json:"availableStock"`
}

// ProductComparison lists every verified seller's offer for one base
// product, sorted ascending by total price (selling + shipping).
type ProductComparison struct {
	BaseProductID string        `json:"baseProductId"`
	Title         string        `json:"title"`
	Images        []string      `json:"images"`
	Offers        []SellerOffer `json:"offers"`
}

// Discount computes the percentage discount of a listing price against the
// base price. Clamped to 0 when the listing is not cheaper, and guarded
// against a zero or negative base price so it can never return NaN/Inf.
func Discount(basePrice, sellingPrice float64) float64 {
	if basePrice <= 0 || sellingPrice >= basePrice {
		return 0
	}
	return (basePrice - sellingPrice) / basePrice * 100
}
