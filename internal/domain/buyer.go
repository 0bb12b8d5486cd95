package domain

import "time"

// --- User Interactions ---

// InteractionType classifies a buyer action against a base product.
type InteractionType string

const (
	InteractionView     InteractionType = "VIEW"
	InteractionLike     InteractionType = "LIKE"
	InteractionCart     InteractionType = "CART"
	InteractionPurchase InteractionType = "PURCHASE"
)

// IsValid checks if the InteractionType is one of the defined constants.
func (t InteractionType) IsValid() bool {
	switch t {
	case InteractionView, InteractionLike, InteractionCart, InteractionPurchase:
		return true
	}
	return false
}

// UserInteraction records the most recent occurrence of one interaction
// type for a (user, product) pair. It is keyed, not appended: a repeated
// event of the same type overwrites the timestamp rather than adding a row.
type UserInteraction struct {
	UserID        string          `json:"userId"`
	BaseProductID string          `json:"baseProductId"`
	Type          InteractionType `json:"type"`
	Timestamp     time.Time       `json:"timestamp"`
}

// --- Buyer Preferences ---

// PriceRange bounds a buyer's preferred spend in a single currency.
type PriceRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

// ShippingPreferences captures a buyer's delivery expectations.
type ShippingPreferences struct {
	FreeShippingOnly      bool    `json:"freeShippingOnly"`
	MaxShippingCost       float64 `json:"maxShippingCost"`
	PreferredDeliveryTime string  `json:"preferredDeliveryTime"`
}

// BuyerPreferences is the single per-user preference document.
type BuyerPreferences struct {
	UserID              string              `json:"userId"`
	PreferredCategories []string            `json:"preferredCategories"`
	PriceRange          PriceRange          `json:"priceRange"`
	PreferredSellers    []string            `json:"preferredSellers"`
	Shipping            ShippingPreferences `json:"shipping"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
}

// PreferencesUpdate is a partial update: only non-nil fields are written,
// previously stored values for other fields are left untouched.
type PreferencesUpdate struct {
	PreferredCategories *[]string            `json:"preferredCategories"`
	PriceRange          *PriceRange          `json:"priceRange"`
	PreferredSellers    *[]string            `json:"preferredSellers"`
	Shipping            *ShippingPreferences `json:"shipping"`
}

// IsEmpty reports whether the update carries no fields at all.
func (u PreferencesUpdate) IsEmpty() bool {
	return u.PreferredCategories == nil && u.PriceRange == nil &&
		u.PreferredSellers == nil && u.Shipping == nil
}
