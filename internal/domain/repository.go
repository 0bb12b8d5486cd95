package domain

import (
	"context"
	"time"
)

// CatalogQuery holds pagination and ranking parameters for catalog reads.
type CatalogQuery struct {
	Limit  int64
	Offset int64
	Sort   SortOrder
}

// CatalogRepository is the read side of the catalog: it joins base
// products, seller listings and seller profiles into BuyerProduct views.
// Every method enforces the verification gate: a listing is only visible
// when its seller is both active and verified.
type CatalogRepository interface {
	FindByCategory(ctx context.Context, category string, q CatalogQuery) ([]*BuyerProduct, error)

	// FindByCategories powers recommendations: any of the given categories,
	// ranked by rating then sold count. An empty category set yields an
	// empty result, not all products.
	FindByCategories(ctx context.Context, categories []string, limit int64) ([]*BuyerProduct, error)

	// Search matches the query case-insensitively against base product
	// title, description and tags. Results are ranked by rating then sold
	// count; the order is not caller-configurable.
	Search(ctx context.Context, query string, limit, offset int64) ([]*BuyerProduct, error)

	// FindFeatured returns featured, active listings sorted by listing
	// creation time descending.
	FindFeatured(ctx context.Context, limit int64) ([]*BuyerProduct, error)

	// FindBySeller fails closed: an inactive or unverified seller resolves
	// to an empty slice even when active listings exist.
	FindBySeller(ctx context.Context, sellerID string, limit, offset int64) ([]*BuyerProduct, error)

	// GetComparison returns nil (no error) when the base product does not
	// exist or has no active listings from verified sellers.
	GetComparison(ctx context.Context, baseProductID string) (*ProductComparison, error)

	// Categories returns the distinct non-empty categories of active base
	// products.
	Categories(ctx context.Context) ([]string, error)

	// CategoriesForProducts returns the distinct non-empty categories of
	// the given base products.
	CategoriesForProducts(ctx context.Context, productIDs []string) ([]string, error)

	// TopSellers returns active, verified sellers ranked by total sales
	// then average rating.
	TopSellers(ctx context.Context, limit int64) ([]*SellerProfile, error)
}

// InteractionRepository persists buyer interaction signals.
type InteractionRepository interface {
	// Record upserts the (user, product, type) key with the given
	// timestamp. Last-seen semantics: repeats overwrite, they do not count.
	Record(ctx context.Context, userID, baseProductID string, t InteractionType, at time.Time) error

	// IncrementListingViews bumps the view counter of one listing for the
	// base product. A product without listings is a no-op.
	IncrementListingViews(ctx context.Context, baseProductID string) error

	// RecentByUser returns the user's interactions, newest first.
	RecentByUser(ctx context.Context, userID string, limit int64) ([]*UserInteraction, error)
}

// PreferenceRepository stores the single BuyerPreferences document per user.
type PreferenceRepository interface {
	// Get returns nil (no error) when the user has no stored preferences.
	Get(ctx context.Context, userID string) (*BuyerPreferences, error)

	// Upsert applies a partial update, creating the document when missing.
	// Returns true when a document was modified or newly created.
	Upsert(ctx context.Context, userID string, update PreferencesUpdate) (bool, error)
}
