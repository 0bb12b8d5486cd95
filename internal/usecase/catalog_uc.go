package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/54ba/midostore-sub004/internal/domain"
	"github.com/54ba/midostore-sub004/internal/platform/logger"
	"github.com/54ba/midostore-sub004/internal/platform/metrics"
	"github.com/54ba/midostore-sub004/internal/port/cache"
	"go.uber.org/zap"
)

const (
	defaultCategoryLimit = 50
	defaultSearchLimit   = 50
	defaultFeaturedLimit = 20
	defaultSellersLimit  = 10
	maxPageLimit         = 100

	featuredCacheKey   = "catalog:featured"
	categoriesCacheKey = "catalog:categories"
	topSellersCacheKey = "catalog:top_sellers"
)

// CatalogUsecase serves the public catalog surface: category browsing,
// search, featured products, per-seller storefronts, price comparison and
// the category/seller directories. Directory-style reads go through the
// cache; paginated reads always hit the repository.
type CatalogUsecase struct {
	catalogRepo domain.CatalogRepository
	cache       cache.CacheRepository
	metrics     *metrics.MetricsManager
	logger      *logger.Logger
	cacheTTL    time.Duration
}

func NewCatalogUsecase(
	catalogRepo domain.CatalogRepository,
	cacheRepo cache.CacheRepository,
	mm *metrics.MetricsManager,
	log *logger.Logger,
	cacheTTL time.Duration,
) *CatalogUsecase {
	return &CatalogUsecase{
		catalogRepo: catalogRepo,
		cache:       cacheRepo,
		metrics:     mm,
		logger:      log.Named("CatalogUsecase"),
		cacheTTL:    cacheTTL,
	}
}

func normalizeLimit(limit, fallback int64) int64 {
	if limit <= 0 {
		return fallback
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}

func normalizeOffset(offset int64) int64 {
	if offset < 0 {
		return 0
	}
	return offset
}

// GetProductsByCategory lists the buyer view of one category. An
// unrecognized sortBy value falls back to popularity and is logged, not
// rejected.
func (uc *CatalogUsecase) GetProductsByCategory(ctx context.Context, category, sortBy string, limit, offset int64) ([]*domain.BuyerProduct, error) {
	if strings.TrimSpace(category) == "" {
		return nil, fmt.Errorf("category is required: %w", domain.ErrInvalidInput)
	}

	sortOrder, known := domain.ParseSortOrder(sortBy)
	if sortBy != "" && !known {
		uc.logger.Warn("Unknown sort order, falling back to popularity",
			zap.String("sort_by", sortBy), zap.String("category", category))
	}

	uc.metrics.CatalogQueriesTotal.WithLabelValues("by_category").Inc()
	products, err := uc.catalogRepo.FindByCategory(ctx, category, domain.CatalogQuery{
		Limit:  normalizeLimit(limit, defaultCategoryLimit),
		Offset: normalizeOffset(offset),
		Sort:   sortOrder,
	})
	if err != nil {
		uc.logger.Error("Failed to list products by category",
			zap.String("category", category), zap.Error(err))
		return nil, err
	}
	return products, nil
}

// SearchProducts matches the query against base product titles,
// descriptions and tags. The ranking is fixed: rating first, then sold
// count.
func (uc *CatalogUsecase) SearchProducts(ctx context.Context, query string, limit, offset int64) ([]*domain.BuyerProduct, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query is required: %w", domain.ErrInvalidInput)
	}

	uc.metrics.CatalogQueriesTotal.WithLabelValues("search").Inc()
	products, err := uc.catalogRepo.Search(ctx, query, normalizeLimit(limit, defaultSearchLimit), normalizeOffset(offset))
	if err != nil {
		uc.logger.Error("Product search failed", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	return products, nil
}

// GetFeaturedProducts returns the newest featured listings, cached per
// limit value.
func (uc *CatalogUsecase) GetFeaturedProducts(ctx context.Context, limit int64) ([]*domain.BuyerProduct, error) {
	limit = normalizeLimit(limit, defaultFeaturedLimit)
	key := fmt.Sprintf("%s:%d", featuredCacheKey, limit)

	var cached []*domain.BuyerProduct
	if uc.readCache(ctx, key, "featured", &cached) {
		return cached, nil
	}

	uc.metrics.CatalogQueriesTotal.WithLabelValues("featured").Inc()
	products, err := uc.catalogRepo.FindFeatured(ctx, limit)
	if err != nil {
		uc.logger.Error("Failed to list featured products", zap.Error(err))
		return nil, err
	}
	uc.writeCache(ctx, key, products)
	return products, nil
}

// GetSellerProducts lists one seller's storefront. An unknown, inactive
// or unverified seller resolves to an empty list.
func (uc *CatalogUsecase) GetSellerProducts(ctx context.Context, sellerID string, limit, offset int64) ([]*domain.BuyerProduct, error) {
	if strings.TrimSpace(sellerID) == "" {
		return nil, fmt.Errorf("seller id is required: %w", domain.ErrInvalidInput)
	}

	uc.metrics.CatalogQueriesTotal.WithLabelValues("by_seller").Inc()
	products, err := uc.catalogRepo.FindBySeller(ctx, sellerID, normalizeLimit(limit, defaultCategoryLimit), normalizeOffset(offset))
	if err != nil {
		uc.logger.Error("Failed to list seller products", zap.String("seller_id", sellerID), zap.Error(err))
		return nil, err
	}
	return products, nil
}

// GetProductComparison returns every verified seller's offer for a base
// product, cheapest total first. A missing product, or one without
// qualifying offers, is reported as not found.
func (uc *CatalogUsecase) GetProductComparison(ctx context.Context, baseProductID string) (*domain.ProductComparison, error) {
	if strings.TrimSpace(baseProductID) == "" {
		return nil, fmt.Errorf("base product id is required: %w", domain.ErrInvalidInput)
	}

	uc.metrics.CatalogQueriesTotal.WithLabelValues("comparison").Inc()
	comparison, err := uc.catalogRepo.GetComparison(ctx, baseProductID)
	if err != nil {
		uc.logger.Error("Failed to build product comparison",
			zap.String("base_product_id", baseProductID), zap.Error(err))
		return nil, err
	}
	if comparison == nil {
		return nil, fmt.Errorf("comparison for product %s: %w", baseProductID, domain.ErrNotFound)
	}
	return comparison, nil
}

// GetCategories returns the distinct categories of active products, cached.
func (uc *CatalogUsecase) GetCategories(ctx context.Context) ([]string, error) {
	var cached []string
	if uc.readCache(ctx, categoriesCacheKey, "categories", &cached) {
		return cached, nil
	}

	uc.metrics.CatalogQueriesTotal.WithLabelValues("categories").Inc()
	categories, err := uc.catalogRepo.Categories(ctx)
	if err != nil {
		uc.logger.Error("Failed to list categories", zap.Error(err))
		return nil, err
	}
	uc.writeCache(ctx, categoriesCacheKey, categories)
	return categories, nil
}

// GetTopSellers returns verified sellers ranked by sales volume, cached
// per limit value.
func (uc *CatalogUsecase) GetTopSellers(ctx context.Context, limit int64) ([]*domain.SellerProfile, error) {
	limit = normalizeLimit(limit, defaultSellersLimit)
	key := fmt.Sprintf("%s:%d", topSellersCacheKey, limit)

	var cached []*domain.SellerProfile
	if uc.readCache(ctx, key, "top_sellers", &cached) {
		return cached, nil
	}

	uc.metrics.CatalogQueriesTotal.WithLabelValues("top_sellers").Inc()
	sellers, err := uc.catalogRepo.TopSellers(ctx, limit)
	if err != nil {
		uc.logger.Error("Failed to list top sellers", zap.Error(err))
		return nil, err
	}
	uc.writeCache(ctx, key, sellers)
	return sellers, nil
}

// readCache loads and unmarshals a cached value into out. Cache failures
// other than a miss are logged and treated as misses.
func (uc *CatalogUsecase) readCache(ctx context.Context, key, group string, out interface{}) bool {
	data, err := uc.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			uc.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		}
		uc.metrics.CacheMissesTotal.WithLabelValues(group).Inc()
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		uc.logger.Warn("Cache entry is not valid JSON, ignoring", zap.String("key", key), zap.Error(err))
		uc.metrics.CacheMissesTotal.WithLabelValues(group).Inc()
		return false
	}
	uc.metrics.CacheHitsTotal.WithLabelValues(group).Inc()
	return true
}

// writeCache stores a value best-effort; a failed write only costs the
// next reader a repository round trip.
func (uc *CatalogUsecase) writeCache(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		uc.logger.Warn("Failed to marshal value for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := uc.cache.Set(ctx, key, data, uc.cacheTTL); err != nil {
		uc.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}
