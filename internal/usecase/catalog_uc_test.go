package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/54ba/midostore-sub004/internal/domain"
	"github.com/54ba/midostore-sub004/internal/platform/logger"
	"github.com/54ba/midostore-sub004/internal/platform/metrics"
	"github.com/54ba/midostore-sub004/internal/port/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCatalogRepository struct{ mock.Mock }

func (m *MockCatalogRepository) FindByCategory(ctx context.Context, category string, q domain.CatalogQuery) ([]*domain.BuyerProduct, error) {
	args := m.Called(ctx, category, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.BuyerProduct), args.Error(1)
}
func (m *MockCatalogRepository) FindByCategories(ctx context.Context, categories []string, limit int64) ([]*domain.BuyerProduct, error) {
	args := m.Called(ctx, categories, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.BuyerProduct), args.Error(1)
}
func (m *MockCatalogRepository) Search(ctx context.Context, query string, limit, offset int64) ([]*domain.BuyerProduct, error) {
	args := m.Called(ctx, query, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.BuyerProduct), args.Error(1)
}
func (m *MockCatalogRepository) FindFeatured(ctx context.Context, limit int64) ([]*domain.BuyerProduct, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.BuyerProduct), args.Error(1)
}
func (m *MockCatalogRepository) FindBySeller(ctx context.Context, sellerID string, limit, offset int64) ([]*domain.BuyerProduct, error) {
	args := m.Called(ctx, sellerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.BuyerProduct), args.Error(1)
}
func (m *MockCatalogRepository) GetComparison(ctx context.Context, baseProductID string) (*domain.ProductComparison, error) {
	args := m.Called(ctx, baseProductID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductComparison), args.Error(1)
}
func (m *MockCatalogRepository) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockCatalogRepository) CategoriesForProducts(ctx context.Context, productIDs []string) ([]string, error) {
	args := m.Called(ctx, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockCatalogRepository) TopSellers(ctx context.Context, limit int64) ([]*domain.SellerProfile, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SellerProfile), args.Error(1)
}

type MockCacheRepository struct{ mock.Mock }

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}
func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func newCatalogUsecaseForTest(repo domain.CatalogRepository, cacheRepo cache.CacheRepository) *CatalogUsecase {
	return NewCatalogUsecase(repo, cacheRepo, metrics.NewMetricsManager("test_catalog"), logger.NewLogger(), time.Minute)
}

func TestGetProductsByCategory_RequiresCategory(t *testing.T) {
	uc := newCatalogUsecaseForTest(new(MockCatalogRepository), new(MockCacheRepository))

	_, err := uc.GetProductsByCategory(context.Background(), "  ", "popularity", 10, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetProductsByCategory_UnknownSortFallsBackToPopularity(t *testing.T) {
	repo := new(MockCatalogRepository)
	uc := newCatalogUsecaseForTest(repo, new(MockCacheRepository))

	expected := []*domain.BuyerProduct{{ListingID: "l1"}}
	repo.On("FindByCategory", mock.Anything, "electronics", domain.CatalogQuery{
		Limit:  50,
		Offset: 0,
		Sort:   domain.SortPopularity,
	}).Return(expected, nil)

	products, err := uc.GetProductsByCategory(context.Background(), "electronics", "cheapest_first", 0, -5)
	assert.NoError(t, err)
	assert.Equal(t, expected, products)
	repo.AssertExpectations(t)
}

func TestGetProductsByCategory_ClampsLimit(t *testing.T) {
	repo := new(MockCatalogRepository)
	uc := newCatalogUsecaseForTest(repo, new(MockCacheRepository))

	repo.On("FindByCategory", mock.Anything, "books", domain.CatalogQuery{
		Limit:  100,
		Offset: 20,
		Sort:   domain.SortPriceLow,
	}).Return([]*domain.BuyerProduct{}, nil)

	_, err := uc.GetProductsByCategory(context.Background(), "books", "price_low", 5000, 20)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSearchProducts_RequiresQuery(t *testing.T) {
	uc := newCatalogUsecaseForTest(new(MockCatalogRepository), new(MockCacheRepository))

	_, err := uc.SearchProducts(context.Background(), "", 10, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetFeaturedProducts_CacheHitSkipsRepository(t *testing.T) {
	repo := new(MockCatalogRepository)
	cacheRepo := new(MockCacheRepository)
	uc := newCatalogUsecaseForTest(repo, cacheRepo)

	cached := []*domain.BuyerProduct{{ListingID: "l1", Title: "Cached"}}
	data, err := json.Marshal(cached)
	assert.NoError(t, err)
	cacheRepo.On("Get", mock.Anything, "catalog:featured:20").Return(data, nil)

	products, err := uc.GetFeaturedProducts(context.Background(), 0)
	assert.NoError(t, err)
	assert.Equal(t, cached, products)
	repo.AssertNotCalled(t, "FindFeatured", mock.Anything, mock.Anything)
}

func TestGetFeaturedProducts_CacheMissLoadsAndStores(t *testing.T) {
	repo := new(MockCatalogRepository)
	cacheRepo := new(MockCacheRepository)
	uc := newCatalogUsecaseForTest(repo, cacheRepo)

	cacheRepo.On("Get", mock.Anything, "catalog:featured:10").Return(nil, cache.ErrNotFound)
	expected := []*domain.BuyerProduct{{ListingID: "l2", IsFeatured: true}}
	repo.On("FindFeatured", mock.Anything, int64(10)).Return(expected, nil)
	cacheRepo.On("Set", mock.Anything, "catalog:featured:10", mock.Anything, time.Minute).Return(nil)

	products, err := uc.GetFeaturedProducts(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, expected, products)
	repo.AssertExpectations(t)
	cacheRepo.AssertExpectations(t)
}

func TestGetFeaturedProducts_CacheReadFailureFallsThrough(t *testing.T) {
	repo := new(MockCatalogRepository)
	cacheRepo := new(MockCacheRepository)
	uc := newCatalogUsecaseForTest(repo, cacheRepo)

	cacheRepo.On("Get", mock.Anything, "catalog:featured:20").Return(nil, errors.New("redis down"))
	expected := []*domain.BuyerProduct{{ListingID: "l3"}}
	repo.On("FindFeatured", mock.Anything, int64(20)).Return(expected, nil)
	cacheRepo.On("Set", mock.Anything, "catalog:featured:20", mock.Anything, time.Minute).Return(errors.New("redis down"))

	products, err := uc.GetFeaturedProducts(context.Background(), 20)
	assert.NoError(t, err)
	assert.Equal(t, expected, products)
}

func TestGetProductComparison_MissingProductIsNotFound(t *testing.T) {
	repo := new(MockCatalogRepository)
	uc := newCatalogUsecaseForTest(repo, new(MockCacheRepository))

	repo.On("GetComparison", mock.Anything, "bp-missing").Return(nil, nil)

	_, err := uc.GetProductComparison(context.Background(), "bp-missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetProductComparison_RequiresProductID(t *testing.T) {
	uc := newCatalogUsecaseForTest(new(MockCatalogRepository), new(MockCacheRepository))

	_, err := uc.GetProductComparison(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetSellerProducts_RepositoryErrorPassesThrough(t *testing.T) {
	repo := new(MockCatalogRepository)
	uc := newCatalogUsecaseForTest(repo, new(MockCacheRepository))

	repo.On("FindBySeller", mock.Anything, "s1", int64(50), int64(0)).
		Return(nil, domain.ErrRepository)

	_, err := uc.GetSellerProducts(context.Background(), "s1", 0, 0)
	assert.ErrorIs(t, err, domain.ErrRepository)
}

func TestGetCategories_CacheMissLoadsFromRepository(t *testing.T) {
	repo := new(MockCatalogRepository)
	cacheRepo := new(MockCacheRepository)
	uc := newCatalogUsecaseForTest(repo, cacheRepo)

	cacheRepo.On("Get", mock.Anything, "catalog:categories").Return(nil, cache.ErrNotFound)
	repo.On("Categories", mock.Anything).Return([]string{"books", "electronics"}, nil)
	cacheRepo.On("Set", mock.Anything, "catalog:categories", mock.Anything, time.Minute).Return(nil)

	categories, err := uc.GetCategories(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"books", "electronics"}, categories)
}

func TestGetTopSellers_UsesDefaultLimit(t *testing.T) {
	repo := new(MockCatalogRepository)
	cacheRepo := new(MockCacheRepository)
	uc := newCatalogUsecaseForTest(repo, cacheRepo)

	cacheRepo.On("Get", mock.Anything, "catalog:top_sellers:10").Return(nil, cache.ErrNotFound)
	expected := []*domain.SellerProfile{{ID: "s1", BusinessName: "Acme"}}
	repo.On("TopSellers", mock.Anything, int64(10)).Return(expected, nil)
	cacheRepo.On("Set", mock.Anything, "catalog:top_sellers:10", mock.Anything, time.Minute).Return(nil)

	sellers, err := uc.GetTopSellers(context.Background(), 0)
	assert.NoError(t, err)
	assert.Equal(t, expected, sellers)
	repo.AssertExpectations(t)
}
