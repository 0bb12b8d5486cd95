package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/54ba/midostore-sub004/internal/domain"
	"github.com/54ba/midostore-sub004/internal/platform/logger"
	"github.com/54ba/midostore-sub004/internal/platform/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockInteractionRepository struct{ mock.Mock }

func (m *MockInteractionRepository) Record(ctx context.Context, userID, baseProductID string, t domain.InteractionType, at time.Time) error {
	args := m.Called(ctx, userID, baseProductID, t, at)
	return args.Error(0)
}
func (m *MockInteractionRepository) IncrementListingViews(ctx context.Context, baseProductID string) error {
	args := m.Called(ctx, baseProductID)
	return args.Error(0)
}
func (m *MockInteractionRepository) RecentByUser(ctx context.Context, userID string, limit int64) ([]*domain.UserInteraction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.UserInteraction), args.Error(1)
}

type MockPreferenceRepository struct{ mock.Mock }

func (m *MockPreferenceRepository) Get(ctx context.Context, userID string) (*domain.BuyerPreferences, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BuyerPreferences), args.Error(1)
}
func (m *MockPreferenceRepository) Upsert(ctx context.Context, userID string, update domain.PreferencesUpdate) (bool, error) {
	args := m.Called(ctx, userID, update)
	return args.Bool(0), args.Error(1)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type buyerUsecaseMocks struct {
	catalog      *MockCatalogRepository
	interactions *MockInteractionRepository
	preferences  *MockPreferenceRepository
	publisher    *MockEventPublisher
}

func newBuyerUsecaseForTest() (*BuyerUsecase, buyerUsecaseMocks) {
	mocks := buyerUsecaseMocks{
		catalog:      new(MockCatalogRepository),
		interactions: new(MockInteractionRepository),
		preferences:  new(MockPreferenceRepository),
		publisher:    new(MockEventPublisher),
	}
	uc := NewBuyerUsecase(
		mocks.catalog,
		mocks.interactions,
		mocks.preferences,
		mocks.publisher,
		metrics.NewMetricsManager("test_buyer"),
		logger.NewLogger(),
	)
	return uc, mocks
}

func TestRecordInteraction_RejectsUnknownType(t *testing.T) {
	uc, mocks := newBuyerUsecaseForTest()

	err := uc.RecordInteraction(context.Background(), "u1", "bp1", "FAVORITE")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	mocks.interactions.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordInteraction_RequiresUserAndProduct(t *testing.T) {
	uc, _ := newBuyerUsecaseForTest()

	assert.ErrorIs(t, uc.RecordInteraction(context.Background(), "", "bp1", "VIEW"), domain.ErrInvalidInput)
	assert.ErrorIs(t, uc.RecordInteraction(context.Background(), "u1", "", "VIEW"), domain.ErrInvalidInput)
}

func TestRecordInteraction_ViewBumpsListingViewsAndPublishes(t *testing.T) {
	uc, mocks := newBuyerUsecaseForTest()

	mocks.interactions.On("Record", mock.Anything, "u1", "bp1", domain.InteractionView, mock.Anything).Return(nil)
	mocks.interactions.On("IncrementListingViews", mock.Anything, "bp1").Return(nil)
	mocks.publisher.On("Publish", mock.Anything, SubjectInteractionRecorded, mock.MatchedBy(func(e InteractionRecordedEvent) bool {
		return e.UserID == "u1" && e.BaseProductID == "bp1" && e.Type == "VIEW"
	})).Return(nil)

	err := uc.RecordInteraction(context.Background(), "u1", "bp1", "VIEW")
	assert.NoError(t, err)
	mocks.interactions.AssertExpectations(t)
	mocks.publisher.AssertExpectations(t)
}

func TestRecordInteraction_NonViewSkipsViewCounter(t *testing.T) {
	uc, mocks := newBuyerUsecaseForTest()

	mocks.interactions.On("Record", mock.Anything, "u1", "bp1", domain.InteractionLike, mock.Anything).Return(nil)
	mocks.publisher.On("Publish", mock.Anything, SubjectInteractionRecorded, mock.Anything).Return(nil)

	err := uc.RecordInteraction(context.Background(), "u1", "bp1", "LIKE")
	assert.NoError(t, err)
	mocks.interactions.AssertNotCalled(t, "IncrementListingViews", mock.Anything, mock.Anything)
}

func TestRecordInteraction_PublishFailureIsNotFatal(t *testing.T) {
	uc, mocks := newBuyerUsecaseForTest()

	mocks.interactions.On("Record", mock.Anything, "u1", "bp1", domain.InteractionCart, mock.Anything).Return(nil)
	mocks.publisher.On("Publish", mock.Anything, SubjectInteractionRecorded, mock.Anything).Return(errors.New("nats down"))

	err := uc.RecordInteraction(context.Background(), "u1", "bp1", "CART")
	assert.NoError(t, err)
}

func TestRecordInteraction_ViewCounterFailureIsNotFatal(t *testing.T) {
	uc, mocks := newBuyerUsecaseForTest()

	mocks.interactions.On("Record", mock.Anything, "u1", "bp1", domain.InteractionView, mock.Anything).Return(nil)
	mocks.interactions.On("IncrementListingViews", mock.Anything, "bp1").Return(domain.ErrRepository)
	mocks.publisher.On("Publish", mock.Anything, SubjectInteractionRecorded, mock.Anything).Return(nil)

	err := uc.RecordInteraction(context.Background(), "u1", "bp1", "VIEW")
	assert.NoError(t, err)
}

func TestGetRecommendedProducts_ColdStartFallsBackToFeatured(t *testing.T) {
	uc, mocks := newBuyerUsecaseForTest()

	mocks.interactions.On("RecentByUser", mock.Anything, "u1", int64(100)).
		Return([]*domain.UserInteraction{}, nil)
	featured := []*domain.BuyerProduct{{ListingID: "l1", IsFeatured: true}}
	mocks.catalog.On("FindFeatured", mock.Anything, int64(20)).Return(featured, nil)

	products, err := uc.GetRecommendedProducts(context.Background(), "u1", 0)
	assert.NoError(t, err)
	assert.Equal(t, featured, products)
	mocks.catalog.AssertNotCalled(t, "CategoriesForProducts", mock.Anything, mock.Anything)
}

func TestGetRecommendedProducts_UsesCategoriesOfInteractedProducts(t *testing.T) {
	uc, mocks := newBuyerUsecaseForTest()

	history := []*domain.UserInteraction{
		{UserID: "u1", BaseProductID: "bp1", Type: domain.InteractionView},
		{UserID: "u1", BaseProductID: "bp2", Type: domain.InteractionLike},
		{UserID: "u1", BaseProductID: "bp1", Type: domain.InteractionPurchase},
	}
	mocks.interactions.On("RecentByUser", mock.Anything, "u1", int64(100)).Return(history, nil)
	// bp1 appears twice in history but must be resolved once.
	mocks.catalog.On("CategoriesForProducts", mock.Anything, []string{"bp1", "bp2"}).
		Return([]string{"electronics"}, nil)
	recommended := []*domain.BuyerProduct{{ListingID: "l5"}}
	mocks.catalog.On("FindByCategories", mock.Anything, []string{"electronics"}, int64(20)).
		Return(recommended, nil)

	products, err := uc.GetRecommendedProducts(context.Background(), "u1", 0)
	assert.NoError(t, err)
	assert.Equal(t, recommended, products)
	mocks.catalog.AssertExpectations(t)
}

func TestGetRecommendedProducts_RequiresUserID(t *testing.T) {
	uc, _ := newBuyerUsecaseForTest()

	_, err := uc.GetRecommendedProducts(context.Background(), "", 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetPreferences_MissingIsNotFound(t *testing.T) {
	uc, mocks := newBuyerUsecaseForTest()

	mocks.preferences.On("Get", mock.Anything, "u1").Return(nil, nil)

	_, err := uc.GetPreferences(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdatePreferences_RejectsEmptyUpdate(t *testing.T) {
	uc, mocks := newBuyerUsecaseForTest()

	_, err := uc.UpdatePreferences(context.Background(), "u1", domain.PreferencesUpdate{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	mocks.preferences.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdatePreferences_AppliesPartialUpdate(t *testing.T) {
	uc, mocks := newBuyerUsecaseForTest()

	categories := []string{"books"}
	update := domain.PreferencesUpdate{PreferredCategories: &categories}
	mocks.preferences.On("Upsert", mock.Anything, "u1", update).Return(true, nil)

	updated, err := uc.UpdatePreferences(context.Background(), "u1", update)
	assert.NoError(t, err)
	assert.True(t, updated)
	mocks.preferences.AssertExpectations(t)
}
