package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/54ba/midostore-sub004/internal/domain"
	"github.com/54ba/midostore-sub004/internal/platform/logger"
	"github.com/54ba/midostore-sub004/internal/platform/metrics"
	"go.uber.org/zap"
)

const (
	defaultRecommendationLimit = 20
	defaultInteractionsLimit   = 50

	// interactionHistoryWindow bounds how much history feeds the
	// recommendation category profile.
	interactionHistoryWindow = 100

	SubjectInteractionRecorded = "buyer.interaction.recorded"
)

// EventPublisher emits domain events. Publishing is best-effort from the
// caller's point of view; delivery guarantees live with the broker.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// InteractionRecordedEvent is the payload published after an interaction
// upsert.
type InteractionRecordedEvent struct {
	UserID        string    `json:"userId"`
	BaseProductID string    `json:"baseProductId"`
	Type          string    `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
}

// BuyerUsecase serves the authenticated buyer surface: interaction
// recording, recommendations and preferences.
type BuyerUsecase struct {
	catalogRepo     domain.CatalogRepository
	interactionRepo domain.InteractionRepository
	preferenceRepo  domain.PreferenceRepository
	publisher       EventPublisher
	metrics         *metrics.MetricsManager
	logger          *logger.Logger
}

func NewBuyerUsecase(
	catalogRepo domain.CatalogRepository,
	interactionRepo domain.InteractionRepository,
	preferenceRepo domain.PreferenceRepository,
	publisher EventPublisher,
	mm *metrics.MetricsManager,
	log *logger.Logger,
) *BuyerUsecase {
	return &BuyerUsecase{
		catalogRepo:     catalogRepo,
		interactionRepo: interactionRepo,
		preferenceRepo:  preferenceRepo,
		publisher:       publisher,
		metrics:         mm,
		logger:          log.Named("BuyerUsecase"),
	}
}

// RecordInteraction upserts the (user, product, type) interaction with the
// current time. A VIEW additionally bumps the product's listing view
// counter. The recorded event is published to NATS; publish failures are
// logged and do not fail the request.
func (uc *BuyerUsecase) RecordInteraction(ctx context.Context, userID, baseProductID, interactionType string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(baseProductID) == "" {
		return fmt.Errorf("user id and product id are required: %w", domain.ErrInvalidInput)
	}
	t := domain.InteractionType(interactionType)
	if !t.IsValid() {
		return fmt.Errorf("unknown interaction type %q: %w", interactionType, domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	if err := uc.interactionRepo.Record(ctx, userID, baseProductID, t, now); err != nil {
		uc.logger.Error("Failed to record interaction",
			zap.String("user_id", userID),
			zap.String("base_product_id", baseProductID),
			zap.String("type", interactionType),
			zap.Error(err))
		return err
	}
	uc.metrics.InteractionsRecordedTotal.WithLabelValues(interactionType).Inc()

	if t == domain.InteractionView {
		if err := uc.interactionRepo.IncrementListingViews(ctx, baseProductID); err != nil {
			uc.logger.Warn("Failed to increment listing views",
				zap.String("base_product_id", baseProductID), zap.Error(err))
		}
	}

	event := InteractionRecordedEvent{
		UserID:        userID,
		BaseProductID: baseProductID,
		Type:          interactionType,
		Timestamp:     now,
	}
	if err := uc.publisher.Publish(ctx, SubjectInteractionRecorded, event); err != nil {
		uc.logger.Warn("Failed to publish interaction event",
			zap.String("subject", SubjectInteractionRecorded), zap.Error(err))
	}
	return nil
}

// GetRecommendedProducts builds recommendations from the categories of
// recently interacted products. A buyer with no history gets the featured
// products instead, so the surface is never empty for new users.
func (uc *BuyerUsecase) GetRecommendedProducts(ctx context.Context, userID string, limit int64) ([]*domain.BuyerProduct, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id is required: %w", domain.ErrInvalidInput)
	}
	limit = normalizeLimit(limit, defaultRecommendationLimit)

	interactions, err := uc.interactionRepo.RecentByUser(ctx, userID, interactionHistoryWindow)
	if err != nil {
		uc.logger.Error("Failed to load interaction history", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if len(interactions) == 0 {
		uc.logger.Debug("No interaction history, falling back to featured products",
			zap.String("user_id", userID))
		return uc.catalogRepo.FindFeatured(ctx, limit)
	}

	seen := make(map[string]struct{}, len(interactions))
	productIDs := make([]string, 0, len(interactions))
	for _, it := range interactions {
		if _, ok := seen[it.BaseProductID]; ok {
			continue
		}
		seen[it.BaseProductID] = struct{}{}
		productIDs = append(productIDs, it.BaseProductID)
	}

	categories, err := uc.catalogRepo.CategoriesForProducts(ctx, productIDs)
	if err != nil {
		uc.logger.Error("Failed to resolve interaction categories", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	uc.metrics.CatalogQueriesTotal.WithLabelValues("recommendations").Inc()
	return uc.catalogRepo.FindByCategories(ctx, categories, limit)
}

// GetRecentInteractions returns the buyer's interaction history, newest
// first.
func (uc *BuyerUsecase) GetRecentInteractions(ctx context.Context, userID string, limit int64) ([]*domain.UserInteraction, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id is required: %w", domain.ErrInvalidInput)
	}
	return uc.interactionRepo.RecentByUser(ctx, userID, normalizeLimit(limit, defaultInteractionsLimit))
}

// GetPreferences returns the buyer's stored preferences.
func (uc *BuyerUsecase) GetPreferences(ctx context.Context, userID string) (*domain.BuyerPreferences, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id is required: %w", domain.ErrInvalidInput)
	}
	prefs, err := uc.preferenceRepo.Get(ctx, userID)
	if err != nil {
		uc.logger.Error("Failed to load preferences", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if prefs == nil {
		return nil, fmt.Errorf("preferences for user %s: %w", userID, domain.ErrNotFound)
	}
	return prefs, nil
}

// UpdatePreferences applies a partial preference update, creating the
// document on first write. Returns whether anything changed.
func (uc *BuyerUsecase) UpdatePreferences(ctx context.Context, userID string, update domain.PreferencesUpdate) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, fmt.Errorf("user id is required: %w", domain.ErrInvalidInput)
	}
	if update.IsEmpty() {
		return false, fmt.Errorf("preference update carries no fields: %w", domain.ErrInvalidInput)
	}

	updated, err := uc.preferenceRepo.Upsert(ctx, userID, update)
	if err != nil {
		uc.logger.Error("Failed to update preferences", zap.String("user_id", userID), zap.Error(err))
		return false, err
	}
	return updated, nil
}
