package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/54ba/midostore-sub004/internal/domain"
	"github.com/54ba/midostore-sub004/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// PreferenceRepository implements domain.PreferenceRepository over the
// buyer_preferences collection, one document per user.
type PreferenceRepository struct {
	preferences *mongo.Collection
	log         *logger.Logger
}

func NewPreferenceRepository(db *mongo.Database, log *logger.Logger) *PreferenceRepository {
	repo := &PreferenceRepository{
		preferences: db.Collection(preferencesCollection),
		log:         log.Named("preference_repo"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *PreferenceRepository) ensureIndexes(ctx context.Context) {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.preferences.Indexes().CreateOne(ctx, index); err != nil {
		r.log.Error("failed to create buyer_preferences index", zap.Error(err))
	}
}

func (r *PreferenceRepository) Get(ctx context.Context, userID string) (*domain.BuyerPreferences, error) {
	ctx, span := tracer.Start(ctx, "mongodb.get_preferences")
	defer span.End()

	var doc preferencesDocument
	err := r.preferences.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.log.Error("preferences lookup failed", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("db get_preferences failed: %w", domain.ErrRepository)
	}
	return doc.toDomain(), nil
}

// Upsert writes only the fields present in the update, so concurrent
// partial updates to different fields do not clobber each other.
func (r *PreferenceRepository) Upsert(ctx context.Context, userID string, update domain.PreferencesUpdate) (bool, error) {
	ctx, span := tracer.Start(ctx, "mongodb.upsert_preferences")
	defer span.End()

	now := time.Now().UTC()
	set := bson.M{"updated_at": now}
	if update.PreferredCategories != nil {
		set["preferred_categories"] = *update.PreferredCategories
	}
	if update.PriceRange != nil {
		set["price_range"] = *update.PriceRange
	}
	if update.PreferredSellers != nil {
		set["preferred_sellers"] = *update.PreferredSellers
	}
	if update.Shipping != nil {
		set["shipping"] = *update.Shipping
	}

	res, err := r.preferences.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$set":         set,
			"$setOnInsert": bson.M{"user_id": userID, "created_at": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		r.log.Error("preferences upsert failed", zap.String("user_id", userID), zap.Error(err))
		return false, fmt.Errorf("db upsert_preferences failed: %w", domain.ErrRepository)
	}
	return res.ModifiedCount > 0 || res.UpsertedCount > 0, nil
}
