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

// InteractionRepository implements domain.InteractionRepository over the
// user_interactions collection. One document per (user, product, type)
// triple, enforced by a unique index.
type InteractionRepository struct {
	interactions *mongo.Collection
	listings     *mongo.Collection
	log          *logger.Logger
}

func NewInteractionRepository(db *mongo.Database, log *logger.Logger) *InteractionRepository {
	repo := &InteractionRepository{
		interactions: db.Collection(interactionsCollection),
		listings:     db.Collection(listingsCollection),
		log:          log.Named("interaction_repo"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *InteractionRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "base_product_id", Value: 1},
				{Key: "type", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
	}
	if _, err := r.interactions.Indexes().CreateMany(ctx, indexes); err != nil {
		r.log.Error("failed to create user_interactions indexes", zap.Error(err))
	}
}

func (r *InteractionRepository) Record(ctx context.Context, userID, baseProductID string, t domain.InteractionType, at time.Time) error {
	ctx, span := tracer.Start(ctx, "mongodb.record_interaction")
	defer span.End()

	filter := bson.M{
		"user_id":         userID,
		"base_product_id": baseProductID,
		"type":            string(t),
	}
	update := bson.M{"$set": bson.M{"timestamp": at}}
	_, err := r.interactions.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		r.log.Error("interaction upsert failed",
			zap.String("user_id", userID),
			zap.String("base_product_id", baseProductID),
			zap.String("type", string(t)),
			zap.Error(err))
		return fmt.Errorf("db record_interaction failed: %w", domain.ErrRepository)
	}
	return nil
}

// IncrementListingViews bumps the view counter of a single listing for the
// base product. Picking the oldest active listing keeps the choice
// deterministic; the counter is a coarse product-level signal, not
// per-listing attribution.
func (r *InteractionRepository) IncrementListingViews(ctx context.Context, baseProductID string) error {
	ctx, span := tracer.Start(ctx, "mongodb.increment_listing_views")
	defer span.End()

	opts := options.FindOneAndUpdate().SetSort(bson.D{{Key: "created_at", Value: 1}})
	err := r.listings.FindOneAndUpdate(ctx,
		bson.M{"base_product_id": baseProductID, "is_active": true},
		bson.M{"$inc": bson.M{"views": 1}},
		opts,
	).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		r.log.Error("listing view increment failed",
			zap.String("base_product_id", baseProductID),
			zap.Error(err))
		return fmt.Errorf("db increment_listing_views failed: %w", domain.ErrRepository)
	}
	return nil
}

func (r *InteractionRepository) RecentByUser(ctx context.Context, userID string, limit int64) ([]*domain.UserInteraction, error) {
	ctx, span := tracer.Start(ctx, "mongodb.recent_interactions")
	defer span.End()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)
	cursor, err := r.interactions.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		r.log.Error("recent interactions query failed", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("db recent_interactions failed: %w", domain.ErrRepository)
	}
	var docs []interactionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db recent_interactions decode failed: %w", domain.ErrRepository)
	}

	interactions := make([]*domain.UserInteraction, 0, len(docs))
	for i := range docs {
		interactions = append(interactions, docs[i].toDomain())
	}
	return interactions, nil
}
