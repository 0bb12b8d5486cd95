package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/54ba/midostore-sub004/internal/domain"
	"github.com/54ba/midostore-sub004/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("catalog-service/repository/mongodb")

// CatalogRepository implements domain.CatalogRepository over the
// base_products, seller_listings and sellers collections.
type CatalogRepository struct {
	products *mongo.Collection
	listings *mongo.Collection
	sellers  *mongo.Collection
	log      *logger.Logger
}

func NewCatalogRepository(db *mongo.Database, log *logger.Logger) *CatalogRepository {
	repo := &CatalogRepository{
		products: db.Collection(baseProductsCollection),
		listings: db.Collection(listingsCollection),
		sellers:  db.Collection(sellersCollection),
		log:      log.Named("catalog_repo"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *CatalogRepository) ensureIndexes(ctx context.Context) {
	productIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "is_active", Value: 1}}},
	}
	listingIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "base_product_id", Value: 1}, {Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "seller_id", Value: 1}, {Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "is_featured", Value: 1}, {Key: "is_active", Value: 1}}},
	}
	sellerIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "is_verified", Value: 1}}},
		{Keys: bson.D{{Key: "total_sales", Value: -1}, {Key: "average_rating", Value: -1}}},
	}
	if _, err := r.products.Indexes().CreateMany(ctx, productIndexes); err != nil {
		r.log.Error("failed to create base_products indexes", zap.Error(err))
	}
	if _, err := r.listings.Indexes().CreateMany(ctx, listingIndexes); err != nil {
		r.log.Error("failed to create seller_listings indexes", zap.Error(err))
	}
	if _, err := r.sellers.Indexes().CreateMany(ctx, sellerIndexes); err != nil {
		r.log.Error("failed to create sellers indexes", zap.Error(err))
	}
}

func activeListingMatch() bson.M {
	return bson.M{"listing.is_active": true}
}

func (r *CatalogRepository) aggregateBuyerProducts(ctx context.Context, op string, pipeline []bson.M) ([]*domain.BuyerProduct, error) {
	ctx, span := tracer.Start(ctx, "mongodb."+op)
	defer span.End()

	cursor, err := r.products.Aggregate(ctx, pipeline)
	if err != nil {
		r.log.Error("aggregation failed", zap.String("operation", op), zap.Error(err))
		return nil, fmt.Errorf("db %s failed: %w", op, domain.ErrRepository)
	}
	defer cursor.Close(ctx)

	var docs []buyerProductDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.log.Error("cursor decode failed", zap.String("operation", op), zap.Error(err))
		return nil, fmt.Errorf("db %s decode failed: %w", op, domain.ErrRepository)
	}

	span.SetAttributes(attribute.Int("db.result_count", len(docs)))
	products := make([]*domain.BuyerProduct, 0, len(docs))
	for i := range docs {
		products = append(products, docs[i].toDomain())
	}
	return products, nil
}

func (r *CatalogRepository) FindByCategory(ctx context.Context, category string, q domain.CatalogQuery) ([]*domain.BuyerProduct, error) {
	pipeline := buyerProductPipeline(
		bson.M{"category": category, "is_active": true},
		activeListingMatch(),
	)
	pipeline = append(pipeline,
		bson.M{"$sort": sortStage(q.Sort)},
		bson.M{"$skip": q.Offset},
		bson.M{"$limit": q.Limit},
	)
	return r.aggregateBuyerProducts(ctx, "find_by_category", pipeline)
}

func (r *CatalogRepository) FindByCategories(ctx context.Context, categories []string, limit int64) ([]*domain.BuyerProduct, error) {
	if len(categories) == 0 {
		return []*domain.BuyerProduct{}, nil
	}
	pipeline := buyerProductPipeline(
		bson.M{"category": bson.M{"$in": categories}, "is_active": true},
		activeListingMatch(),
	)
	pipeline = append(pipeline,
		bson.M{"$sort": ratingSort()},
		bson.M{"$limit": limit},
	)
	return r.aggregateBuyerProducts(ctx, "find_by_categories", pipeline)
}

func (r *CatalogRepository) Search(ctx context.Context, query string, limit, offset int64) ([]*domain.BuyerProduct, error) {
	regex := bson.M{"$regex": query, "$options": "i"}
	pipeline := buyerProductPipeline(
		bson.M{
			"is_active": true,
			"$or": []bson.M{
				{"title": regex},
				{"description": regex},
				{"tags": regex},
			},
		},
		activeListingMatch(),
	)
	pipeline = append(pipeline,
		bson.M{"$sort": ratingSort()},
		bson.M{"$skip": offset},
		bson.M{"$limit": limit},
	)
	return r.aggregateBuyerProducts(ctx, "search", pipeline)
}

func (r *CatalogRepository) FindFeatured(ctx context.Context, limit int64) ([]*domain.BuyerProduct, error) {
	pipeline := buyerProductPipeline(
		bson.M{"is_active": true},
		bson.M{"listing.is_active": true, "listing.is_featured": true},
	)
	pipeline = append(pipeline,
		bson.M{"$sort": bson.D{{Key: "listing_created_at", Value: -1}}},
		bson.M{"$limit": limit},
	)
	return r.aggregateBuyerProducts(ctx, "find_featured", pipeline)
}

// FindBySeller checks the seller's verification gate first and fails
// closed: an unknown, inactive or unverified seller yields an empty
// result with no error.
func (r *CatalogRepository) FindBySeller(ctx context.Context, sellerID string, limit, offset int64) ([]*domain.BuyerProduct, error) {
	ctx, span := tracer.Start(ctx, "mongodb.find_by_seller")
	defer span.End()

	var seller sellerDocument
	err := r.sellers.FindOne(ctx, bson.M{
		"_id":         sellerID,
		"is_active":   true,
		"is_verified": true,
	}).Decode(&seller)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []*domain.BuyerProduct{}, nil
		}
		r.log.Error("seller gate lookup failed", zap.String("seller_id", sellerID), zap.Error(err))
		return nil, fmt.Errorf("db find_by_seller failed: %w", domain.ErrRepository)
	}

	pipeline := buyerProductPipeline(
		bson.M{"is_active": true},
		bson.M{"listing.is_active": true, "listing.seller_id": sellerID},
	)
	pipeline = append(pipeline,
		bson.M{"$sort": bson.D{{Key: "listing_created_at", Value: -1}}},
		bson.M{"$skip": offset},
		bson.M{"$limit": limit},
	)
	return r.aggregateBuyerProducts(ctx, "find_by_seller", pipeline)
}

// GetComparison joins the listings and sellers for one base product on the
// application side. The result set per product is small, so an extra round
// trip reads better than a second aggregation pipeline.
func (r *CatalogRepository) GetComparison(ctx context.Context, baseProductID string) (*domain.ProductComparison, error) {
	ctx, span := tracer.Start(ctx, "mongodb.get_comparison")
	defer span.End()

	var productDoc baseProductDocument
	err := r.products.FindOne(ctx, bson.M{"_id": baseProductID, "is_active": true}).Decode(&productDoc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.log.Error("comparison product lookup failed", zap.String("base_product_id", baseProductID), zap.Error(err))
		return nil, fmt.Errorf("db get_comparison failed: %w", domain.ErrRepository)
	}
	product := productDoc.toDomain()

	cursor, err := r.listings.Find(ctx, bson.M{"base_product_id": baseProductID, "is_active": true})
	if err != nil {
		r.log.Error("comparison listings lookup failed", zap.String("base_product_id", baseProductID), zap.Error(err))
		return nil, fmt.Errorf("db get_comparison failed: %w", domain.ErrRepository)
	}
	var listingDocs []sellerListingDocument
	if err := cursor.All(ctx, &listingDocs); err != nil {
		return nil, fmt.Errorf("db get_comparison decode failed: %w", domain.ErrRepository)
	}
	if len(listingDocs) == 0 {
		return nil, nil
	}
	listings := make([]*domain.SellerListing, 0, len(listingDocs))
	sellerIDs := make([]string, 0, len(listingDocs))
	for i := range listingDocs {
		listings = append(listings, listingDocs[i].toDomain())
		sellerIDs = append(sellerIDs, listingDocs[i].SellerID)
	}

	cursor, err = r.sellers.Find(ctx, bson.M{
		"_id":         bson.M{"$in": sellerIDs},
		"is_active":   true,
		"is_verified": true,
	})
	if err != nil {
		r.log.Error("comparison sellers lookup failed", zap.String("base_product_id", baseProductID), zap.Error(err))
		return nil, fmt.Errorf("db get_comparison failed: %w", domain.ErrRepository)
	}
	var sellerDocs []sellerDocument
	if err := cursor.All(ctx, &sellerDocs); err != nil {
		return nil, fmt.Errorf("db get_comparison decode failed: %w", domain.ErrRepository)
	}
	sellersByID := make(map[string]*domain.SellerProfile, len(sellerDocs))
	for i := range sellerDocs {
		sellersByID[sellerDocs[i].ID] = sellerDocs[i].toDomain()
	}

	offers := make([]domain.SellerOffer, 0, len(listings))
	for _, l := range listings {
		seller, ok := sellersByID[l.SellerID]
		if !ok {
			continue
		}
		offers = append(offers, domain.SellerOffer{
			SellerID:          seller.ID,
			SellerName:        seller.BusinessName,
			SellerLogo:        seller.Logo,
			SellerRating:      seller.AverageRating,
			SellingPrice:      l.SellingPrice,
			ShippingCost:      l.ShippingCost,
			TotalPrice:        l.SellingPrice + l.ShippingCost,
			EstimatedDelivery: l.EstimatedDelivery,
			AvailableStock:    l.AvailableStock,
		})
	}
	if len(offers) == 0 {
		return nil, nil
	}
	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].TotalPrice < offers[j].TotalPrice
	})

	return &domain.ProductComparison{
		BaseProductID: product.ID,
		Title:         product.Title,
		Images:        product.Images,
		Offers:        offers,
	}, nil
}

func (r *CatalogRepository) Categories(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "mongodb.categories")
	defer span.End()

	values, err := r.products.Distinct(ctx, "category", bson.M{"is_active": true})
	if err != nil {
		r.log.Error("distinct categories failed", zap.Error(err))
		return nil, fmt.Errorf("db categories failed: %w", domain.ErrRepository)
	}
	return distinctStrings(values), nil
}

func (r *CatalogRepository) CategoriesForProducts(ctx context.Context, productIDs []string) ([]string, error) {
	if len(productIDs) == 0 {
		return []string{}, nil
	}
	ctx, span := tracer.Start(ctx, "mongodb.categories_for_products")
	defer span.End()

	values, err := r.products.Distinct(ctx, "category", bson.M{
		"_id":       bson.M{"$in": productIDs},
		"is_active": true,
	})
	if err != nil {
		r.log.Error("distinct categories for products failed", zap.Error(err))
		return nil, fmt.Errorf("db categories_for_products failed: %w", domain.ErrRepository)
	}
	return distinctStrings(values), nil
}

func (r *CatalogRepository) TopSellers(ctx context.Context, limit int64) ([]*domain.SellerProfile, error) {
	ctx, span := tracer.Start(ctx, "mongodb.top_sellers")
	defer span.End()

	opts := options.Find().
		SetSort(bson.D{{Key: "total_sales", Value: -1}, {Key: "average_rating", Value: -1}}).
		SetLimit(limit)
	cursor, err := r.sellers.Find(ctx, bson.M{"is_active": true, "is_verified": true}, opts)
	if err != nil {
		r.log.Error("top sellers query failed", zap.Error(err))
		return nil, fmt.Errorf("db top_sellers failed: %w", domain.ErrRepository)
	}
	var docs []sellerDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db top_sellers decode failed: %w", domain.ErrRepository)
	}

	sellers := make([]*domain.SellerProfile, 0, len(docs))
	for i := range docs {
		sellers = append(sellers, docs[i].toDomain())
	}
	return sellers, nil
}

// distinctStrings keeps the non-empty string values of a Distinct result.
func distinctStrings(values []interface{}) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
