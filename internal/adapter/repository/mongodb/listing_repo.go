package mongodb

import (
	"context"
	"regexp"
	"time"

	"github.com/operman-code/petme/internal/listing/domain"
	"github.com/operman-code/petme/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	listingCollectionName = "listings"
	// maxToggleAttempts bounds the pull/add race loop in ToggleFavorite.
	maxToggleAttempts = 5
)

// ListingRepository implements domain.ListingRepository on MongoDB. Every mutation is
// a single conditional document update, so per-listing atomicity comes from the server.
type ListingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
	now        func() time.Time
}

// NewListingRepository creates the repository and ensures its indexes.
func NewListingRepository(db *mongo.Database, log *logger.Logger) (*ListingRepository, error) {
	collection := db.Collection(listingCollectionName)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}, {Key: "breed", Value: "text"}},
			Options: options.Index().SetName("listing_text").
				SetWeights(bson.D{{Key: "name", Value: 1}, {Key: "description", Value: 1}, {Key: "breed", Value: 1}}),
		},
		{Keys: bson.D{{Key: "is_available", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "species", Value: 1}, {Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "favorites", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("Failed to create indexes for listings collection", zap.Error(err))
	} else {
		log.Info("Successfully ensured indexes for listings collection")
	}

	return &ListingRepository{
		collection: collection,
		logger:     log.Named("ListingRepository"),
		now:        time.Now,
	}, nil
}

func (r *ListingRepository) Insert(ctx context.Context, listing *domain.Listing) error {
	doc := fromDomainListing(listing)
	doc.ID = primitive.NewObjectID()
	now := r.now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to insert listing into DB", zap.Error(err))
		return mapError("insert listing", err)
	}
	listing.ID = doc.ID.Hex()
	listing.CreatedAt = doc.CreatedAt
	listing.UpdatedAt = doc.UpdatedAt
	listing.Favorites = doc.Favorites
	r.logger.Debug("Listing created in DB", zap.String("listing_id", listing.ID))
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	var doc listingDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if mapped := mapError("find listing", err); mapped != domain.ErrNotFound {
			r.logger.Error("Failed to get listing by ID from DB", zap.Error(err), zap.String("listing_id", id))
			return nil, mapped
		}
		return nil, domain.ErrNotFound
	}
	return doc.toDomain(), nil
}

// ownershipMiss explains why an {_id, owner} conditional write matched nothing.
func (r *ListingRepository) ownershipMiss(ctx context.Context, id string) error {
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrForbidden
}

func (r *ListingRepository) Update(ctx context.Context, id, ownerID string, patch *domain.Patch) (*domain.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": patchToSet(patch, r.now())}

	var doc listingDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid, "owner": ownerID}, update, opts).Decode(&doc)
	if err != nil {
		if mapError("update listing", err) == domain.ErrNotFound {
			return nil, r.ownershipMiss(ctx, id)
		}
		r.logger.Error("Failed to update listing in DB", zap.Error(err), zap.String("listing_id", id))
		return nil, mapError("update listing", err)
	}
	return doc.toDomain(), nil
}

func (r *ListingRepository) Delete(ctx context.Context, id, ownerID string) (*domain.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	var doc listingDocument
	err = r.collection.FindOneAndDelete(ctx, bson.M{"_id": oid, "owner": ownerID}).Decode(&doc)
	if err != nil {
		if mapError("delete listing", err) == domain.ErrNotFound {
			return nil, r.ownershipMiss(ctx, id)
		}
		r.logger.Error("Failed to delete listing from DB", zap.Error(err), zap.String("listing_id", id))
		return nil, mapError("delete listing", err)
	}
	r.logger.Info("Listing deleted from DB", zap.String("listing_id", id))
	return doc.toDomain(), nil
}

func (r *ListingRepository) IncrementViews(ctx context.Context, id string) (*domain.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	update := bson.M{
		"$inc": bson.M{"views": 1},
		"$set": bson.M{"updated_at": r.now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc listingDocument
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return nil, mapError("increment views", err)
	}
	return doc.toDomain(), nil
}

// ToggleFavorite removes userID if present, else adds it. Each branch is a single
// conditional update; when a concurrent toggle flips membership between the two the
// loop retries.
func (r *ListingRepository) ToggleFavorite(ctx context.Context, id, userID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, domain.ErrNotFound
	}

	for attempt := 0; attempt < maxToggleAttempts; attempt++ {
		now := r.now().UTC()
		res, err := r.collection.UpdateOne(ctx,
			bson.M{"_id": oid, "favorites": userID},
			bson.M{"$pull": bson.M{"favorites": userID}, "$set": bson.M{"updated_at": now}})
		if err != nil {
			return false, mapError("unfavorite", err)
		}
		if res.MatchedCount == 1 {
			return false, nil
		}

		res, err = r.collection.UpdateOne(ctx,
			bson.M{"_id": oid, "favorites": bson.M{"$ne": userID}},
			bson.M{"$addToSet": bson.M{"favorites": userID}, "$set": bson.M{"updated_at": now}})
		if err != nil {
			return false, mapError("favorite", err)
		}
		if res.MatchedCount == 1 {
			return true, nil
		}

		n, err := r.collection.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return false, mapError("favorite", err)
		}
		if n == 0 {
			return false, domain.ErrNotFound
		}
		r.logger.Debug("Favorite toggle raced, retrying", zap.String("listing_id", id), zap.Int("attempt", attempt+1))
	}
	return false, domain.ErrUnavailable
}

func criteriaFilter(c domain.Criteria) bson.M {
	filter := bson.M{}
	if c.AvailableOnly {
		filter["is_available"] = true
	}
	if c.Species != "" {
		filter["species"] = string(c.Species)
	}
	if c.OwnerID != "" {
		filter["owner"] = c.OwnerID
	}
	if c.MinPrice != nil || c.MaxPrice != nil {
		price := bson.M{}
		if c.MinPrice != nil {
			price["$gte"] = *c.MinPrice
		}
		if c.MaxPrice != nil {
			price["$lte"] = *c.MaxPrice
		}
		filter["price"] = price
	}
	if c.Location != "" {
		filter["location"] = primitive.Regex{Pattern: regexp.QuoteMeta(c.Location), Options: "i"}
	}
	if c.Text != "" {
		filter["$text"] = bson.M{"$search": c.Text}
	}
	return filter
}

func (r *ListingRepository) Search(ctx context.Context, c domain.Criteria) ([]*domain.Listing, int64, error) {
	filter := criteriaFilter(c)

	findOptions := options.Find().SetSkip(c.Skip)
	if c.Limit > 0 {
		findOptions.SetLimit(c.Limit)
	}
	if c.Text != "" {
		score := bson.M{"$meta": "textScore"}
		findOptions.SetProjection(bson.M{"score": score})
		findOptions.SetSort(bson.D{{Key: "score", Value: score}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	} else {
		findOptions.SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		r.logger.Error("Failed to search listings", zap.Error(err))
		return nil, 0, mapError("search listings", err)
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode listings", zap.Error(err))
		return nil, 0, mapError("decode listings", err)
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count listings", zap.Error(err))
		return nil, 0, mapError("count listings", err)
	}
	return toDomainListings(docs), total, nil
}

func (r *ListingRepository) findNewestFirst(ctx context.Context, filter bson.M) ([]*domain.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapError("find listings", err)
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mapError("decode listings", err)
	}
	return toDomainListings(docs), nil
}

func (r *ListingRepository) FindByOwner(ctx context.Context, ownerID string) ([]*domain.Listing, error) {
	return r.findNewestFirst(ctx, bson.M{"owner": ownerID})
}

func (r *ListingRepository) FindFavoritedBy(ctx context.Context, userID string) ([]*domain.Listing, error) {
	return r.findNewestFirst(ctx, bson.M{"favorites": userID})
}
