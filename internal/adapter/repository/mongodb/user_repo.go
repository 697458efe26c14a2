package mongodb

import (
	"context"

	"github.com/operman-code/petme/internal/listing/domain"
	"github.com/operman-code/petme/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// UserRepository reads public owner profiles from the users collection, which the
// account service owns. Credentials are never projected.
type UserRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewUserRepository(db *mongo.Database, log *logger.Logger) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
		logger:     log.Named("UserRepository"),
	}
}

var publicProfileProjection = bson.M{"name": 1, "email": 1, "phone": 1, "location": 1, "bio": 1}

func (r *UserRepository) GetPublicProfile(ctx context.Context, userID string) (*domain.OwnerProfile, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var doc userDocument
	opts := options.FindOne().SetProjection(publicProfileProjection)
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&doc); err != nil {
		mapped := mapError("get user", err)
		if mapped != domain.ErrNotFound {
			r.logger.Error("Failed to find user", zap.String("user_id", userID), zap.Error(err))
		}
		return nil, mapped
	}
	return doc.toDomain(), nil
}
