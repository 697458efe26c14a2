package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/operman-code/petme/internal/listing/domain"
	"github.com/operman-code/petme/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const profileKeyPrefix = "user:profile:"

// ProfileCache is a read-through redis cache in front of a domain.UserLookup.
// Redis failures degrade to the underlying lookup rather than failing the read.
type ProfileCache struct {
	client *redis.Client
	next   domain.UserLookup
	ttl    time.Duration
	logger *logger.Logger
}

// NewRedisClient connects and pings redis.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func NewProfileCache(client *redis.Client, next domain.UserLookup, ttl time.Duration, log *logger.Logger) *ProfileCache {
	return &ProfileCache{
		client: client,
		next:   next,
		ttl:    ttl,
		logger: log.Named("ProfileCache"),
	}
}

func (c *ProfileCache) GetPublicProfile(ctx context.Context, userID string) (*domain.OwnerProfile, error) {
	key := profileKeyPrefix + userID

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p domain.OwnerProfile
		if err := json.Unmarshal(data, &p); err == nil {
			return &p, nil
		}
		c.logger.Warn("Dropping undecodable cached profile", zap.String("user_id", userID))
		c.client.Del(ctx, key)
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("Redis read failed, falling back to store", zap.String("user_id", userID), zap.Error(err))
	}

	p, err := c.next.GetPublicProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(p); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("Redis write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return p, nil
}
