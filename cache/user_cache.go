// Package cache keeps serialized user documents in Redis in front of the
// user repository.
package cache

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"socialnet/models"
)

// UserCache is a best-effort cache: misses and backend failures both
// report ok=false and the caller falls back to the store.
type UserCache interface {
	Get(ctx context.Context, id string) (*models.User, bool)
	Set(ctx context.Context, user *models.User)
	Delete(ctx context.Context, ids ...string)
}

type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisUserCache(client *redis.Client, ttl time.Duration) *RedisUserCache {
	return &RedisUserCache{client: client, ttl: ttl}
}

func key(id string) string {
	return "user:" + id
}

func (c *RedisUserCache) Get(ctx context.Context, id string) (*models.User, bool) {
	raw, err := c.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if !stderrors.Is(err, redis.Nil) {
			logrus.WithError(err).WithField("user_id", id).Warn("Redis get failed")
		}
		return nil, false
	}
	// BSON keeps the fields the JSON encoding hides (password hash, google id)
	var user models.User
	if err := bson.Unmarshal(raw, &user); err != nil {
		logrus.WithError(err).WithField("user_id", id).Warn("Failed to unmarshal cached user")
		return nil, false
	}
	return &user, true
}

func (c *RedisUserCache) Set(ctx context.Context, user *models.User) {
	raw, err := bson.Marshal(user)
	if err != nil {
		logrus.WithError(err).Warn("Failed to marshal user for cache")
		return
	}
	if err := c.client.Set(ctx, key(user.ID.Hex()), raw, c.ttl).Err(); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID.Hex()).Warn("Redis set failed")
	}
}

func (c *RedisUserCache) Delete(ctx context.Context, ids ...string) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logrus.WithError(err).WithField("keys", keys).Warn("Redis delete failed")
	}
}

// Noop disables caching
type Noop struct{}

func (Noop) Get(context.Context, string) (*models.User, bool) { return nil, false }
func (Noop) Set(context.Context, *models.User)                {}
func (Noop) Delete(context.Context, ...string)                {}
