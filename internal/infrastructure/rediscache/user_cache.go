package rediscache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yudapratama/go-auth-api/internal/domain/entity"
	"github.com/yudapratama/go-auth-api/internal/domain/repository"
	"github.com/yudapratama/go-auth-api/pkg/helpers"
)

// UserCache is a read-through decorator over a UserRepository. GetByID answers
// from Redis when possible; every write invalidates the cached record. Redis
// outages degrade silently to the underlying store. Out-of-band row edits are
// bounded by the TTL.
type UserCache struct {
	next   repository.UserRepository
	rdb    *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewUserCache(next repository.UserRepository, rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *UserCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &UserCache{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func userKey(id string) string { return "user:record:" + id }

func (c *UserCache) Create(ctx context.Context, u *entity.User) error {
	return c.next.Create(ctx, u)
}

func (c *UserCache) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if c.rdb != nil {
		var cached entity.User
		if ok, err := helpers.RedisGetJSON(ctx, c.rdb, userKey(id), &cached); err == nil && ok {
			return &cached, nil
		}
	}
	u, err := c.next.GetByID(ctx, id)
	if err != nil || u == nil {
		return u, err
	}
	if c.rdb != nil {
		if err := helpers.RedisSetJSON(ctx, c.rdb, userKey(id), u, c.ttl); err != nil && c.logger != nil {
			c.logger.WithError(err).WithField("user_id", id).Warn("user cache set failed")
		}
	}
	return u, nil
}

// GetByEmail always hits the store; sign-in must observe current credentials.
func (c *UserCache) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return c.next.GetByEmail(ctx, email)
}

func (c *UserCache) Update(ctx context.Context, u *entity.User) error {
	if err := c.next.Update(ctx, u); err != nil {
		return err
	}
	if c.rdb != nil {
		if err := helpers.RedisDel(ctx, c.rdb, userKey(u.ID)); err != nil && c.logger != nil {
			c.logger.WithError(err).WithField("user_id", u.ID).Warn("user cache invalidation failed")
		}
	}
	return nil
}

var _ repository.UserRepository = (*UserCache)(nil)
