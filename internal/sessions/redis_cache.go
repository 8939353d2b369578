package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/quickkart/marketplace/internal/domain/session"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "quickkart:session:"

// RedisCache keeps live sessions in redis until they expire.
type RedisCache struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb, now: time.Now}
}

func cacheKey(id string) string {
	return keyPrefix + id
}

func (c *RedisCache) Get(ctx context.Context, id string) (session.Session, bool, error) {
	raw, err := c.rdb.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return session.Session{}, false, nil
	}
	if err != nil {
		return session.Session{}, false, err
	}

	var sess session.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return session.Session{}, false, err
	}

	return sess, true, nil
}

func (c *RedisCache) Put(ctx context.Context, sess session.Session) error {
	ttl := sess.ExpiresAt.Sub(c.now())
	if ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, cacheKey(sess.ID), raw, ttl).Err()
}

func (c *RedisCache) Evict(ctx context.Context, ids ...string) error {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, cacheKey(id))
	}

	return c.rdb.Del(ctx, keys...).Err()
}
