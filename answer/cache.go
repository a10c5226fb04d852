package answer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "legal:answer:"

// Cache stores answers by question and top_k. Get returns nil, nil on a miss.
type Cache interface {
	Get(ctx context.Context, q Query) (*Answer, error)
	Set(ctx context.Context, q Query, a *Answer) error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, q Query) (*Answer, error) {
	data, err := c.client.Get(ctx, cacheKey(q)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached answer: %w", err)
	}

	var a Answer
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached answer: %w", err)
	}
	return &a, nil
}

func (c *RedisCache) Set(ctx context.Context, q Query, a *Answer) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(q), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache answer: %w", err)
	}
	return nil
}

func cacheKey(q Query) string {
	h := sha256.New()
	h.Write([]byte(q.Question))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(q.TopK)))
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil)[:16])
}
