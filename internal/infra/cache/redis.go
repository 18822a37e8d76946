package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "todo:authz:"

// CachedDecision is an allow decision remembered for a verified token.
type CachedDecision struct {
	SubjectID string `json:"subject_id"`
	ExpiresAt int64  `json:"expires_at"`
}

// DecisionCache stores allow decisions keyed by token hash. Get returns
// (nil, nil) on a miss.
type DecisionCache interface {
	Get(ctx context.Context, tokenHash string) (*CachedDecision, error)
	Set(ctx context.Context, tokenHash string, value *CachedDecision, ttl time.Duration) error
}

type redisCache struct {
	client redis.Cmdable
}

func NewRedisClient(url string, poolSize int) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	opt.PoolSize = poolSize

	client := redis.NewClient(opt)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

func NewDecisionCache(client redis.Cmdable) DecisionCache {
	return &redisCache{client: client}
}

// HashToken derives the cache key material from a raw token.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func (r *redisCache) Get(ctx context.Context, tokenHash string) (*CachedDecision, error) {
	val, err := r.client.Get(ctx, keyPrefix+tokenHash).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var decision CachedDecision
	if err := json.Unmarshal([]byte(val), &decision); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached decision: %w", err)
	}

	return &decision, nil
}

func (r *redisCache) Set(ctx context.Context, tokenHash string, value *CachedDecision, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cached decision: %w", err)
	}

	if err := r.client.Set(ctx, keyPrefix+tokenHash, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set redis cache: %w", err)
	}

	return nil
}
