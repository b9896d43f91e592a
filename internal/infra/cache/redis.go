package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xavierca1/doula-crm/internal/entity"
)

const accountSearchPrefix = "crm:account_search:"

// NewRedisClient parses a redis:// URL and pings the server before returning.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// AccountSearchCache keeps short-lived copies of account picker results.
type AccountSearchCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewAccountSearchCache(client *redis.Client, ttl time.Duration) *AccountSearchCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &AccountSearchCache{Redis: client, TTL: ttl}
}

func accountSearchKey(term string) string {
	return accountSearchPrefix + strings.ToLower(strings.TrimSpace(term))
}

// Get reports a miss as (nil, false, nil).
func (c *AccountSearchCache) Get(ctx context.Context, term string) ([]entity.AccountSearchResult, bool, error) {
	raw, err := c.Redis.Get(ctx, accountSearchKey(term)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read account search cache: %w", err)
	}

	var results []entity.AccountSearchResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, false, fmt.Errorf("decode account search cache: %w", err)
	}
	return results, true, nil
}

func (c *AccountSearchCache) Set(ctx context.Context, term string, results []entity.AccountSearchResult) error {
	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode account search cache: %w", err)
	}
	if err := c.Redis.Set(ctx, accountSearchKey(term), raw, c.TTL).Err(); err != nil {
		return fmt.Errorf("write account search cache: %w", err)
	}
	return nil
}

// Invalidate drops every cached search. Called after a conversion creates an account.
func (c *AccountSearchCache) Invalidate(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.Redis.Scan(ctx, cursor, accountSearchPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("scan account search cache: %w", err)
		}
		if len(keys) > 0 {
			if err := c.Redis.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("clear account search cache: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
