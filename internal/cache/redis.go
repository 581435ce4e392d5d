package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/constants"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/dex"
	"github.com/redis/go-redis/v9"
)

// RedisTokenCache caches token descriptors under token:meta:<address>.
type RedisTokenCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisTokenCache wraps client. ttl of 0 keeps entries until evicted.
func NewRedisTokenCache(client redis.UniversalClient, ttl time.Duration) *RedisTokenCache {
	return &RedisTokenCache{client: client, ttl: ttl}
}

func tokenKey(address string) string {
	return constants.RedisKeyTokenPrefix + address
}

func (c *RedisTokenCache) GetToken(ctx context.Context, address string) (dex.TokenDescriptor, bool, error) {
	var desc dex.TokenDescriptor

	data, err := c.client.Get(ctx, tokenKey(address)).Bytes()
	if errors.Is(err, redis.Nil) {
		return desc, false, nil
	}
	if err != nil {
		return desc, false, fmt.Errorf("failed to read token %s: %w", address, err)
	}

	if err := json.Unmarshal(data, &desc); err != nil {
		// A corrupt entry is a miss; the next SetToken overwrites it.
		return dex.TokenDescriptor{}, false, nil
	}
	return desc, true, nil
}

func (c *RedisTokenCache) SetToken(ctx context.Context, desc dex.TokenDescriptor) error {
	if desc.Address == "" {
		return fmt.Errorf("token descriptor has no address")
	}

	data, err := json.Marshal(desc)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := c.client.Set(ctx, tokenKey(desc.Address), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache token %s: %w", desc.Address, err)
	}
	return nil
}

func (c *RedisTokenCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisTokenCache) Close() error {
	return c.client.Close()
}
