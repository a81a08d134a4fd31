package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"metro/internal/middleware"
)

// ResponseCache keeps replayable API responses in Redis as JSON.
type ResponseCache struct {
	client *redis.Client
}

// NewResponseCache creates a new ResponseCache.
func NewResponseCache(client *redis.Client) *ResponseCache {
	return &ResponseCache{client: client}
}

// Get returns the stored response, or nil if the key is unknown.
func (s *ResponseCache) Get(ctx context.Context, key string) (*middleware.CachedResponse, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var resp middleware.CachedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Set stores a response for ttl.
func (s *ResponseCache) Set(ctx context.Context, key string, resp *middleware.CachedResponse, ttl time.Duration) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}
