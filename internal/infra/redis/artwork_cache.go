package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"payment-service/internal/domain"
)

type RedisArtworkCache struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

func NewArtworkCache(client goredis.UniversalClient, ttl time.Duration) *RedisArtworkCache {
	return &RedisArtworkCache{client: client, ttl: ttl}
}

func artworkKey(id string) string {
	return "catalog:artwork:" + id
}

// Get returns (nil, nil) on a miss or an unreadable entry.
func (c *RedisArtworkCache) Get(ctx context.Context, id string) (*domain.Artwork, error) {
	data, err := c.client.Get(ctx, artworkKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var a domain.Artwork
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, nil
	}
	return &a, nil
}

func (c *RedisArtworkCache) Set(ctx context.Context, artwork *domain.Artwork) error {
	data, err := json.Marshal(artwork)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, artworkKey(artwork.ID), data, c.ttl).Err()
}
