// Package redis holds the Redis-backed caches and ledgers of the payment
// service.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"payment-service/internal/domain"
)

const intentKeyPrefix = "payment:intent:"

func intentKey(gatewayOrderID string) string {
	return intentKeyPrefix + gatewayOrderID
}

// RedisIntentStore remembers what was minted for each gateway order so
// the order writer can check a confirmation against it.
type RedisIntentStore struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

func NewIntentStore(client goredis.UniversalClient, ttl time.Duration) *RedisIntentStore {
	return &RedisIntentStore{client: client, ttl: ttl}
}

func (s *RedisIntentStore) Put(ctx context.Context, intent *domain.PaymentOrderIntent) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("marshal intent: %w", err)
	}
	return s.client.Set(ctx, intentKey(intent.GatewayOrderID), data, s.ttl).Err()
}

func (s *RedisIntentStore) Get(ctx context.Context, gatewayOrderID string) (*domain.PaymentOrderIntent, error) {
	data, err := s.client.Get(ctx, intentKey(gatewayOrderID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var intent domain.PaymentOrderIntent
	if err := json.Unmarshal(data, &intent); err != nil {
		return nil, fmt.Errorf("unmarshal intent: %w", err)
	}
	return &intent, nil
}

func (s *RedisIntentStore) Delete(ctx context.Context, gatewayOrderID string) error {
	return s.client.Del(ctx, intentKey(gatewayOrderID)).Err()
}
