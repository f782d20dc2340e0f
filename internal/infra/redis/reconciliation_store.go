package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	goredis "github.com/redis/go-redis/v9"

	"payment-service/internal/domain"
)

const unrecordedKey = "payment:unrecorded"

// RedisReconciliationStore keeps charged-but-unrecorded payments in one
// hash keyed by gateway payment id. Entries never expire.
type RedisReconciliationStore struct {
	client goredis.UniversalClient
}

func NewReconciliationStore(client goredis.UniversalClient) *RedisReconciliationStore {
	return &RedisReconciliationStore{client: client}
}

func (s *RedisReconciliationStore) Park(ctx context.Context, entry *domain.UnrecordedPayment) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal unrecorded payment: %w", err)
	}
	return s.client.HSet(ctx, unrecordedKey, entry.PaymentID, data).Err()
}

func (s *RedisReconciliationStore) List(ctx context.Context) ([]domain.UnrecordedPayment, error) {
	all, err := s.client.HGetAll(ctx, unrecordedKey).Result()
	if err != nil {
		return nil, err
	}

	out := make([]domain.UnrecordedPayment, 0, len(all))
	for id, raw := range all {
		var e domain.UnrecordedPayment
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("unmarshal unrecorded payment %s: %w", id, err)
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FailedAt.Before(out[j].FailedAt) })
	return out, nil
}

func (s *RedisReconciliationStore) Get(ctx context.Context, paymentID string) (*domain.UnrecordedPayment, error) {
	raw, err := s.client.HGet(ctx, unrecordedKey, paymentID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var e domain.UnrecordedPayment
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("unmarshal unrecorded payment %s: %w", paymentID, err)
	}
	return &e, nil
}

func (s *RedisReconciliationStore) Remove(ctx context.Context, paymentID string) error {
	return s.client.HDel(ctx, unrecordedKey, paymentID).Err()
}
