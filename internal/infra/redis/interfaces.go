package redis

import (
	"context"

	"payment-service/internal/domain"
)

// IntentStore finders return (nil, nil) on a miss.
type IntentStore interface {
	Put(ctx context.Context, intent *domain.PaymentOrderIntent) error
	Get(ctx context.Context, gatewayOrderID string) (*domain.PaymentOrderIntent, error)
	Delete(ctx context.Context, gatewayOrderID string) error
}

type ArtworkCache interface {
	Get(ctx context.Context, id string) (*domain.Artwork, error)
	Set(ctx context.Context, artwork *domain.Artwork) error
}

type ReconciliationStore interface {
	Park(ctx context.Context, entry *domain.UnrecordedPayment) error
	List(ctx context.Context) ([]domain.UnrecordedPayment, error)
	Get(ctx context.Context, paymentID string) (*domain.UnrecordedPayment, error)
	Remove(ctx context.Context, paymentID string) error
}

var (
	_ IntentStore         = (*RedisIntentStore)(nil)
	_ ArtworkCache        = (*RedisArtworkCache)(nil)
	_ ReconciliationStore = (*RedisReconciliationStore)(nil)
)
