package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"payment-service/internal/domain"
)

// Settings are shared by the payment services.
type Settings struct {
	DeliveryFee    decimal.Decimal
	Currency       string
	RequestTimeout time.Duration
}

func bounded(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

func asTimeout(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.TimeoutError{Op: op}
	}
	return err
}
