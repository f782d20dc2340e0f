package infra

import (
	"context"

	"payment-service/internal/domain"
)

type GatewayClientInterface interface {
	CreateOrder(ctx context.Context, req GatewayOrderRequest) (*GatewayOrder, error)
	FetchOrder(ctx context.Context, orderID string) (*GatewayOrder, error)
	FetchPayment(ctx context.Context, paymentID string) (*domain.GatewayPayment, error)
}

var _ GatewayClientInterface = (*RazorpayClient)(nil)
