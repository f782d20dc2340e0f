package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"payment-service/internal/domain"
	"payment-service/internal/infra"
)

type MockOrderRepository struct {
	mock.Mock
}

type MockArtworkRepository struct {
	mock.Mock
}

type MockGatewayClient struct {
	mock.Mock
}

type MockPublisher struct {
	mock.Mock
}

type MockIntentStore struct {
	mock.Mock
}

type MockArtworkCache struct {
	mock.Mock
}

type MockReconciliationStore struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, message any) error {
	args := m.Called(ctx, topic, message)
	return args.Error(0)
}

func (m *MockGatewayClient) CreateOrder(ctx context.Context, req infra.GatewayOrderRequest) (*infra.GatewayOrder, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.GatewayOrder), args.Error(1)
}

func (m *MockGatewayClient) FetchOrder(ctx context.Context, orderID string) (*infra.GatewayOrder, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.GatewayOrder), args.Error(1)
}

func (m *MockGatewayClient) FetchPayment(ctx context.Context, paymentID string) (*domain.GatewayPayment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GatewayPayment), args.Error(1)
}

func (m *MockArtworkRepository) FindByID(ctx context.Context, id string) (*domain.Artwork, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Artwork), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByArtist(ctx context.Context, artistID string) ([]domain.Order, error) {
	args := m.Called(ctx, artistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateShipment(ctx context.Context, order *domain.Order, from domain.ShipmentStatus) error {
	args := m.Called(ctx, order, from)
	return args.Error(0)
}

func (m *MockOrderRepository) DeleteTerminal(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockIntentStore) Put(ctx context.Context, intent *domain.PaymentOrderIntent) error {
	args := m.Called(ctx, intent)
	return args.Error(0)
}

func (m *MockIntentStore) Get(ctx context.Context, gatewayOrderID string) (*domain.PaymentOrderIntent, error) {
	args := m.Called(ctx, gatewayOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentOrderIntent), args.Error(1)
}

func (m *MockIntentStore) Delete(ctx context.Context, gatewayOrderID string) error {
	args := m.Called(ctx, gatewayOrderID)
	return args.Error(0)
}

func (m *MockArtworkCache) Get(ctx context.Context, id string) (*domain.Artwork, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Artwork), args.Error(1)
}

func (m *MockArtworkCache) Set(ctx context.Context, artwork *domain.Artwork) error {
	args := m.Called(ctx, artwork)
	return args.Error(0)
}

func (m *MockReconciliationStore) Park(ctx context.Context, entry *domain.UnrecordedPayment) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockReconciliationStore) List(ctx context.Context) ([]domain.UnrecordedPayment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UnrecordedPayment), args.Error(1)
}

func (m *MockReconciliationStore) Get(ctx context.Context, paymentID string) (*domain.UnrecordedPayment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UnrecordedPayment), args.Error(1)
}

func (m *MockReconciliationStore) Remove(ctx context.Context, paymentID string) error {
	args := m.Called(ctx, paymentID)
	return args.Error(0)
}
