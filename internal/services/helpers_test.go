package services

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"payment-service/internal/domain"
	"payment-service/internal/mocks"
	"payment-service/internal/payment"
)

const (
	TestSecret       = "rzp_test_secret"
	TestArtworkID    = "art-1"
	TestArtistID     = "artist-1"
	TestBuyerID      = "buyer-1"
	TestGatewayOrder = "order_Abc123"
	TestPaymentID    = "pay_Xyz789"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSettings() Settings {
	return Settings{
		DeliveryFee:    decimal.NewFromInt(50),
		Currency:       "INR",
		RequestTimeout: time.Second,
	}
}

func CreateMockArtwork(id string, cost int64, available bool) *domain.Artwork {
	return &domain.Artwork{
		ID:           id,
		ArtistID:     TestArtistID,
		Title:        "Monsoon",
		Cost:         decimal.NewFromInt(cost),
		Availability: available,
	}
}

func CreateMockOrder(id string, status domain.OrderStatus, shipment domain.ShipmentStatus) *domain.Order {
	return &domain.Order{
		ID:                id,
		BuyerID:           TestBuyerID,
		ArtworkID:         TestArtworkID,
		ArtistID:          TestArtistID,
		Quantity:          2,
		Amount:            decimal.NewFromInt(1050),
		DeliveryFee:       decimal.NewFromInt(50),
		Currency:          "INR",
		Status:            status,
		ShipmentStatus:    shipment,
		OrderedAt:         time.Now(),
		RazorpayOrderID:   TestGatewayOrder,
		RazorpayPaymentID: TestPaymentID,
	}
}

// testIntent is two artworks at 500 plus the 50 delivery fee.
func testIntent() *domain.PaymentOrderIntent {
	return &domain.PaymentOrderIntent{
		GatewayOrderID: TestGatewayOrder,
		ItemID:         TestArtworkID,
		BuyerID:        TestBuyerID,
		Quantity:       2,
		Amount:         decimal.NewFromInt(1050),
		AmountMinor:    105000,
		DeliveryFee:    decimal.NewFromInt(50),
		Currency:       "INR",
	}
}

func testVerifier(t testing.TB) *payment.Verifier {
	v, err := payment.NewVerifier(TestSecret)
	require.NoError(t, err)
	return v
}

func validInput(t testing.TB) RecordOrderInput {
	return RecordOrderInput{
		BuyerID: TestBuyerID,
		Confirmation: domain.PaymentConfirmation{
			GatewayOrderID:   TestGatewayOrder,
			GatewayPaymentID: TestPaymentID,
			GatewaySignature: testVerifier(t).Sign(TestGatewayOrder, TestPaymentID),
		},
		ItemID:          TestArtworkID,
		Quantity:        2,
		Amount:          decimal.NewFromInt(1050),
		ShippingAddress: "12 MG Road, Pune",
		BillingAddress:  "12 MG Road, Pune",
		FullName:        "Asha Rao",
		Mobile:          "9876543210",
	}
}

type orderMocks struct {
	repo      *mocks.MockOrderRepository
	artworks  *mocks.MockArtworkRepository
	gateway   *mocks.MockGatewayClient
	publisher *mocks.MockPublisher
	intents   *mocks.MockIntentStore
	recon     *mocks.MockReconciliationStore
}

func newTestOrderService(t *testing.T) (*OrderService, *orderMocks) {
	m := &orderMocks{
		repo:      new(mocks.MockOrderRepository),
		artworks:  new(mocks.MockArtworkRepository),
		gateway:   new(mocks.MockGatewayClient),
		publisher: new(mocks.MockPublisher),
		intents:   new(mocks.MockIntentStore),
		recon:     new(mocks.MockReconciliationStore),
	}
	s := NewOrderService(m.repo, m.artworks, m.gateway, testVerifier(t), m.publisher, testSettings(), testLogger())
	s.SetIntentStore(m.intents)
	s.SetReconciliationStore(m.recon)
	return s, m
}

func (m *orderMocks) assertExpectations(t *testing.T) {
	m.repo.AssertExpectations(t)
	m.artworks.AssertExpectations(t)
	m.gateway.AssertExpectations(t)
	m.intents.AssertExpectations(t)
	m.recon.AssertExpectations(t)
}
