package repository

import (
	"context"

	"payment-service/internal/domain"
)

// OrderRepository finders return (nil, nil) when nothing matches.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error)
	FindByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)
	FindByArtist(ctx context.Context, artistID string) ([]domain.Order, error)
	// UpdateShipment persists order's status pair only if the stored
	// shipment status still equals from.
	UpdateShipment(ctx context.Context, order *domain.Order, from domain.ShipmentStatus) error
	DeleteTerminal(ctx context.Context, id string) error
}

type ArtworkRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Artwork, error)
}
