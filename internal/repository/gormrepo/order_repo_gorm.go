package gormrepo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"payment-service/internal/domain"
	"payment-service/internal/repository"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

// Create inserts one order. The unique index on razorpay_payment_id makes a
// second insert for the same payment a DuplicatePaymentError.
func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &domain.DuplicatePaymentError{PaymentID: order.RazorpayPaymentID}
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *orderRepo) FindByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error) {
	return r.first(ctx, "razorpay_payment_id = ?", paymentID)
}

func (r *orderRepo) first(ctx context.Context, query string, arg any) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Where(query, arg).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return &o, nil
}

func (r *orderRepo) FindByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	return r.list(ctx, "buyer_id = ?", buyerID)
}

func (r *orderRepo) FindByArtist(ctx context.Context, artistID string) ([]domain.Order, error) {
	return r.list(ctx, "artist_id = ?", artistID)
}

func (r *orderRepo) list(ctx context.Context, query string, arg any) ([]domain.Order, error) {
	var out []domain.Order
	if err := r.db.WithContext(ctx).Where(query, arg).Order("ordered_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

func (r *orderRepo) UpdateShipment(ctx context.Context, order *domain.Order, from domain.ShipmentStatus) error {
	q := r.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", order.ID)
	if from == domain.ShipmentNone || from == domain.ShipmentPending {
		q = q.Where("(shipment_status IS NULL OR shipment_status IN ?)", []string{"", string(domain.ShipmentPending)})
	} else {
		q = q.Where("shipment_status = ?", from)
	}

	res := q.Updates(map[string]any{
		"status":          order.Status,
		"shipment_status": order.ShipmentStatus,
	})
	if res.Error != nil {
		return fmt.Errorf("update shipment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: order %s changed concurrently", domain.ErrIllegalTransition, order.ID)
	}
	return nil
}

func (r *orderRepo) DeleteTerminal(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status IN ?", id, []string{string(domain.StatusCompleted), string(domain.StatusCanceled)}).
		Delete(&domain.Order{})
	if res.Error != nil {
		return fmt.Errorf("delete order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderNotDeletable
	}
	return nil
}
