package http

import (
	"github.com/shopspring/decimal"

	"payment-service/internal/domain"
)

type CreateOrderRequest struct {
	ArtworkID string `json:"artworkId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"omitempty,min=1,max=1000"`
}

// CreateOrderResponse carries the amount in minor units, as the checkout
// widget expects.
type CreateOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}

func (r VerifyPaymentRequest) confirmation() domain.PaymentConfirmation {
	return domain.PaymentConfirmation{
		GatewayOrderID:   r.OrderID,
		GatewayPaymentID: r.PaymentID,
		GatewaySignature: r.Signature,
	}
}

type RecordOrderRequest struct {
	VerifyPaymentRequest
	ArtworkID       string          `json:"artworkId" binding:"required"`
	Quantity        int             `json:"quantity" binding:"required,min=1,max=1000"`
	Amount          decimal.Decimal `json:"amount"`
	ShippingAddress string          `json:"shippingAddress" binding:"required"`
	BillingAddress  string          `json:"billingAddress"`
	FullName        string          `json:"fullName" binding:"required"`
	Mobile          string          `json:"mobile" binding:"required"`
	AltMobile       string          `json:"altMobile"`
}

type UpdateShipmentRequest struct {
	ShipmentStatus string `json:"shipmentStatus" binding:"required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	OrderID string `json:"orderId,omitempty"`
}
