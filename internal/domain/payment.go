package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentOrderIntent is what the gateway minted for one checkout attempt.
type PaymentOrderIntent struct {
	GatewayOrderID string          `json:"gatewayOrderId"`
	ItemID         string          `json:"itemId"`
	BuyerID        string          `json:"buyerId,omitempty"`
	Quantity       int             `json:"quantity"`
	Amount         decimal.Decimal `json:"amount"`
	AmountMinor    int64           `json:"amountMinor"`
	DeliveryFee    decimal.Decimal `json:"deliveryFee"`
	Currency       string          `json:"currency"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// PaymentConfirmation comes from the gateway's client-side callback and is
// untrusted until its signature is verified.
type PaymentConfirmation struct {
	GatewayOrderID   string `json:"razorpay_order_id"`
	GatewayPaymentID string `json:"razorpay_payment_id"`
	GatewaySignature string `json:"razorpay_signature"`
}

// GatewayPayment is the gateway's view of a captured payment.
type GatewayPayment struct {
	ID       string
	OrderID  string
	Amount   int64
	Currency string
	Status   string
}

func (p *GatewayPayment) Settled() bool {
	return p.Status == "captured" || p.Status == "authorized"
}
