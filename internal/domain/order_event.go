package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderPaid         = "order.paid"
	EventOrderShipment     = "order.shipment_updated"
	EventPaymentUnrecorded = "payment.unrecorded"
)

type OrderPaidEvent struct {
	OrderID   string          `json:"orderId"`
	BuyerID   string          `json:"buyerId"`
	ArtworkID string          `json:"artworkId"`
	ArtistID  string          `json:"artistId"`
	Quantity  int             `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
	PaymentID string          `json:"paymentId"`
	OrderedAt time.Time       `json:"orderedAt"`
}

type OrderShipmentEvent struct {
	OrderID        string         `json:"orderId"`
	Status         OrderStatus    `json:"status"`
	ShipmentStatus ShipmentStatus `json:"shipmentStatus"`
	Actor          Actor          `json:"actor"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// UnrecordedPayment is a verified charge whose order row could not be
// written. It is kept until an operator replays it.
type UnrecordedPayment struct {
	PaymentID string    `json:"paymentId"`
	Order     Order     `json:"order"`
	Reason    string    `json:"reason"`
	FailedAt  time.Time `json:"failedAt"`
}
