package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusCompleted OrderStatus = "completed"
	StatusCanceled  OrderStatus = "canceled"
)

// Order is one durable purchase record. Amount and DeliveryFee are the
// values charged at checkout and are never recomputed.
type Order struct {
	ID                string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BuyerID           string          `json:"buyer_id" gorm:"type:varchar(64);not null;index"`
	ArtworkID         string          `json:"artwork_id" gorm:"type:varchar(64);not null;index"`
	ArtistID          string          `json:"artist_id" gorm:"type:varchar(64);index"`
	Quantity          int             `json:"quantity" gorm:"not null"`
	Amount            decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	DeliveryFee       decimal.Decimal `json:"delivery_fee" gorm:"type:numeric(12,2);not null"`
	Currency          string          `json:"currency" gorm:"type:varchar(3);not null"`
	Status            OrderStatus     `json:"status" gorm:"type:varchar(16);not null;default:'paid'"`
	ShipmentStatus    ShipmentStatus  `json:"shipment_status" gorm:"type:varchar(16)"`
	OrderedAt         time.Time       `json:"ordered_at" gorm:"not null"`
	UpdatedAt         time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
	ShippingAddress   string          `json:"shipping_address" gorm:"type:text"`
	BillingAddress    string          `json:"billing_address" gorm:"type:text"`
	FullName          string          `json:"full_name" gorm:"type:varchar(255)"`
	Mobile            string          `json:"mobile" gorm:"type:varchar(32)"`
	AltMobile         string          `json:"alt_mobile" gorm:"type:varchar(32)"`
	RazorpayOrderID   string          `json:"razorpay_order_id" gorm:"type:varchar(64);index"`
	RazorpayPaymentID string          `json:"razorpay_payment_id" gorm:"type:varchar(64);not null;uniqueIndex"`
}

func (Order) TableName() string { return "orders" }
