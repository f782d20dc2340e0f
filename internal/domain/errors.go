package domain

import (
	"errors"
	"fmt"
)

var (
	ErrItemNotFound      = errors.New("artwork not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrIntentNotFound    = errors.New("payment intent not found")
	ErrInvalidSignature  = errors.New("payment signature mismatch")
	ErrAmountMismatch    = errors.New("payment amount does not match order intent")
	ErrIllegalTransition = errors.New("illegal order status transition")
	ErrOrderNotDeletable = errors.New("order is not in a terminal state")
	ErrForbidden         = errors.New("caller may not act on this order")
	ErrInvalidOrderInput = errors.New("invalid order input")
	ErrPaymentNotSettled = errors.New("payment is not captured")
	ErrNotParked         = errors.New("no unrecorded payment with that id")
)

// GatewayUnavailableError marks a failed or timed out call to the payment
// gateway. Callers may retry.
type GatewayUnavailableError struct {
	Op  string
	Err error
}

func (e *GatewayUnavailableError) Error() string {
	return fmt.Sprintf("payment gateway unavailable: %s: %v", e.Op, e.Err)
}

func (e *GatewayUnavailableError) Unwrap() error { return e.Err }

// ConfigurationError is fatal at startup.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("configuration: %s is required", e.Key)
	}
	return fmt.Sprintf("configuration: %s: %s", e.Key, e.Reason)
}

type AmountPrecisionError struct {
	Amount string
}

func (e *AmountPrecisionError) Error() string {
	return fmt.Sprintf("amount %s has fractional minor units", e.Amount)
}

// DuplicatePaymentError is returned when a gateway payment id has already
// produced an order record. OrderID is the existing record, when known.
type DuplicatePaymentError struct {
	PaymentID string
	OrderID   string
}

func (e *DuplicatePaymentError) Error() string {
	return fmt.Sprintf("payment %s already recorded", e.PaymentID)
}

type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timed out", e.Op)
}

// MalformedResponseError reports an external response that failed schema
// validation.
type MalformedResponseError struct {
	Source string
	Field  string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: %s", e.Source, e.Field)
}
