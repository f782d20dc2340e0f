// Package pricing derives checkout amounts from catalog prices.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"payment-service/internal/domain"
)

// MaxQuantity caps a single checkout line.
const MaxQuantity = 1000

var (
	hundred = decimal.NewFromInt(100)

	// MaxAmount is the largest value the numeric(12,2) amount column holds.
	MaxAmount = decimal.RequireFromString("9999999999.99")
)

// ComputeAmount returns itemCost*quantity + deliveryFee.
func ComputeAmount(itemCost decimal.Decimal, quantity int, deliveryFee decimal.Decimal) (decimal.Decimal, error) {
	if quantity < 1 || quantity > MaxQuantity {
		return decimal.Zero, fmt.Errorf("%w: quantity %d", domain.ErrInvalidOrderInput, quantity)
	}
	if itemCost.IsNegative() || deliveryFee.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative price", domain.ErrInvalidOrderInput)
	}
	amount := itemCost.Mul(decimal.NewFromInt(int64(quantity))).Add(deliveryFee)
	if amount.GreaterThan(MaxAmount) {
		return decimal.Zero, fmt.Errorf("%w: amount %s exceeds %s", domain.ErrInvalidOrderInput, amount, MaxAmount)
	}
	return amount, nil
}

// ToMinorUnits converts an amount to paise. Fractional paise are an error,
// never rounded, and so is a value outside int64.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	minor := amount.Mul(hundred)
	if !minor.IsInteger() {
		return 0, &domain.AmountPrecisionError{Amount: amount.String()}
	}
	if !minor.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: amount %s out of range", domain.ErrInvalidOrderInput, amount)
	}
	return minor.IntPart(), nil
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
