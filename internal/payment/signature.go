// Package payment verifies Razorpay checkout signatures.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"payment-service/internal/domain"
)

// Verifier checks confirmation signatures against one shared key secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, &domain.ConfigurationError{Key: "RAZORPAY_KEY_SECRET"}
	}
	return &Verifier{secret: []byte(secret)}, nil
}

// Verify reports whether signature is exactly the lower-case hex
// HMAC-SHA256 of orderID|paymentID. Malformed input is a mismatch, not an
// error.
func (v *Verifier) Verify(orderID, paymentID, signature string) bool {
	if v == nil || orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(signature), []byte(v.Sign(orderID, paymentID)))
}

func (v *Verifier) VerifyConfirmation(c domain.PaymentConfirmation) bool {
	return v.Verify(c.GatewayOrderID, c.GatewayPaymentID, c.GatewaySignature)
}

// Sign returns the signature the gateway would produce for the pair.
func (v *Verifier) Sign(orderID, paymentID string) string {
	return hex.EncodeToString(v.sum(orderID, paymentID))
}

func (v *Verifier) sum(orderID, paymentID string) []byte {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return mac.Sum(nil)
}

// VerifySignature is the one-shot form of Verifier.Verify.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	v, err := NewVerifier(secret)
	if err != nil {
		return false
	}
	return v.Verify(orderID, paymentID, signature)
}
