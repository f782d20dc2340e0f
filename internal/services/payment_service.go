package services

import (
	"context"
	"log/slog"

	"payment-service/internal/domain"
	"payment-service/internal/payment"
)

type PaymentService struct {
	verifier *payment.Verifier
	logger   *slog.Logger
}

func NewPaymentService(v *payment.Verifier, logger *slog.Logger) *PaymentService {
	return &PaymentService{verifier: v, logger: logger}
}

// VerifyPayment checks a checkout confirmation. It does not tie the
// confirmation to a buyer; RecordOrder does that before writing anything.
func (s *PaymentService) VerifyPayment(ctx context.Context, c domain.PaymentConfirmation) bool {
	ok := s.verifier.VerifyConfirmation(c)
	if !ok {
		s.logger.WarnContext(ctx, "payment signature rejected",
			"gateway_order_id", c.GatewayOrderID,
			"gateway_payment_id", c.GatewayPaymentID,
		)
		return false
	}
	s.logger.InfoContext(ctx, "payment signature verified",
		"gateway_order_id", c.GatewayOrderID,
		"gateway_payment_id", c.GatewayPaymentID,
	)
	return true
}
