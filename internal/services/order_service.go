package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"payment-service/internal/domain"
	"payment-service/internal/infra"
	rabbit "payment-service/internal/infra/rabbitmq"
	redisinfra "payment-service/internal/infra/redis"
	"payment-service/internal/payment"
	"payment-service/internal/pricing"
	"payment-service/internal/repository"
)

type RecordOrderInput struct {
	BuyerID         string
	Confirmation    domain.PaymentConfirmation
	ItemID          string
	Quantity        int
	Amount          decimal.Decimal
	ShippingAddress string
	BillingAddress  string
	FullName        string
	Mobile          string
	AltMobile       string
}

func (in RecordOrderInput) validate() error {
	var missing []string
	for name, v := range map[string]string{
		"buyer":            in.BuyerID,
		"artwork":          in.ItemID,
		"shipping address": in.ShippingAddress,
		"full name":        in.FullName,
		"mobile":           in.Mobile,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: missing %s", domain.ErrInvalidOrderInput, strings.Join(missing, ", "))
	}
	if in.Quantity < 1 || in.Quantity > pricing.MaxQuantity {
		return fmt.Errorf("%w: quantity %d", domain.ErrInvalidOrderInput, in.Quantity)
	}
	if !in.Amount.IsPositive() {
		return fmt.Errorf("%w: amount %s", domain.ErrInvalidOrderInput, in.Amount)
	}
	return nil
}

type OrderService struct {
	repo      repository.OrderRepository
	artworks  repository.ArtworkRepository
	gateway   infra.GatewayClientInterface
	verifier  *payment.Verifier
	publisher rabbit.PublisherInterface
	intents   redisinfra.IntentStore
	recon     redisinfra.ReconciliationStore
	settings  Settings
	logger    *slog.Logger
	now       func() time.Time
}

func NewOrderService(
	r repository.OrderRepository,
	a repository.ArtworkRepository,
	g infra.GatewayClientInterface,
	v *payment.Verifier,
	pub rabbit.PublisherInterface,
	settings Settings,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		repo:      r,
		artworks:  a,
		gateway:   g,
		verifier:  v,
		publisher: pub,
		settings:  settings,
		logger:    logger,
		now:       time.Now,
	}
}

func (u *OrderService) SetIntentStore(st redisinfra.IntentStore) {
	u.intents = st
}

func (u *OrderService) SetReconciliationStore(st redisinfra.ReconciliationStore) {
	u.recon = st
}

// RecordOrder writes the order for a verified payment. The confirmation is
// checked against its signature, the minted intent and the gateway's view
// of the payment before anything is inserted; a payment id can produce at
// most one record.
func (u *OrderService) RecordOrder(ctx context.Context, in RecordOrderInput) (*domain.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	conf := in.Confirmation
	if !u.verifier.VerifyConfirmation(conf) {
		u.logger.WarnContext(ctx, "order rejected: bad signature", "gateway_order_id", conf.GatewayOrderID)
		return nil, domain.ErrInvalidSignature
	}

	intent, err := u.resolveIntent(ctx, conf.GatewayOrderID)
	if err != nil {
		return nil, err
	}
	if err := matchIntent(intent, in); err != nil {
		u.logger.WarnContext(ctx, "order rejected: intent mismatch",
			"gateway_order_id", conf.GatewayOrderID,
			"gateway_payment_id", conf.GatewayPaymentID,
			"error", err,
		)
		return nil, err
	}
	if err := u.checkGatewayPayment(ctx, conf, intent); err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:                uuid.NewString(),
		BuyerID:           in.BuyerID,
		ArtworkID:         in.ItemID,
		ArtistID:          u.artistOf(ctx, in.ItemID),
		Quantity:          in.Quantity,
		Amount:            intent.Amount,
		DeliveryFee:       intent.DeliveryFee,
		Currency:          intent.Currency,
		Status:            domain.StatusPaid,
		ShipmentStatus:    domain.ShipmentPending,
		OrderedAt:         u.now().UTC(),
		ShippingAddress:   in.ShippingAddress,
		BillingAddress:    in.BillingAddress,
		FullName:          in.FullName,
		Mobile:            in.Mobile,
		AltMobile:         in.AltMobile,
		RazorpayOrderID:   conf.GatewayOrderID,
		RazorpayPaymentID: conf.GatewayPaymentID,
	}

	if err := u.insert(ctx, order); err != nil {
		return nil, err
	}

	if u.intents != nil {
		if err := u.intents.Delete(ctx, conf.GatewayOrderID); err != nil {
			u.logger.Warn("failed to drop payment intent", "gateway_order_id", conf.GatewayOrderID, "error", err)
		}
	}

	u.logger.InfoContext(ctx, "order recorded",
		"order_id", order.ID,
		"gateway_payment_id", order.RazorpayPaymentID,
		"amount", order.Amount.String(),
	)
	go u.publishOrderPaidEvent(context.Background(), order)
	return order, nil
}

func (u *OrderService) insert(ctx context.Context, order *domain.Order) error {
	sctx, cancel := bounded(ctx, u.settings.RequestTimeout)
	defer cancel()

	err := u.repo.Create(sctx, order)
	if err == nil {
		return nil
	}

	var dupErr *domain.DuplicatePaymentError
	if errors.As(err, &dupErr) {
		if existing, ferr := u.repo.FindByPaymentID(ctx, order.RazorpayPaymentID); ferr == nil && existing != nil {
			dupErr.OrderID = existing.ID
		}
		u.logger.WarnContext(ctx, "duplicate payment callback", "gateway_payment_id", order.RazorpayPaymentID, "order_id", dupErr.OrderID)
		return dupErr
	}

	err = asTimeout("order insert", err)
	u.logger.ErrorContext(ctx, "charged payment has no order record",
		"gateway_payment_id", order.RazorpayPaymentID,
		"gateway_order_id", order.RazorpayOrderID,
		"buyer_id", order.BuyerID,
		"amount", order.Amount.String(),
		"error", err,
	)
	u.parkUnrecorded(order, err)
	return err
}

// parkUnrecorded keeps the full record so an operator can replay it.
func (u *OrderService) parkUnrecorded(order *domain.Order, cause error) {
	entry := &domain.UnrecordedPayment{
		PaymentID: order.RazorpayPaymentID,
		Order:     *order,
		Reason:    cause.Error(),
		FailedAt:  u.now().UTC(),
	}
	ctx := context.Background()
	if u.recon != nil {
		if err := u.recon.Park(ctx, entry); err != nil {
			u.logger.Error("failed to park unrecorded payment", "gateway_payment_id", entry.PaymentID, "error", err)
		}
	}
	go func() {
		if err := u.publisher.Publish(ctx, domain.EventPaymentUnrecorded, entry); err != nil {
			u.logger.Error("failed to publish unrecorded payment", "gateway_payment_id", entry.PaymentID, "error", err)
		}
	}()
}

func (u *OrderService) resolveIntent(ctx context.Context, gatewayOrderID string) (*domain.PaymentOrderIntent, error) {
	if u.intents != nil {
		intent, err := u.intents.Get(ctx, gatewayOrderID)
		if err != nil {
			u.logger.Warn("payment intent lookup failed", "gateway_order_id", gatewayOrderID, "error", err)
		} else if intent != nil {
			return intent, nil
		}
	}

	gctx, cancel := bounded(ctx, u.settings.RequestTimeout)
	defer cancel()
	order, err := u.gateway.FetchOrder(gctx, gatewayOrderID)
	if errors.Is(err, infra.ErrGatewayNotFound) {
		return nil, domain.ErrIntentNotFound
	}
	if err != nil {
		return nil, err
	}
	return intentFromGateway(order)
}

func intentFromGateway(order *infra.GatewayOrder) (*domain.PaymentOrderIntent, error) {
	itemID := order.Notes[noteArtworkID]
	quantity, err := strconv.Atoi(order.Notes[noteQuantity])
	if itemID == "" || err != nil {
		return nil, fmt.Errorf("%w: gateway order %s has no checkout notes", domain.ErrIntentNotFound, order.ID)
	}
	fee, err := decimal.NewFromString(order.Notes[noteDeliveryFee])
	if err != nil {
		return nil, fmt.Errorf("%w: gateway order %s has no delivery fee", domain.ErrIntentNotFound, order.ID)
	}
	return &domain.PaymentOrderIntent{
		GatewayOrderID: order.ID,
		ItemID:         itemID,
		BuyerID:        order.Notes[noteBuyerID],
		Quantity:       quantity,
		Amount:         pricing.FromMinorUnits(order.Amount),
		AmountMinor:    order.Amount,
		DeliveryFee:    fee,
		Currency:       order.Currency,
	}, nil
}

// matchIntent ties the confirmation to the checkout that minted it. An
// intent minted without a signed-in buyer cannot be claimed by anyone.
func matchIntent(intent *domain.PaymentOrderIntent, in RecordOrderInput) error {
	if intent.BuyerID == "" || intent.BuyerID != in.BuyerID {
		return domain.ErrForbidden
	}
	switch {
	case intent.ItemID != in.ItemID:
		return fmt.Errorf("%w: artwork differs", domain.ErrAmountMismatch)
	case intent.Quantity != in.Quantity:
		return fmt.Errorf("%w: quantity differs", domain.ErrAmountMismatch)
	case !intent.Amount.Equal(in.Amount):
		return fmt.Errorf("%w: expected %s, got %s", domain.ErrAmountMismatch, intent.Amount, in.Amount)
	}
	return nil
}

// checkGatewayPayment asks the gateway what was actually charged rather
// than trusting the client-reported amount.
func (u *OrderService) checkGatewayPayment(ctx context.Context, conf domain.PaymentConfirmation, intent *domain.PaymentOrderIntent) error {
	gctx, cancel := bounded(ctx, u.settings.RequestTimeout)
	defer cancel()

	p, err := u.gateway.FetchPayment(gctx, conf.GatewayPaymentID)
	if errors.Is(err, infra.ErrGatewayNotFound) {
		return fmt.Errorf("%w: payment %s unknown to gateway", domain.ErrIntentNotFound, conf.GatewayPaymentID)
	}
	if err != nil {
		return err
	}

	switch {
	case p.OrderID != conf.GatewayOrderID:
		return fmt.Errorf("%w: payment belongs to order %s", domain.ErrAmountMismatch, p.OrderID)
	case p.Amount != intent.AmountMinor || p.Currency != intent.Currency:
		return fmt.Errorf("%w: gateway charged %d %s", domain.ErrAmountMismatch, p.Amount, p.Currency)
	case !p.Settled():
		return fmt.Errorf("%w: status %s", domain.ErrPaymentNotSettled, p.Status)
	}
	return nil
}

func (u *OrderService) artistOf(ctx context.Context, artworkID string) string {
	sctx, cancel := bounded(ctx, u.settings.RequestTimeout)
	defer cancel()
	a, err := u.artworks.FindByID(sctx, artworkID)
	if err != nil || a == nil {
		u.logger.Warn("artist lookup failed for order", "artwork_id", artworkID, "error", err)
		return ""
	}
	return a.ArtistID
}

func (u *OrderService) publishOrderPaidEvent(ctx context.Context, order *domain.Order) {
	evt := domain.OrderPaidEvent{
		OrderID:   order.ID,
		BuyerID:   order.BuyerID,
		ArtworkID: order.ArtworkID,
		ArtistID:  order.ArtistID,
		Quantity:  order.Quantity,
		Amount:    order.Amount,
		PaymentID: order.RazorpayPaymentID,
		OrderedAt: order.OrderedAt,
	}
	if err := u.publisher.Publish(ctx, domain.EventOrderPaid, evt); err != nil {
		u.logger.Error("failed to publish event", "pattern", domain.EventOrderPaid, "order_id", order.ID, "error", err)
	}
}

func (u *OrderService) publishShipmentEvent(ctx context.Context, order *domain.Order, actor domain.Actor) {
	evt := domain.OrderShipmentEvent{
		OrderID:        order.ID,
		Status:         order.Status,
		ShipmentStatus: order.ShipmentStatus,
		Actor:          actor,
		UpdatedAt:      u.now().UTC(),
	}
	if err := u.publisher.Publish(ctx, domain.EventOrderShipment, evt); err != nil {
		u.logger.Error("failed to publish event", "pattern", domain.EventOrderShipment, "order_id", order.ID, "error", err)
	}
}

func (u *OrderService) find(ctx context.Context, id string) (*domain.Order, error) {
	sctx, cancel := bounded(ctx, u.settings.RequestTimeout)
	defer cancel()
	o, err := u.repo.FindByID(sctx, id)
	if err != nil {
		return nil, asTimeout("order lookup", err)
	}
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

// GetOrder returns an order visible to its buyer, its artist or an admin.
func (u *OrderService) GetOrder(ctx context.Context, id string, caller domain.Caller) (*domain.Order, error) {
	o, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Admin && caller.UserID != o.BuyerID && caller.UserID != o.ArtistID {
		return nil, domain.ErrForbidden
	}
	return o, nil
}

func (u *OrderService) ListBuyerOrders(ctx context.Context, buyerID string) ([]domain.Order, error) {
	sctx, cancel := bounded(ctx, u.settings.RequestTimeout)
	defer cancel()
	out, err := u.repo.FindByBuyer(sctx, buyerID)
	return out, asTimeout("order list", err)
}

func (u *OrderService) ListArtistOrders(ctx context.Context, artistID string) ([]domain.Order, error) {
	sctx, cancel := bounded(ctx, u.settings.RequestTimeout)
	defer cancel()
	out, err := u.repo.FindByArtist(sctx, artistID)
	return out, asTimeout("order list", err)
}

// CancelOrder is the buyer-side cancel; it only succeeds while the
// shipment is still pending.
func (u *OrderService) CancelOrder(ctx context.Context, id string, caller domain.Caller) (*domain.Order, error) {
	o, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != caller.UserID {
		return nil, domain.ErrForbidden
	}
	return u.transition(ctx, o, domain.ShipmentCanceled, domain.ActorBuyer)
}

// UpdateShipment advances the shipment on behalf of the artist or an admin.
func (u *OrderService) UpdateShipment(ctx context.Context, id string, target domain.ShipmentStatus, caller domain.Caller) (*domain.Order, error) {
	o, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}
	var actor domain.Actor
	switch {
	case caller.Admin:
		actor = domain.ActorAdmin
	case o.ArtistID != "" && o.ArtistID == caller.UserID:
		actor = domain.ActorArtist
	default:
		return nil, domain.ErrForbidden
	}
	return u.transition(ctx, o, target, actor)
}

func (u *OrderService) transition(ctx context.Context, o *domain.Order, target domain.ShipmentStatus, actor domain.Actor) (*domain.Order, error) {
	from := o.ShipmentStatus
	if err := o.Transition(target, actor); err != nil {
		return nil, err
	}

	sctx, cancel := bounded(ctx, u.settings.RequestTimeout)
	defer cancel()
	if err := u.repo.UpdateShipment(sctx, o, from); err != nil {
		return nil, asTimeout("order update", err)
	}

	u.logger.InfoContext(ctx, "order shipment updated",
		"order_id", o.ID,
		"from", string(from),
		"to", string(o.ShipmentStatus),
		"actor", string(actor),
	)
	go u.publishShipmentEvent(context.Background(), o, actor)
	return o, nil
}

// DeleteOrder removes a terminal order at its buyer's request.
func (u *OrderService) DeleteOrder(ctx context.Context, id string, caller domain.Caller) error {
	o, err := u.find(ctx, id)
	if err != nil {
		return err
	}
	if o.BuyerID != caller.UserID {
		return domain.ErrForbidden
	}
	if !o.Deletable() {
		return domain.ErrOrderNotDeletable
	}

	sctx, cancel := bounded(ctx, u.settings.RequestTimeout)
	defer cancel()
	return asTimeout("order delete", u.repo.DeleteTerminal(sctx, id))
}

var ErrReconciliationDisabled = errors.New("reconciliation store not configured")

func (u *OrderService) ListUnrecorded(ctx context.Context) ([]domain.UnrecordedPayment, error) {
	if u.recon == nil {
		return nil, ErrReconciliationDisabled
	}
	return u.recon.List(ctx)
}

// ReplayUnrecorded retries the insert of a parked payment. A payment that
// has meanwhile been recorded is simply cleared.
func (u *OrderService) ReplayUnrecorded(ctx context.Context, paymentID string) (*domain.Order, error) {
	if u.recon == nil {
		return nil, ErrReconciliationDisabled
	}
	entry, err := u.recon.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrNotParked
	}

	order := entry.Order
	sctx, cancel := bounded(ctx, u.settings.RequestTimeout)
	defer cancel()
	err = u.repo.Create(sctx, &order)

	var dupErr *domain.DuplicatePaymentError
	switch {
	case err == nil:
		go u.publishOrderPaidEvent(context.Background(), &order)
	case errors.As(err, &dupErr):
		existing, ferr := u.repo.FindByPaymentID(ctx, paymentID)
		if ferr != nil || existing == nil {
			return nil, err
		}
		order = *existing
	default:
		return nil, asTimeout("order insert", err)
	}

	if err := u.recon.Remove(ctx, paymentID); err != nil {
		u.logger.Warn("failed to clear reconciled payment", "gateway_payment_id", paymentID, "error", err)
	}
	u.logger.InfoContext(ctx, "unrecorded payment reconciled", "gateway_payment_id", paymentID, "order_id", order.ID)
	return &order, nil
}
