package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"payment-service/internal/domain"
	"payment-service/internal/infra"
	redisinfra "payment-service/internal/infra/redis"
	"payment-service/internal/pricing"
	"payment-service/internal/repository"
)

const maxReceiptLen = 40

// Gateway order note keys. They let the order writer rebuild an intent
// from the gateway when the local ledger has lost it.
const (
	noteArtworkID   = "artwork_id"
	noteQuantity    = "quantity"
	noteBuyerID     = "buyer_id"
	noteDeliveryFee = "delivery_fee"
)

type IntentService struct {
	artworks repository.ArtworkRepository
	gateway  infra.GatewayClientInterface
	cache    redisinfra.ArtworkCache
	intents  redisinfra.IntentStore
	settings Settings
	logger   *slog.Logger
	group    singleflight.Group
	now      func() time.Time
}

func NewIntentService(a repository.ArtworkRepository, g infra.GatewayClientInterface, settings Settings, logger *slog.Logger) *IntentService {
	return &IntentService{
		artworks: a,
		gateway:  g,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *IntentService) SetArtworkCache(c redisinfra.ArtworkCache) {
	s.cache = c
}

func (s *IntentService) SetIntentStore(st redisinfra.IntentStore) {
	s.intents = st
}

// CreateOrderIntent prices the artwork and mints one gateway order for it.
// Nothing is persisted locally except the optional ledger entry.
func (s *IntentService) CreateOrderIntent(ctx context.Context, itemID string, quantity int, buyerID string) (*domain.PaymentOrderIntent, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, domain.ErrItemNotFound
	}
	if quantity < 1 || quantity > pricing.MaxQuantity {
		return nil, fmt.Errorf("%w: quantity %d", domain.ErrInvalidOrderInput, quantity)
	}

	artwork, err := s.getArtworkWithCache(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !artwork.Purchasable() {
		return nil, domain.ErrItemNotFound
	}

	amount, err := pricing.ComputeAmount(artwork.Cost, quantity, s.settings.DeliveryFee)
	if err != nil {
		return nil, err
	}
	minor, err := pricing.ToMinorUnits(amount)
	if err != nil {
		return nil, err
	}

	now := s.now()
	req := infra.GatewayOrderRequest{
		Amount:   minor,
		Currency: s.settings.Currency,
		Receipt:  receiptFor(itemID, now),
		Notes: map[string]string{
			noteArtworkID:   itemID,
			noteQuantity:    strconv.Itoa(quantity),
			noteDeliveryFee: s.settings.DeliveryFee.String(),
		},
	}
	if buyerID != "" {
		req.Notes[noteBuyerID] = buyerID
	}

	gctx, cancel := bounded(ctx, s.settings.RequestTimeout)
	defer cancel()
	order, err := s.gateway.CreateOrder(gctx, req)
	if err != nil {
		var gwErr *domain.GatewayUnavailableError
		if !errors.As(err, &gwErr) {
			err = &domain.GatewayUnavailableError{Op: "create order", Err: err}
		}
		return nil, err
	}

	intent := &domain.PaymentOrderIntent{
		GatewayOrderID: order.ID,
		ItemID:         itemID,
		BuyerID:        buyerID,
		Quantity:       quantity,
		Amount:         amount,
		AmountMinor:    order.Amount,
		DeliveryFee:    s.settings.DeliveryFee,
		Currency:       order.Currency,
		CreatedAt:      now.UTC(),
	}

	if s.intents != nil {
		if err := s.intents.Put(ctx, intent); err != nil {
			s.logger.Warn("failed to record payment intent", "gateway_order_id", order.ID, "error", err)
		}
	}

	s.logger.Info("payment intent created",
		"gateway_order_id", order.ID,
		"artwork_id", itemID,
		"quantity", quantity,
		"amount_minor", order.Amount,
	)
	return intent, nil
}

func (s *IntentService) getArtworkWithCache(ctx context.Context, id string) (*domain.Artwork, error) {
	if s.cache != nil {
		if a, err := s.cache.Get(ctx, id); err == nil && a != nil {
			return a, nil
		} else if err != nil {
			s.logger.Debug("artwork cache read failed", "artwork_id", id, "error", err)
		}
	}

	// Shared by every caller waiting on id; detached from the first
	// caller's cancellation.
	v, err, _ := s.group.Do(id, func() (any, error) {
		sctx, cancel := bounded(context.WithoutCancel(ctx), s.settings.RequestTimeout)
		defer cancel()
		a, err := s.artworks.FindByID(sctx, id)
		if err != nil {
			return nil, asTimeout("artwork lookup", err)
		}
		if a == nil {
			return nil, domain.ErrItemNotFound
		}
		if s.cache != nil {
			if err := s.cache.Set(sctx, a); err != nil {
				s.logger.Debug("artwork cache write failed", "artwork_id", id, "error", err)
			}
		}
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Artwork), nil
}

// receiptFor builds a receipt unique per attempt. Razorpay caps receipts at
// 40 characters, so long item ids lose their leading characters.
func receiptFor(itemID string, now time.Time) string {
	suffix := "-" + strconv.FormatInt(now.UnixNano(), 36)
	if room := maxReceiptLen - len(suffix); len(itemID) > room {
		itemID = itemID[len(itemID)-room:]
	}
	return itemID + suffix
}
