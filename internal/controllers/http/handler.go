package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"payment-service/internal/domain"
	"payment-service/internal/services"
)

type Handler struct {
	intents  *services.IntentService
	payments *services.PaymentService
	orders   *services.OrderService
	auth     *Auth
	limiter  *RateLimiter
	health   func(context.Context) error
	logger   *slog.Logger
}

func NewHandler(i *services.IntentService, p *services.PaymentService, o *services.OrderService, auth *Auth, logger *slog.Logger) *Handler {
	return &Handler{intents: i, payments: p, orders: o, auth: auth, logger: logger}
}

func (h *Handler) SetRateLimiter(l *RateLimiter) {
	h.limiter = l
}

// SetHealthCheck installs the probe behind /healthz.
func (h *Handler) SetHealthCheck(fn func(context.Context) error) {
	h.health = fn
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)

	api := r.Group("/api")
	if h.limiter != nil {
		api.Use(h.limiter.Middleware())
	}

	checkout := api.Group("", h.auth.Optional())
	checkout.POST("/create-order", recoverWith(h.logger, ErrorResponse{Error: "Order creation failed"}), h.CreateOrder)
	checkout.POST("/verify-payment", recoverWith(h.logger, gin.H{"success": false}), h.VerifyPayment)

	authed := api.Group("", h.auth.Required())
	authed.POST("/orders", h.RecordOrder)
	authed.GET("/orders", h.ListOrders)
	authed.GET("/orders/:id", h.GetOrder)
	authed.POST("/orders/:id/cancel", h.CancelOrder)
	authed.DELETE("/orders/:id", h.DeleteOrder)
	authed.GET("/artist/orders", h.ListArtistOrders)
	authed.PATCH("/artist/orders/:id/shipment", h.UpdateShipment)

	admin := authed.Group("/admin", RequireAdmin())
	admin.GET("/reconciliation", h.ListUnrecorded)
	admin.POST("/reconciliation/:paymentId/replay", h.ReplayUnrecorded)
}

func (h *Handler) Health(c *gin.Context) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.health(ctx); err != nil {
			h.logger.Warn("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if bindFailedOn(err, "ArtworkID", "artworkId") || !bindFailedOn(err, "Quantity", "quantity") {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid artwork ID"})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid quantity"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	var buyerID string
	if caller, ok := callerFrom(c); ok {
		buyerID = caller.UserID
	}

	intent, err := h.intents.CreateOrderIntent(c.Request.Context(), req.ArtworkID, req.Quantity, buyerID)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid artwork ID"})
			return
		}
		if errors.Is(err, domain.ErrInvalidOrderInput) {
			h.logger.Info("order intent rejected", "artwork_id", req.ArtworkID, "quantity", req.Quantity, "error", err)
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid quantity"})
			return
		}
		h.logger.Error("order intent failed", "artwork_id", req.ArtworkID, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Order creation failed"})
		return
	}

	c.JSON(http.StatusOK, CreateOrderResponse{
		ID:       intent.GatewayOrderID,
		Amount:   intent.AmountMinor,
		Currency: intent.Currency,
	})
}

func (h *Handler) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false})
		return
	}
	if !h.payments.VerifyPayment(c.Request.Context(), req.confirmation()) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) RecordOrder(c *gin.Context) {
	caller, _ := callerFrom(c)

	var req RecordOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid order details"})
		return
	}

	order, err := h.orders.RecordOrder(c.Request.Context(), services.RecordOrderInput{
		BuyerID:         caller.UserID,
		Confirmation:    req.confirmation(),
		ItemID:          req.ArtworkID,
		Quantity:        req.Quantity,
		Amount:          req.Amount,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		FullName:        req.FullName,
		Mobile:          req.Mobile,
		AltMobile:       req.AltMobile,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) ListOrders(c *gin.Context) {
	caller, _ := callerFrom(c)
	orders, err := h.orders.ListBuyerOrders(c.Request.Context(), caller.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) ListArtistOrders(c *gin.Context) {
	caller, _ := callerFrom(c)
	orders, err := h.orders.ListArtistOrders(c.Request.Context(), caller.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) GetOrder(c *gin.Context) {
	caller, _ := callerFrom(c)
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) CancelOrder(c *gin.Context) {
	caller, _ := callerFrom(c)
	order, err := h.orders.CancelOrder(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	caller, _ := callerFrom(c)
	if err := h.orders.DeleteOrder(c.Request.Context(), c.Param("id"), caller); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) UpdateShipment(c *gin.Context) {
	caller, _ := callerFrom(c)

	var req UpdateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "shipmentStatus required"})
		return
	}
	target, err := domain.ParseShipmentStatus(req.ShipmentStatus)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown shipment status"})
		return
	}

	order, err := h.orders.UpdateShipment(c.Request.Context(), c.Param("id"), target, caller)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) ListUnrecorded(c *gin.Context) {
	entries, err := h.orders.ListUnrecorded(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) ReplayUnrecorded(c *gin.Context) {
	order, err := h.orders.ReplayUnrecorded(c.Request.Context(), c.Param("paymentId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// bindFailedOn reports whether a bind error concerns the given struct field
// or JSON key.
func bindFailedOn(err error, field, key string) bool {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == field {
				return true
			}
		}
	}
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &typeErr) && typeErr.Field == key
}

// writeError maps service errors to a status and a message that is safe to
// show the client. The underlying error is only logged.
func (h *Handler) writeError(c *gin.Context, err error) {
	var (
		dupErr     *domain.DuplicatePaymentError
		timeoutErr *domain.TimeoutError
		gwErr      *domain.GatewayUnavailableError
	)

	switch {
	case errors.As(err, &dupErr):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "payment already recorded", OrderID: dupErr.OrderID})
		return
	case errors.Is(err, domain.ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "payment verification failed"})
		return
	case errors.Is(err, domain.ErrInvalidOrderInput):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid order details"})
		return
	case errors.Is(err, domain.ErrAmountMismatch),
		errors.Is(err, domain.ErrIntentNotFound),
		errors.Is(err, domain.ErrPaymentNotSettled):
		h.logger.Warn("order rejected", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "payment does not match checkout"})
		return
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
		return
	case errors.Is(err, domain.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "order not found"})
		return
	case errors.Is(err, domain.ErrNotParked):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no unrecorded payment"})
		return
	case errors.Is(err, domain.ErrIllegalTransition):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "illegal status change"})
		return
	case errors.Is(err, domain.ErrOrderNotDeletable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "only completed or canceled orders can be deleted"})
		return
	case errors.Is(err, services.ErrReconciliationDisabled):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "reconciliation unavailable"})
		return
	}

	h.logger.Error("request failed", "path", c.FullPath(), "error", err)
	switch {
	case errors.As(err, &timeoutErr):
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: "request timed out"})
	case errors.As(err, &gwErr):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "payment gateway unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
