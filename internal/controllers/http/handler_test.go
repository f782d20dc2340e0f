package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"payment-service/internal/domain"
	"payment-service/internal/infra"
	"payment-service/internal/mocks"
	"payment-service/internal/payment"
	"payment-service/internal/services"
)

const (
	testJWTSecret = "supabase-test-secret"
	testKeySecret = "rzp_test_secret"
)

type testServer struct {
	router   *gin.Engine
	verifier *payment.Verifier
	repo     *mocks.MockOrderRepository
	artworks *mocks.MockArtworkRepository
	gateway  *mocks.MockGatewayClient
	pub      *mocks.MockPublisher
}

func newTestServer(t *testing.T, limiter *RateLimiter) *testServer {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	verifier, err := payment.NewVerifier(testKeySecret)
	require.NoError(t, err)

	ts := &testServer{
		verifier: verifier,
		repo:     new(mocks.MockOrderRepository),
		artworks: new(mocks.MockArtworkRepository),
		gateway:  new(mocks.MockGatewayClient),
		pub:      new(mocks.MockPublisher),
	}
	ts.pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	settings := services.Settings{DeliveryFee: decimal.NewFromInt(50), Currency: "INR", RequestTimeout: time.Second}
	h := NewHandler(
		services.NewIntentService(ts.artworks, ts.gateway, settings, logger),
		services.NewPaymentService(verifier, logger),
		services.NewOrderService(ts.repo, ts.artworks, ts.gateway, verifier, ts.pub, settings, logger),
		NewAuth(testJWTSecret, logger),
		logger,
	)
	if limiter != nil {
		h.SetRateLimiter(limiter)
	}

	ts.router = gin.New()
	h.RegisterRoutes(ts.router)
	return ts
}

func token(t *testing.T, sub, role string) string {
	claims := jwt.MapClaims{
		"sub":          sub,
		"exp":          time.Now().Add(time.Hour).Unix(),
		"app_metadata": map[string]any{"role": role},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return "Bearer " + s
}

func (ts *testServer) do(method, path, auth string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func flipLast(sig string) string {
	if sig[len(sig)-1] == '0' {
		return sig[:len(sig)-1] + "1"
	}
	return sig[:len(sig)-1] + "0"
}

func artwork() *domain.Artwork {
	return &domain.Artwork{ID: "art-1", ArtistID: "artist-1", Title: "Monsoon", Cost: decimal.NewFromInt(500), Availability: true}
}

func TestCreateOrder(t *testing.T) {
	t.Run("priced artwork mints a gateway order", func(t *testing.T) {
		ts := newTestServer(t, nil)
		ts.artworks.On("FindByID", mock.Anything, "art-1").Return(artwork(), nil)
		ts.gateway.On("CreateOrder", mock.Anything, mock.MatchedBy(func(r infra.GatewayOrderRequest) bool {
			return r.Amount == 105000 && r.Currency == "INR"
		})).Return(&infra.GatewayOrder{ID: "order_Abc123", Amount: 105000, Currency: "INR"}, nil)

		w := ts.do(http.MethodPost, "/api/create-order", "", gin.H{"artworkId": "art-1", "quantity": 2})

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "order_Abc123", body["id"])
		assert.Equal(t, float64(105000), body["amount"])
		assert.Equal(t, "INR", body["currency"])
	})

	t.Run("unknown artwork makes no gateway call", func(t *testing.T) {
		ts := newTestServer(t, nil)
		ts.artworks.On("FindByID", mock.Anything, "missing").Return(nil, nil)

		w := ts.do(http.MethodPost, "/api/create-order", "", gin.H{"artworkId": "missing"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid artwork ID", decode(t, w)["error"])
		ts.gateway.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("missing artwork id", func(t *testing.T) {
		ts := newTestServer(t, nil)

		w := ts.do(http.MethodPost, "/api/create-order", "", gin.H{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid artwork ID", decode(t, w)["error"])
	})

	t.Run("bad quantity", func(t *testing.T) {
		for _, q := range []any{-1, 0.5, "2", 5000} {
			ts := newTestServer(t, nil)

			w := ts.do(http.MethodPost, "/api/create-order", "", gin.H{"artworkId": "art-1", "quantity": q})

			assert.Equal(t, http.StatusBadRequest, w.Code, "quantity %v", q)
			assert.Equal(t, "Invalid quantity", decode(t, w)["error"], "quantity %v", q)
			ts.artworks.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		}
	})

	t.Run("missing artwork id wins over bad quantity", func(t *testing.T) {
		ts := newTestServer(t, nil)

		w := ts.do(http.MethodPost, "/api/create-order", "", gin.H{"quantity": -1})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid artwork ID", decode(t, w)["error"])
	})

	t.Run("amount beyond storable total", func(t *testing.T) {
		ts := newTestServer(t, nil)
		a := artwork()
		a.Cost = decimal.RequireFromString("9999999999")
		ts.artworks.On("FindByID", mock.Anything, "art-1").Return(a, nil)

		w := ts.do(http.MethodPost, "/api/create-order", "", gin.H{"artworkId": "art-1", "quantity": 1000})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid quantity", decode(t, w)["error"])
		ts.gateway.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("gateway failure is generic", func(t *testing.T) {
		ts := newTestServer(t, nil)
		ts.artworks.On("FindByID", mock.Anything, "art-1").Return(artwork(), nil)
		ts.gateway.On("CreateOrder", mock.Anything, mock.Anything).
			Return(nil, &domain.GatewayUnavailableError{Op: "create order", Err: assert.AnError})

		w := ts.do(http.MethodPost, "/api/create-order", "", gin.H{"artworkId": "art-1"})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Order creation failed", decode(t, w)["error"])
		assert.NotContains(t, w.Body.String(), assert.AnError.Error())
	})
}

func TestVerifyPayment(t *testing.T) {
	ts := newTestServer(t, nil)
	sig := ts.verifier.Sign("order_Abc123", "pay_Xyz789")

	tests := []struct {
		name    string
		body    any
		code    int
		success bool
	}{
		{
			name:    "valid signature",
			body:    gin.H{"razorpay_order_id": "order_Abc123", "razorpay_payment_id": "pay_Xyz789", "razorpay_signature": sig},
			code:    http.StatusOK,
			success: true,
		},
		{
			name: "tampered signature",
			body: gin.H{"razorpay_order_id": "order_Abc123", "razorpay_payment_id": "pay_Xyz789", "razorpay_signature": flipLast(sig)},
			code: http.StatusBadRequest,
		},
		{
			name: "missing fields",
			body: gin.H{"razorpay_order_id": "order_Abc123"},
			code: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(http.MethodPost, "/api/verify-payment", "", tt.body)
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.success, decode(t, w)["success"])
		})
	}
}

func recordBody(sig string) gin.H {
	return gin.H{
		"razorpay_order_id":   "order_Abc123",
		"razorpay_payment_id": "pay_Xyz789",
		"razorpay_signature":  sig,
		"artworkId":           "art-1",
		"quantity":            2,
		"amount":              1050,
		"shippingAddress":     "12 MG Road, Pune",
		"fullName":            "Asha Rao",
		"mobile":              "9876543210",
	}
}

func TestRecordOrder(t *testing.T) {
	t.Run("requires a token", func(t *testing.T) {
		ts := newTestServer(t, nil)
		w := ts.do(http.MethodPost, "/api/orders", "", recordBody("x"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("tampered signature writes nothing", func(t *testing.T) {
		ts := newTestServer(t, nil)
		sig := ts.verifier.Sign("order_Abc123", "pay_Other")

		w := ts.do(http.MethodPost, "/api/orders", token(t, "buyer-1", ""), recordBody(sig))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		ts.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("verified payment is recorded", func(t *testing.T) {
		ts := newTestServer(t, nil)
		ts.gateway.On("FetchOrder", mock.Anything, "order_Abc123").Return(&infra.GatewayOrder{
			ID: "order_Abc123", Amount: 105000, Currency: "INR",
			Notes: map[string]string{"artwork_id": "art-1", "quantity": "2", "buyer_id": "buyer-1", "delivery_fee": "50"},
		}, nil)
		ts.gateway.On("FetchPayment", mock.Anything, "pay_Xyz789").Return(&domain.GatewayPayment{
			ID: "pay_Xyz789", OrderID: "order_Abc123", Amount: 105000, Currency: "INR", Status: "captured",
		}, nil)
		ts.artworks.On("FindByID", mock.Anything, "art-1").Return(artwork(), nil)
		ts.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)

		w := ts.do(http.MethodPost, "/api/orders", token(t, "buyer-1", ""), recordBody(ts.verifier.Sign("order_Abc123", "pay_Xyz789")))

		require.Equal(t, http.StatusCreated, w.Code)
		body := decode(t, w)
		assert.Equal(t, "paid", body["status"])
		assert.Equal(t, "1050", body["amount"])
		assert.Equal(t, "buyer-1", body["buyer_id"])
	})

	t.Run("duplicate callback reports existing order", func(t *testing.T) {
		ts := newTestServer(t, nil)
		ts.gateway.On("FetchOrder", mock.Anything, "order_Abc123").Return(&infra.GatewayOrder{
			ID: "order_Abc123", Amount: 105000, Currency: "INR",
			Notes: map[string]string{"artwork_id": "art-1", "quantity": "2", "buyer_id": "buyer-1", "delivery_fee": "50"},
		}, nil)
		ts.gateway.On("FetchPayment", mock.Anything, "pay_Xyz789").Return(&domain.GatewayPayment{
			ID: "pay_Xyz789", OrderID: "order_Abc123", Amount: 105000, Currency: "INR", Status: "captured",
		}, nil)
		ts.artworks.On("FindByID", mock.Anything, "art-1").Return(artwork(), nil)
		ts.repo.On("Create", mock.Anything, mock.Anything).Return(&domain.DuplicatePaymentError{PaymentID: "pay_Xyz789"})
		ts.repo.On("FindByPaymentID", mock.Anything, "pay_Xyz789").Return(&domain.Order{ID: "order-0"}, nil)

		w := ts.do(http.MethodPost, "/api/orders", token(t, "buyer-1", ""), recordBody(ts.verifier.Sign("order_Abc123", "pay_Xyz789")))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "order-0", decode(t, w)["orderId"])
	})
}

func TestShipmentAndDelete(t *testing.T) {
	paidOrder := func() *domain.Order {
		return &domain.Order{ID: "order-1", BuyerID: "buyer-1", ArtistID: "artist-1", Status: domain.StatusPaid, ShipmentStatus: domain.ShipmentPending}
	}

	t.Run("artist confirms", func(t *testing.T) {
		ts := newTestServer(t, nil)
		ts.repo.On("FindByID", mock.Anything, "order-1").Return(paidOrder(), nil)
		ts.repo.On("UpdateShipment", mock.Anything, mock.Anything, domain.ShipmentPending).Return(nil)

		w := ts.do(http.MethodPatch, "/api/artist/orders/order-1/shipment", token(t, "artist-1", ""), gin.H{"shipmentStatus": "confirm"})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "confirm", decode(t, w)["shipment_status"])
	})

	t.Run("unknown status", func(t *testing.T) {
		ts := newTestServer(t, nil)
		w := ts.do(http.MethodPatch, "/api/artist/orders/order-1/shipment", token(t, "artist-1", ""), gin.H{"shipmentStatus": "lost"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("regression is rejected", func(t *testing.T) {
		ts := newTestServer(t, nil)
		o := paidOrder()
		o.ShipmentStatus = domain.ShipmentShipped
		ts.repo.On("FindByID", mock.Anything, "order-1").Return(o, nil)

		w := ts.do(http.MethodPatch, "/api/artist/orders/order-1/shipment", token(t, "artist-1", ""), gin.H{"shipmentStatus": "pending"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("live order cannot be deleted", func(t *testing.T) {
		ts := newTestServer(t, nil)
		ts.repo.On("FindByID", mock.Anything, "order-1").Return(paidOrder(), nil)

		w := ts.do(http.MethodDelete, "/api/orders/order-1", token(t, "buyer-1", ""), nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("buyer cancels", func(t *testing.T) {
		ts := newTestServer(t, nil)
		ts.repo.On("FindByID", mock.Anything, "order-1").Return(paidOrder(), nil)
		ts.repo.On("UpdateShipment", mock.Anything, mock.Anything, domain.ShipmentPending).Return(nil)

		w := ts.do(http.MethodPost, "/api/orders/order-1/cancel", token(t, "buyer-1", ""), nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "canceled", decode(t, w)["status"])
	})
}

func TestAdminRoutes(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodGet, "/api/admin/reconciliation", token(t, "buyer-1", ""), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodGet, "/api/admin/reconciliation", token(t, "ops", "admin"), nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRateLimiter(t *testing.T) {
	ts := newTestServer(t, NewRateLimiter(0.001, 1))
	body := gin.H{"razorpay_order_id": "a"}

	first := ts.do(http.MethodPost, "/api/verify-payment", "", body)
	second := ts.do(http.MethodPost, "/api/verify-payment", "", body)

	assert.Equal(t, http.StatusBadRequest, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)
	w := ts.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
