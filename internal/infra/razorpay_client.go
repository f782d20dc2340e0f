package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"payment-service/internal/domain"
)

var ErrGatewayNotFound = errors.New("gateway resource not found")

type GatewayOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type GatewayOrder struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
	Notes    map[string]string
}

type orderResponse struct {
	ID       string          `json:"id"`
	Entity   string          `json:"entity"`
	Amount   int64           `json:"amount"`
	Currency string          `json:"currency"`
	Receipt  string          `json:"receipt"`
	Status   string          `json:"status"`
	Notes    json.RawMessage `json:"notes"`
}

type paymentResponse struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	OrderID  string `json:"order_id"`
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("gateway returned status %d: %s", e.code, e.body)
}

// RazorpayClient talks to the Razorpay orders and payments API. All calls
// share one circuit breaker; client errors (4xx) do not trip it.
type RazorpayClient struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     *slog.Logger
}

func NewRazorpayClient(baseURL, keyID, keySecret string, timeout time.Duration, logger *slog.Logger) *RazorpayClient {
	c := &RazorpayClient{
		baseURL:    baseURL,
		keyID:      keyID,
		keySecret:  keySecret,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "razorpay",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			var se *statusError
			if errors.As(err, &se) {
				return se.code < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

func (c *RazorpayClient) CreateOrder(ctx context.Context, req GatewayOrderRequest) (*GatewayOrder, error) {
	const op = "create order"
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal gateway order: %w", err)
	}

	body, err := c.do(ctx, op, http.MethodPost, "/v1/orders", payload)
	if err != nil {
		return nil, err
	}

	order, err := decodeOrder(body)
	if err != nil {
		return nil, &domain.GatewayUnavailableError{Op: op, Err: err}
	}
	if order.Amount != req.Amount {
		return nil, &domain.GatewayUnavailableError{Op: op, Err: &domain.MalformedResponseError{Source: "gateway order", Field: "amount"}}
	}
	if order.Currency != req.Currency {
		return nil, &domain.GatewayUnavailableError{Op: op, Err: &domain.MalformedResponseError{Source: "gateway order", Field: "currency"}}
	}
	return order, nil
}

func (c *RazorpayClient) FetchOrder(ctx context.Context, orderID string) (*GatewayOrder, error) {
	const op = "fetch order"
	body, err := c.do(ctx, op, http.MethodGet, "/v1/orders/"+orderID, nil)
	if err != nil {
		return nil, err
	}
	order, err := decodeOrder(body)
	if err != nil {
		return nil, &domain.GatewayUnavailableError{Op: op, Err: err}
	}
	return order, nil
}

func (c *RazorpayClient) FetchPayment(ctx context.Context, paymentID string) (*domain.GatewayPayment, error) {
	const op = "fetch payment"
	body, err := c.do(ctx, op, http.MethodGet, "/v1/payments/"+paymentID, nil)
	if err != nil {
		return nil, err
	}

	var p paymentResponse
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, &domain.GatewayUnavailableError{Op: op, Err: &domain.MalformedResponseError{Source: "gateway payment", Field: "body"}}
	}
	switch {
	case p.ID == "":
		return nil, &domain.GatewayUnavailableError{Op: op, Err: &domain.MalformedResponseError{Source: "gateway payment", Field: "id"}}
	case p.Entity != "payment":
		return nil, &domain.GatewayUnavailableError{Op: op, Err: &domain.MalformedResponseError{Source: "gateway payment", Field: "entity"}}
	}

	return &domain.GatewayPayment{
		ID:       p.ID,
		OrderID:  p.OrderID,
		Amount:   p.Amount,
		Currency: p.Currency,
		Status:   p.Status,
	}, nil
}

func (c *RazorpayClient) do(ctx context.Context, op, method, path string, payload []byte) ([]byte, error) {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		req.SetBasicAuth(c.keyID, c.keySecret)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &statusError{code: resp.StatusCode, body: string(data)}
		}
		return data, nil
	})
	if err == nil {
		return body, nil
	}

	var se *statusError
	if errors.As(err, &se) && se.code == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", op, ErrGatewayNotFound)
	}
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		err = &domain.TimeoutError{Op: "gateway " + op}
	}
	c.logger.Error("gateway call failed", "op", op, "path", path, "error", err)
	return nil, &domain.GatewayUnavailableError{Op: op, Err: err}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func decodeOrder(body []byte) (*GatewayOrder, error) {
	var r orderResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, &domain.MalformedResponseError{Source: "gateway order", Field: "body"}
	}
	switch {
	case r.ID == "":
		return nil, &domain.MalformedResponseError{Source: "gateway order", Field: "id"}
	case r.Entity != "order":
		return nil, &domain.MalformedResponseError{Source: "gateway order", Field: "entity"}
	case r.Amount <= 0:
		return nil, &domain.MalformedResponseError{Source: "gateway order", Field: "amount"}
	}

	// Razorpay encodes empty notes as [] rather than {}.
	notes := map[string]string{}
	if len(r.Notes) > 0 && r.Notes[0] == '{' {
		if err := json.Unmarshal(r.Notes, &notes); err != nil {
			return nil, &domain.MalformedResponseError{Source: "gateway order", Field: "notes"}
		}
	}

	return &GatewayOrder{
		ID:       r.ID,
		Amount:   r.Amount,
		Currency: r.Currency,
		Receipt:  r.Receipt,
		Status:   r.Status,
		Notes:    notes,
	}, nil
}
