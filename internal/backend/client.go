// Package backend holds thin typed clients for the external order/payment
// service. The storefront only relays display state from it: nothing here
// verifies or processes a payment.
package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrOrderNotFound is returned when the payment API knows no such order code.
var ErrOrderNotFound = errors.New("order not found")

// PaymentStatus is the display state of one order's payment, exactly as the
// backend reports it.
type PaymentStatus struct {
	OrderCode  string          `json:"orderCode"`
	Status     string          `json:"status"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	ApprovedAt *time.Time      `json:"approvedAt,omitempty"`
}

// Client calls the external order/payment API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// NewClient creates a Client for the API rooted at baseURL. The transport is
// traced, so backend calls show up as spans under the inbound request.
func NewClient(baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse backend base URL")
	}

	return &Client{
		baseURL: u,
		http: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

// PaymentStatus looks up the payment display state for one order code.
func (c *Client) PaymentStatus(ctx context.Context, orderCode string) (*PaymentStatus, error) {
	u := c.baseURL.JoinPath("payments", url.PathEscape(orderCode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build payment status request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "payment status request")
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrOrderNotFound
	default:
		// Drain so the connection can be reused before reporting.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, errors.Errorf("payment status: unexpected status %d", resp.StatusCode)
	}

	var ps PaymentStatus
	if err := json.NewDecoder(resp.Body).Decode(&ps); err != nil {
		return nil, errors.Wrap(err, "decode payment status")
	}
	return &ps, nil
}
