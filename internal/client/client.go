// Package client is a typed HTTP client for the ordering API, used by the
// kitchen board and the customer tool.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vasiliy-maslov/quickorder/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrBadInput = errors.New("bad request")
)

// APIError is a non-2xx answer. It matches ErrNotFound, ErrConflict or
// ErrBadInput by status code.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	case ErrBadInput:
		return e.StatusCode == http.StatusBadRequest
	}
	return false
}

// NewOrder is the body of an order submission.
type NewOrder struct {
	TableID       string              `json:"tableId,omitempty"`
	RestaurantID  string              `json:"restaurantId,omitempty"`
	TableNumber   *int                `json:"tableNumber,omitempty"`
	Items         []model.OrderItem   `json:"items"`
	TotalAmount   int64               `json:"totalAmount"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
}

type Client struct {
	HTTP    *http.Client
	BaseURL string
}

// New returns a client for baseURL with a 10 second request timeout.
func New(baseURL string) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) CreateOrder(ctx context.Context, in NewOrder) (*model.Order, error) {
	var out model.Order
	if err := c.do(ctx, http.MethodPost, "/orders", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	var out model.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrders returns orders newest first, narrowed to statuses if any.
func (c *Client) ListOrders(ctx context.Context, statuses ...model.OrderStatus) ([]model.Order, error) {
	q := url.Values{}
	for _, s := range statuses {
		q.Add("status", string(s))
	}
	var out []model.Order
	if err := c.do(ctx, http.MethodGet, "/orders", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteOrders returns the ids the server actually deleted.
func (c *Client) DeleteOrders(ctx context.Context, ids ...string) ([]string, error) {
	q := url.Values{"id": ids}
	var out struct {
		Deleted []string `json:"deleted"`
	}
	if err := c.do(ctx, http.MethodDelete, "/orders", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Deleted, nil
}

// KitchenOrders returns the active queue, oldest first.
func (c *Client) KitchenOrders(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	if err := c.do(ctx, http.MethodGet, "/kitchen/orders", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SetStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	body := map[string]string{"orderId": id, "status": string(status)}
	var out model.Order
	if err := c.do(ctx, http.MethodPut, "/kitchen/orders", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Advance(ctx context.Context, id string) (*model.Order, error) {
	var out model.Order
	if err := c.do(ctx, http.MethodPost, "/kitchen/orders/"+url.PathEscape(id)+"/advance", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CallWaiter(ctx context.Context, tableNumber int, message string, kind model.RequestType) (*model.ServiceRequest, error) {
	body := map[string]interface{}{"tableNumber": tableNumber, "message": message, "type": string(kind)}
	var out model.ServiceRequest
	if err := c.do(ctx, http.MethodPost, "/service-requests", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ServiceRequests lists waiter calls; an empty status lists all of them.
func (c *Client) ServiceRequests(ctx context.Context, status model.RequestStatus) ([]model.ServiceRequest, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	var out []model.ServiceRequest
	if err := c.do(ctx, http.MethodGet, "/service-requests", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ResolveServiceRequest(ctx context.Context, id string) (*model.ServiceRequest, error) {
	body := map[string]string{"id": id, "status": string(model.RequestResolved)}
	var out model.ServiceRequest
	if err := c.do(ctx, http.MethodPut, "/service-requests", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResetCounter(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/admin/reset-counter", nil, nil, nil)
}

func (c *Client) Products(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	if err := c.do(ctx, http.MethodGet, "/admin/products", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Health reports whether the server's durable backend answers. False means
// the server is serving from its in-memory store.
func (c *Client) Health(ctx context.Context) (bool, error) {
	var out struct {
		Status  string `json:"status"`
		Durable bool   `json:"durable"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &out); err != nil {
		return false, err
	}
	return out.Durable, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}
