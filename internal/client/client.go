// Package client talks to the gestock JSON API.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"

	"gestock/internal/domain"
	"gestock/internal/services"
)

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalid           = errors.New("rejected by server")
)

// APIError is a non-2xx answer. Message is the server's "error" field.
type APIError struct {
	Status    int
	Message   string
	Available int64
	Requested int64
}

func (e *APIError) Error() string { return fmt.Sprintf("%d: %s", e.Status, e.Message) }

func (e *APIError) Is(target error) bool {
	switch e.Status {
	case http.StatusUnauthorized:
		return target == ErrUnauthorized
	case http.StatusForbidden:
		return target == ErrForbidden
	case http.StatusNotFound:
		return target == ErrNotFound
	case http.StatusConflict:
		return target == ErrInsufficientStock
	case http.StatusBadRequest:
		return target == ErrInvalid
	}
	return false
}

type errorBody struct {
	Error     string `json:"error"`
	Available int64  `json:"available"`
	Requested int64  `json:"requested"`
}

type Client struct {
	rc *resty.Client
}

// New returns a client for the API at baseURL. The session cookie set by
// Login is kept for later calls.
func New(baseURL string) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetError(&errorBody{})
	return &Client{rc: rc}
}

type OrderRequest struct {
	ClientID    int64  `json:"client_id,omitempty"`
	ProductID   int64  `json:"product_id"`
	Quantity    int64  `json:"quantity"`
	OrderNumber string `json:"order_number,omitempty"`
	OrderDate   string `json:"order_date,omitempty"`
}

type OrderPatch struct {
	ClientID    *int64  `json:"client_id,omitempty"`
	ProductID   *int64  `json:"product_id,omitempty"`
	Quantity    *int64  `json:"quantity,omitempty"`
	OrderNumber *string `json:"order_number,omitempty"`
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsError() {
		return nil
	}
	apiErr := &APIError{Status: resp.StatusCode(), Message: resp.Status()}
	if b, ok := resp.Error().(*errorBody); ok && b.Error != "" {
		apiErr.Message = b.Error
		apiErr.Available = b.Available
		apiErr.Requested = b.Requested
	}
	return apiErr
}

func (c *Client) Login(ctx context.Context, email, password string) error {
	return check(c.rc.R().SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		Post("/api/login"))
}

func (c *Client) Products(ctx context.Context, q string) ([]domain.Product, error) {
	var out []domain.Product
	req := c.rc.R().SetContext(ctx).SetResult(&out)
	if q != "" {
		req.SetQueryParam("q", q)
	}
	return out, check(req.Get("/api/products"))
}

func (c *Client) Orders(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	return out, check(c.rc.R().SetContext(ctx).SetResult(&out).Get("/api/orders"))
}

func (c *Client) CreateOrder(ctx context.Context, in OrderRequest) (domain.Order, error) {
	var out domain.Order
	return out, check(c.rc.R().SetContext(ctx).SetBody(in).SetResult(&out).Post("/api/orders"))
}

func (c *Client) UpdateOrder(ctx context.Context, id int64, patch OrderPatch) (domain.Order, error) {
	var out domain.Order
	return out, check(c.rc.R().SetContext(ctx).SetBody(patch).SetResult(&out).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		Patch("/api/orders/{id}"))
}

// DeleteOrder returns the server's outcome: deleted, deleted_without_restock
// or already_deleted.
func (c *Client) DeleteOrder(ctx context.Context, id int64) (string, error) {
	var out struct {
		Outcome string `json:"outcome"`
	}
	err := check(c.rc.R().SetContext(ctx).SetResult(&out).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		Delete("/api/orders/{id}"))
	return out.Outcome, err
}

// Invoice fetches a client's invoice for date (YYYY-MM-DD, empty for today).
func (c *Client) Invoice(ctx context.Context, clientID int64, date string) (services.Invoice, error) {
	var out services.Invoice
	req := c.rc.R().SetContext(ctx).SetResult(&out).
		SetPathParam("clientId", strconv.FormatInt(clientID, 10))
	if date != "" {
		req.SetQueryParam("date", date)
	}
	return out, check(req.Get("/api/invoices/{clientId}"))
}
