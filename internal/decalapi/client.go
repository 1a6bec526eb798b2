// Package decalapi is a read-only client for the decal service REST API.
package decalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	pathOrders           = "/orders"
	pathDecalServices    = "/decal-services"
	pathStores           = "/stores"
	pathEmployees        = "/employees"
	pathCustomers        = "/customers"
	pathCustomerVehicles = "/customer-vehicles"

	maxErrorBody = 4 << 10
)

// APIError reports a non-2xx response from the API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("decalapi: %s %s returned status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("decalapi: %s %s returned status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Client wraps GET calls against the REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient constructs a client. A non-positive timeout falls back to 15s.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListOrders fetches orders, forwarding the date bounds as query parameters.
func (c *Client) ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error) {
	query := url.Values{}
	if !filter.StartDate.IsZero() {
		query.Set("startDate", filter.StartDate.Format(time.DateOnly))
	}
	if !filter.EndDate.IsZero() {
		query.Set("endDate", filter.EndDate.Format(time.DateOnly))
	}
	return list[Order](ctx, c, pathOrders, query)
}

// ListDecalServices fetches the decal service catalog.
func (c *Client) ListDecalServices(ctx context.Context) ([]DecalService, error) {
	return list[DecalService](ctx, c, pathDecalServices, nil)
}

// ListStores fetches all stores.
func (c *Client) ListStores(ctx context.Context) ([]Store, error) {
	return list[Store](ctx, c, pathStores, nil)
}

// ListEmployees fetches all employee accounts.
func (c *Client) ListEmployees(ctx context.Context) ([]Employee, error) {
	return list[Employee](ctx, c, pathEmployees, nil)
}

// ListCustomers fetches all customers.
func (c *Client) ListCustomers(ctx context.Context) ([]Customer, error) {
	return list[Customer](ctx, c, pathCustomers, nil)
}

// ListCustomerVehicles fetches all customer/vehicle links.
func (c *Client) ListCustomerVehicles(ctx context.Context) ([]CustomerVehicle, error) {
	return list[CustomerVehicle](ctx, c, pathCustomerVehicles, nil)
}

// Ping checks that the API answers an authenticated read.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.get(ctx, pathStores, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func list[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	resp, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decalapi: read %s: %w", path, err)
	}
	items, err := decodeList[T](body)
	if err != nil {
		return nil, fmt.Errorf("decalapi: decode %s: %w", path, err)
	}
	return items, nil
}

// decodeList accepts either a bare JSON array or a {"data": [...]} envelope.
func decodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var envelope struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == nil {
		return []T{}, nil
	}
	return envelope.Data, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("decalapi: GET %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer func() {
			_ = resp.Body.Close()
		}()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			Method:     http.MethodGet,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}
	return resp, nil
}
