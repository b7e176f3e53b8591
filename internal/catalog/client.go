package catalog

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
)

var (
	ErrBadStatus   = errors.New("catalog bad status")
	ErrUnavailable = errors.New("catalog unavailable")
)

// Client talks to a catalog over its HTTP API. Token is sent as a bearer
// token and is only required for writes.
type Client struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewClient(baseURL string) *Client {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 3 * time.Second},
	}
}

func (c *Client) Get(ctx context.Context, id uint64) (Product, error) {
	var p Product
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, http.StatusOK, &p)
	return p, withID(err, id)
}

// List fetches GET /products, passing a non-empty f as query parameters.
func (c *Client) List(ctx context.Context, f Filter) ([]Product, error) {
	path := "/products"
	if q := f.Query(); len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []Product
	err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &out)
	return out, err
}

func (c *Client) Filter(ctx context.Context, f Filter) ([]Product, error) {
	var out []Product
	err := c.do(ctx, http.MethodPost, "/products/search", f, http.StatusOK, &out)
	return out, err
}

func (c *Client) Create(ctx context.Context, np NewProduct) (Product, error) {
	var p Product
	err := c.do(ctx, http.MethodPost, "/products", np, http.StatusCreated, &p)
	return p, err
}

func (c *Client) UpdateInventory(ctx context.Context, id uint64, stock int) (Product, error) {
	var p Product
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/products/%d/stock", id), stockReq{Stock: &stock}, http.StatusOK, &p)
	return p, withID(err, id)
}

func (c *Client) Delete(ctx context.Context, id uint64) error {
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, http.StatusNoContent, nil)
	return withID(err, id)
}

func (c *Client) do(ctx context.Context, method, path string, body any, want int, dst any) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return decodeError(resp)
	}
	if dst == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

type errorBody struct {
	Error   string `json:"error"`
	Details struct {
		Kind   string `json:"kind"`
		Field  string `json:"field"`
		Limit  int    `json:"limit"`
		Reason string `json:"reason"`
		Stock  int    `json:"stock"`
	} `json:"details"`
}

// decodeError maps an error response back onto the catalog error types.
func decodeError(resp *http.Response) error {
	var eb errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &eb)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &CatalogError{Kind: NotFound}
	case resp.StatusCode == http.StatusBadRequest && eb.Details.Kind == string(InvalidStock):
		var cause error
		if eb.Details.Reason != "" {
			cause = &ValidationError{Kind: ValidationKind(eb.Details.Reason), Field: "stock", Limit: eb.Details.Limit}
		}
		return &CatalogError{Kind: InvalidStock, Stock: eb.Details.Stock, Cause: cause}
	case resp.StatusCode == http.StatusBadRequest && eb.Details.Kind != "":
		return &ValidationError{Kind: ValidationKind(eb.Details.Kind), Field: eb.Details.Field, Limit: eb.Details.Limit}
	}

	if eb.Error != "" {
		return fmt.Errorf("%w: status=%d: %s", ErrBadStatus, resp.StatusCode, eb.Error)
	}
	return fmt.Errorf("%w: status=%d", ErrBadStatus, resp.StatusCode)
}

func withID(err error, id uint64) error {
	var ce *CatalogError
	if errors.As(err, &ce) {
		ce.ID = id
	}
	return err
}
