// Package client is a thin Go client for the catalog REST API. Each method
// performs a single round trip; there is no retrying, caching, or batching.
// Every failure is wrapped with the name of the operation that caused it.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"catalog/internal/models"
)

// APIError is a non-2xx response from the catalog API.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string // set on validation failures
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s (status %d): %v", e.Message, e.StatusCode, e.Fields)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// IsNotFound reports whether the error is a 404 from the API.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsValidation reports whether the error is a 400 from the API.
func (e *APIError) IsValidation() bool {
	return e.StatusCode == http.StatusBadRequest
}

// Client calls the catalog REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken sets the bearer token sent on every request. Write operations
// require one.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New creates a Client for the API rooted at baseURL (e.g.
// "http://localhost:8080/api/v1").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListProducts retrieves every product in the catalog.
func (c *Client) ListProducts() ([]models.Product, error) {
	var products []models.Product
	if err := c.do(http.MethodGet, "/products", nil, &products); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// GetProduct retrieves one product by its ID.
func (c *Client) GetProduct(id string) (*models.Product, error) {
	var product models.Product
	if err := c.do(http.MethodGet, "/products/"+url.PathEscape(id), nil, &product); err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &product, nil
}

// ListProductsByCategory retrieves the products in one category. An unknown
// category yields an empty slice.
func (c *Client) ListProductsByCategory(category string) ([]models.Product, error) {
	var products []models.Product
	if err := c.do(http.MethodGet, "/products/category/"+url.PathEscape(category), nil, &products); err != nil {
		return nil, fmt.Errorf("list products by category: %w", err)
	}
	return products, nil
}

// ListCategories retrieves the distinct categories in the catalog.
func (c *Client) ListCategories() ([]string, error) {
	var categories []string
	if err := c.do(http.MethodGet, "/products/categories", nil, &categories); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// CreateProduct stores a new product and returns it as stored, including
// the assigned ID and timestamps.
func (c *Client) CreateProduct(product models.Product) (*models.Product, error) {
	var created models.Product
	if err := c.do(http.MethodPost, "/products", product, &created); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &created, nil
}

// UpdateProduct applies a partial update and returns the merged record.
func (c *Client) UpdateProduct(id string, patch models.ProductPatch) (*models.Product, error) {
	var updated models.Product
	if err := c.do(http.MethodPut, "/products/"+url.PathEscape(id), patch, &updated); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return &updated, nil
}

// DeleteProduct removes a product permanently.
func (c *Client) DeleteProduct(id string) error {
	if err := c.do(http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// Login authenticates against the API and returns a bearer token.
func (c *Client) Login(username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(http.MethodPost, "/auth/login", body, &resp); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	return resp.Token, nil
}

// do performs one request. A non-2xx status is decoded into an *APIError;
// on success the response body is decoded into out when out is non-nil.
func (c *Client) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var errBody struct {
			Message string            `json:"message"`
			Error   string            `json:"error"`
			Errors  map[string]string `json:"errors"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr == nil {
			if errBody.Message != "" {
				apiErr.Message = errBody.Message
			}
			if errBody.Error != "" {
				apiErr.Message = apiErr.Message + ": " + errBody.Error
			}
			apiErr.Fields = errBody.Errors
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}
