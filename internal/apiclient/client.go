package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tphummel/equipment_tracker/internal/models"
)

const collectionPath = "/api/equipment"

// Client is an HTTP client for the equipment collection service.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends token as a Bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// APIError is returned when the service answers with an unexpected status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e APIError) Error() string {
	return fmt.Sprintf("equipment API returned status %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// NewClient creates a Client targeting baseURL. Requests carry no timeout:
// a hung call stays pending until its context is cancelled.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized service URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List fetches the full collection.
func (c *Client) List(ctx context.Context) ([]models.Equipment, error) {
	var out []models.Equipment
	if err := c.doJSON(ctx, http.MethodGet, collectionPath, nil, &out); err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	if out == nil {
		out = []models.Equipment{}
	}
	return out, nil
}

// Create POSTs a new record and returns the server-assigned record.
func (c *Client) Create(ctx context.Context, p models.Payload) (*models.Equipment, error) {
	var out models.Equipment
	if err := c.doJSON(ctx, http.MethodPost, collectionPath, p, &out); err != nil {
		return nil, fmt.Errorf("create equipment: %w", err)
	}
	return &out, nil
}

// Update PUTs a full replacement for the record with id.
func (c *Client) Update(ctx context.Context, id string, p models.Payload) (*models.Equipment, error) {
	var out models.Equipment
	if err := c.doJSON(ctx, http.MethodPut, itemPath(id), p, &out); err != nil {
		return nil, fmt.Errorf("update equipment %q: %w", id, err)
	}
	return &out, nil
}

// Delete removes the record with id. Success is judged by status alone.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.doJSON(ctx, http.MethodDelete, itemPath(id), nil, nil); err != nil {
		return fmt.Errorf("delete equipment %q: %w", id, err)
	}
	return nil
}

func itemPath(id string) string {
	return collectionPath + "/" + url.PathEscape(id)
}

// doJSON sends body as JSON and decodes the response into out. Any 2xx
// status counts as success.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return APIError{StatusCode: resp.StatusCode, Body: string(payload)}
	}

	if out == nil {
		return nil
	}
	if len(payload) == 0 {
		return fmt.Errorf("empty response body (status %d)", resp.StatusCode)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
