package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pricehawk/internal/models"
)

// CompareError is a domain-level failure reported by the comparison
// backend: the HTTP exchange succeeded but the comparison itself did not
// (unparseable product URL, blocked scrape, and so on).
type CompareError struct {
	Message string
}

func (e *CompareError) Error() string {
	return e.Message
}

// Client talks to the PriceHawk analysis backend. Both operations are
// idempotent GETs; the client makes a single attempt per call.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Compare requests a comparison for up to two product URLs. At least one
// must be non-empty; a single-source request is valid and comes back with
// one product slot populated.
func (c *Client) Compare(ctx context.Context, flipkartURL, amazonURL string) (*models.ComparisonResult, error) {
	params := url.Values{}
	if flipkartURL != "" {
		params.Set("flipkart_url", flipkartURL)
	}
	if amazonURL != "" {
		params.Set("amazon_url", amazonURL)
	}

	fullURL := fmt.Sprintf("%s/api/compare?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	// The backend reports domain failures as {"error": "..."} on both 200
	// and 4xx responses, so that shape is checked before the status code.
	var domainErr struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &domainErr); err == nil && domainErr.Error != "" {
		return nil, &CompareError{Message: domainErr.Error}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("comparison backend returned status %d", resp.StatusCode)
	}

	var result models.ComparisonResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &result, nil
}

// Dashboard fetches the remote aggregate payload. The payload is opaque
// display data; it is validated only as far as being JSON.
func (c *Client) Dashboard(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/dashboard", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dashboard backend returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("dashboard backend returned invalid JSON")
	}

	return json.RawMessage(body), nil
}
