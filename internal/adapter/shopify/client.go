package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pricewave/internal/config/configs"
)

// errThrottled signals an HTTP 429 from the Admin API. The gateway retries
// it with backoff; every other transport error fails immediately.
var errThrottled = errors.New("throttled")

const throttledCode = "THROTTLED"

// Response is the GraphQL envelope returned by the Admin API. Shopify
// reports throttling as a top-level error with code THROTTLED even on
// HTTP 200.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors []ResponseError `json:"errors"`
}

// ResponseError is one top-level GraphQL error.
type ResponseError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

// Throttled reports whether any top-level error carries the THROTTLED code.
func (r *Response) Throttled() bool {
	for _, e := range r.Errors {
		if e.Extensions.Code == throttledCode {
			return true
		}
	}
	return false
}

// graphQLClient abstracts the transport so the gateway can be tested with
// scripted responses.
type graphQLClient interface {
	Do(ctx context.Context, shop, query string, variables map[string]any) (*Response, error)
}

// Client executes GraphQL documents against a shop's Admin API endpoint
// using a single app access token.
type Client struct {
	http       *http.Client
	apiVersion string
	token      string
}

// NewClient builds a Client from configuration.
func NewClient(cfg configs.Shopify) *Client {
	return &Client{
		http:       &http.Client{Timeout: 30 * time.Second},
		apiVersion: cfg.APIVersion,
		token:      cfg.AccessToken,
	}
}

// Do posts the query to https://<shop>/admin/api/<version>/graphql.json.
// HTTP 429 is returned as errThrottled; other non-200 statuses become
// plain errors.
func (c *Client) Do(ctx context.Context, shop, query string, variables map[string]any) (*Response, error) {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shop, c.apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%s: %w", shop, errThrottled)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("admin api returned status %d", resp.StatusCode)
	}

	var out Response
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode admin api response: %w", err)
	}
	return &out, nil
}
