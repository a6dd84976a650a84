// Package resilience is the HTTP client for the road-network shock
// simulation service.
package resilience

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPDoer executes HTTP requests. *http.Client satisfies it; tests
// substitute a mock.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client provides access to the simulation service. The base URL is
// injected at construction; there is no ambient default endpoint.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a client for the service at baseURL. No client-side
// timeout is set: simulations legitimately run for minutes and deadline
// control belongs to the caller's context.
func NewClient(baseURL string) *Client {
	return NewClientWithHTTPDoer(baseURL, &http.Client{})
}

// NewClientWithHTTPDoer creates a client with a custom HTTP transport.
func NewClientWithHTTPDoer(baseURL string, doer HTTPDoer) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: doer,
	}
}

// BaseURL returns the configured service address.
func (c *Client) BaseURL() string { return c.baseURL }

// Health checks that the service is reachable and answering.
func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/health", &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("service health is %q", resp.Status)
	}
	return nil
}

// Cities returns the service's default city suggestions. Free-text city
// entry is still allowed; this only seeds the picker.
func (c *Client) Cities(ctx context.Context) ([]string, error) {
	var resp struct {
		DefaultCities []string `json:"default_cities"`
	}
	if err := c.get(ctx, "/cities", &resp); err != nil {
		return nil, err
	}
	return resp.DefaultCities, nil
}

// Scenarios returns the scenario catalog in server order. An empty or
// missing array means no scenarios are available.
func (c *Client) Scenarios(ctx context.Context) ([]string, error) {
	var resp struct {
		Scenarios []string `json:"scenarios"`
	}
	if err := c.get(ctx, "/scenarios", &resp); err != nil {
		return nil, err
	}
	return resp.Scenarios, nil
}

// Simulate submits one shock run and decodes the result.
func (c *Client) Simulate(ctx context.Context, req SimulationRequest) (*SimulationResult, error) {
	var result SimulationResult
	if err := c.post(ctx, "/simulate", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Progressive sweeps a scenario across severities and returns one
// aggregated point per severity step.
func (c *Client) Progressive(ctx context.Context, req ProgressiveRequest) ([]ProgressivePoint, error) {
	var resp struct {
		Results []ProgressivePoint `json:"results"`
	}
	if err := c.post(ctx, "/progressive", req, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &ServiceError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
