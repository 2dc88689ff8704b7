// Package upstream is the HTTP client for the remote case backend. It owns
// transport concerns and hands raw JSON bodies back to the caller; envelope
// normalization lives with the case domain, not here.
package upstream

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
)

const (
	headerTenantID = "x-tenant-id"
	headerUserID   = "x-user-id"

	defaultTimeout = 30 * time.Second
)

// Client calls the remote case API on behalf of a tenant/user identity.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client. baseURL is required; a zero timeout falls
// back to the default.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("UPSTREAM_BASE_URL is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: trimmed,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// ListCases fetches the raw list-endpoint payload, optionally filtered by
// status.
func (c *Client) ListCases(ctx context.Context, tenantID, userID, status string) (json.RawMessage, error) {
	path := "/tenants/" + url.PathEscape(tenantID) + "/cases"
	if strings.TrimSpace(status) != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	return c.doJSON(ctx, http.MethodGet, path, tenantID, userID, nil)
}

// CreateCase posts a new case record and returns the raw response body.
func (c *Client) CreateCase(ctx context.Context, tenantID, userID string, payload any) (json.RawMessage, error) {
	path := "/tenants/" + url.PathEscape(tenantID) + "/cases"
	return c.doJSON(ctx, http.MethodPost, path, tenantID, userID, payload)
}

// GetCase fetches the raw detail-endpoint payload for one case.
func (c *Client) GetCase(ctx context.Context, tenantID, userID, caseID string) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodGet, c.casePath(tenantID, caseID), tenantID, userID, nil)
}

// UpdateCase sends the full case object back to the backend. The wire format
// is always the whole record, never a partial diff.
func (c *Client) UpdateCase(ctx context.Context, tenantID, userID, caseID string, payload any) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodPatch, c.casePath(tenantID, caseID), tenantID, userID, payload)
}

// Calculate asks the backend to recompute ratios and risk flags.
func (c *Client) Calculate(ctx context.Context, tenantID, userID, caseID string) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodPost, c.casePath(tenantID, caseID)+"/calculate", tenantID, userID, nil)
}

// GuidelinesQuery forwards a guideline retrieval question; the retrieval
// logic itself is entirely backend-owned.
func (c *Client) GuidelinesQuery(ctx context.Context, tenantID, userID, caseID string, input any) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodPost, c.casePath(tenantID, caseID)+"/guidelines/query", tenantID, userID, input)
}

// Snapshot requests a point-in-time snapshot of the case.
func (c *Client) Snapshot(ctx context.Context, tenantID, userID, caseID string) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodPost, c.casePath(tenantID, caseID)+"/snapshot", tenantID, userID, nil)
}

// UpdateOutcome posts the outcome section.
func (c *Client) UpdateOutcome(ctx context.Context, tenantID, userID, caseID string, payload any) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodPost, c.casePath(tenantID, caseID)+"/outcome", tenantID, userID, payload)
}

func (c *Client) casePath(tenantID, caseID string) string {
	return "/tenants/" + url.PathEscape(tenantID) + "/cases/" + url.PathEscape(caseID)
}

func (c *Client) doJSON(ctx context.Context, method, path, tenantID, userID string, payload any) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		blob, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(blob)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerTenantID, tenantID)
	req.Header.Set(headerUserID, userID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if err := detectHTMLResponse(resp.Header.Get("Content-Type"), blob, c.baseURL); err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s %s failed status=%d body=%s", method, path, resp.StatusCode, truncate(blob, 512))
	}
	return blob, nil
}

// detectHTMLResponse catches the classic misconfiguration where the base URL
// points at a web server instead of the case API: the "JSON" that comes back
// is an HTML page.
func detectHTMLResponse(contentType string, body []byte, baseURL string) error {
	lowered := strings.ToLower(string(body[:min(len(body), 256)]))
	if strings.Contains(strings.ToLower(contentType), "text/html") ||
		strings.Contains(lowered, "<!doctype html") ||
		strings.Contains(lowered, "<html") {
		return fmt.Errorf("upstream base URL misconfigured: %s answered with HTML instead of JSON", baseURL)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
