package cli

import (
	"aerograph/core"
	"aerograph/models"
	"aerograph/service"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the diagnostics API. Transport failures are recorded in
// a local error log so they can be inspected after the fact.
type Client struct {
	baseURL    string
	httpClient *http.Client
	errors     *core.ErrorLogger
}

// NewClient creates a client for baseURL that reports transport failures to errors.
// A nil errors gets an in-memory logger.
func NewClient(baseURL string, errors *core.ErrorLogger) *Client {
	if errors == nil {
		errors = core.NewErrorLogger(core.NewMemoryStorage())
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		errors: errors,
	}
}

// BaseURL returns the server address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// LocalErrors returns the client-side error log
func (c *Client) LocalErrors() *core.ErrorLogger {
	return c.errors
}

type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// doRequest executes an HTTP request, logging transport failures
func (c *Client) doRequest(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.errors.LogNetworkError(context.Background(), fmt.Sprintf("Request to %s failed", path), err, &models.LogContext{
			Route:     method + " " + path,
			Operation: "cli",
		})
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// handleResponse unwraps the response envelope into result
func (c *Client) handleResponse(resp *http.Response, result any) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(bodyBytes, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || env.Code != "OK" {
		var detail struct {
			Detail string `json:"detail"`
		}
		_ = json.Unmarshal(env.Data, &detail)
		if detail.Detail != "" {
			return fmt.Errorf("HTTP %d %s: %s (%s)", resp.StatusCode, env.Code, env.Message, detail.Detail)
		}
		return fmt.Errorf("HTTP %d %s: %s", resp.StatusCode, env.Code, env.Message)
	}

	if result != nil {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) call(method, path string, body, result any) error {
	resp, err := c.doRequest(method, path, body)
	if err != nil {
		return err
	}
	return c.handleResponse(resp, result)
}

// HealthCheck pings the health endpoint
func (c *Client) HealthCheck() error {
	resp, err := c.doRequest(http.MethodGet, "/api/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: HTTP %d", resp.StatusCode)
	}
	return nil
}

// ListLogs fetches entries matching the query params
func (c *Client) ListLogs(filter url.Values) ([]models.ErrorLogEntry, error) {
	path := "/api/error-logs"
	if encoded := filter.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var logs []models.ErrorLogEntry
	if err := c.call(http.MethodGet, path, nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// Stats fetches the buffer summary
func (c *Client) Stats() (models.LogStats, error) {
	var stats models.LogStats
	err := c.call(http.MethodGet, "/api/error-logs/stats", nil, &stats)
	return stats, err
}

// ClearLogs wipes the server's buffer
func (c *Client) ClearLogs() error {
	return c.call(http.MethodDelete, "/api/error-logs", nil, nil)
}

// ReportError records an error on the server
func (c *Client) ReportError(report models.ClientErrorReport) (models.ErrorLogEntry, error) {
	var entry models.ErrorLogEntry
	err := c.call(http.MethodPost, "/api/error-logs", report, &entry)
	return entry, err
}

// Export downloads the buffer as raw JSON
func (c *Client) Export() ([]byte, error) {
	resp, err := c.doRequest(http.MethodGet, "/api/error-logs/export", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}

// Validate submits records of kind for validation
func (c *Client) Validate(kind models.EntityKind, payload any, label string) (service.ValidationResult, error) {
	q := url.Values{}
	if label != "" {
		q.Set("label", label)
	}
	path := "/api/validate/" + url.PathEscape(string(kind))
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var result service.ValidationResult
	err := c.call(http.MethodPost, path, payload, &result)
	return result, err
}

// Sanitize returns the server's repaired copy of payload
func (c *Client) Sanitize(payload any) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.call(http.MethodPost, "/api/sanitize/workflow", payload, &out)
	return out, err
}

// Compare diffs data against the field list of kind
func (c *Client) Compare(req service.CompareRequest) (models.SchemaComparison, error) {
	var cmp models.SchemaComparison
	err := c.call(http.MethodPost, "/api/schema/compare", req, &cmp)
	return cmp, err
}
