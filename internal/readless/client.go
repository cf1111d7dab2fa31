// Package readless is the HTTP client for the text processing endpoint.
package readless

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lotas/readless/internal/applog"
)

// DefaultEndpoint is where the processing backend listens unless configured otherwise.
const DefaultEndpoint = "http://localhost:8080/api/readless/process"

// Request is the JSON body sent to the endpoint.
type Request struct {
	Content   string `json:"content"`
	Operation string `json:"operation"`
}

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API Error: %d", e.Code)
}

// NetworkError wraps a transport failure: refused connection, reset,
// cancelled context, or a body that could not be read.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "request failed: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Client posts content to a processing endpoint.
type Client struct {
	Endpoint string
	HTTP     *http.Client
}

// New returns a Client for endpoint. An empty endpoint selects DefaultEndpoint.
// The client sets no timeout of its own; callers bound requests with ctx.
func New(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{Endpoint: endpoint, HTTP: http.DefaultClient}
}

// Process sends content with the given operation and returns the response
// body as plain text.
func (c *Client) Process(ctx context.Context, content, operation string) (string, error) {
	body, err := json.Marshal(Request{Content: content, Operation: operation})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	applog.Info("client.process", "endpoint", c.Endpoint, "op", operation, "chars", len(content))
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return "", &StatusError{Code: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Err: fmt.Errorf("read body: %w", err)}
	}
	return string(data), nil
}

// NormalizeOperation trims and lowercases op; empty means OpSummarize.
func NormalizeOperation(op string) string {
	op = strings.ToLower(strings.TrimSpace(op))
	if op == "" {
		return OpSummarize
	}
	return op
}
