// Package httpclient provides a reusable HTTP client with bounded retry
// and W3C trace-context propagation for outbound vendor calls.
package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/veaiops/veaiops/pkg/utils/json"
)

// DefaultMaxAttempts is the total attempt budget for outbound calls:
// one initial try plus two retries with capped exponential wait.
const DefaultMaxAttempts = 3

// baseBackoff is the first retry delay; doubled per attempt up to maxBackoff.
const (
	baseBackoff = 500 * time.Millisecond
	maxBackoff  = 5 * time.Second
)

// Client wraps http.Client with retry on transient failures.
type Client struct {
	httpClient  *http.Client
	maxAttempts int
}

// New creates a new HTTP client wrapper.
func New(timeout time.Duration, maxAttempts int) *Client {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		maxAttempts: maxAttempts,
	}
}

// Do executes the request, retrying on transport errors and 5xx responses.
// Request bodies are buffered so they can be replayed across attempts;
// outbound payloads here are small JSON documents.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	c.injectTraceContext(req)

	var bodyBytes []byte
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		_ = req.Body.Close()
		bodyBytes = b
	}

	var lastErr error
	backoff := baseBackoff
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if bodyBytes != nil {
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}

		resp, err := c.httpClient.Do(req)
		if err == nil {
			if resp.StatusCode < http.StatusInternalServerError {
				return resp, nil
			}
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("server error, status code %d", resp.StatusCode)
		} else {
			lastErr = err
		}

		if attempt == c.maxAttempts-1 {
			break
		}
		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	return nil, lastErr
}

// DoJSON executes the request, decodes the JSON response into v, and
// ensures the body is closed. A nil v discards the body.
func (c *Client) DoJSON(req *http.Request, v interface{}) error {
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("request failed with status code %d: %s", resp.StatusCode, string(body))
	}

	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// injectTraceContext propagates the current span context to downstream
// services via W3C trace headers. Degrades to a no-op when no propagator
// or span is configured.
func (c *Client) injectTraceContext(req *http.Request) {
	if req == nil || req.Context() == nil {
		return
	}
	propagator := otel.GetTextMapPropagator()
	if propagator == nil {
		return
	}
	propagator.Inject(req.Context(), propagation.HeaderCarrier(req.Header))
}
