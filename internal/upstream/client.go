// Package upstream is the typed client for the clinic REST API. All booking,
// payment, slot and plan logic lives behind that API; this layer only shapes
// requests and decodes responses.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/clinicport/clinicport/internal/observability/metrics"
	"github.com/clinicport/clinicport/pkg/logging"
)

var tracer = otel.Tracer("clinicport.internal.upstream")

// ErrUnavailable signals the upstream API could not be reached at all.
var ErrUnavailable = errors.New("upstream: api unavailable")

// APIError is a non-2xx upstream response with its human-readable message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream: status %d: %s", e.Status, e.Message)
}

// IsAuthFailure reports whether err is an upstream 401/403.
func IsAuthFailure(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
	}
	return false
}

// Client talks to the clinic API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
	metrics    *metrics.UpstreamMetrics
}

// New builds an upstream client.
func New(baseURL string, timeout time.Duration, logger *logging.Logger, m *metrics.UpstreamMetrics) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    m,
	}
}

// do issues one JSON request. token may be empty for unauthenticated calls;
// out may be nil when the caller only cares about success. The request dies
// with ctx, so a proxied fetch is cancelled when the browser disconnects.
func (c *Client) do(ctx context.Context, method, path, token string, body any, out any) error {
	ctx, span := tracer.Start(ctx, "upstream."+method+" "+path)
	defer span.End()
	span.SetAttributes(
		attribute.String("clinicport.endpoint", path),
		attribute.String("clinicport.method", method),
	)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("upstream: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("upstream: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(path, "unreachable", time.Since(start).Seconds())
		span.SetAttributes(attribute.String("clinicport.outcome", "unreachable"))
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.metrics.ObserveRequest(path, fmt.Sprintf("%d", resp.StatusCode), time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("clinicport.status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("upstream: decode %s %s: %w", method, path, err)
	}
	return nil
}

// doRaw issues a request and hands back the raw response for binary
// passthrough (Excel/PDF exports). The caller owns the body.
func (c *Client) doRaw(ctx context.Context, method, path, token string) (*http.Response, error) {
	ctx, span := tracer.Start(ctx, "upstream."+method+" "+path)
	defer span.End()
	span.SetAttributes(attribute.String("clinicport.endpoint", path))

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("upstream: build request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(path, "unreachable", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	c.metrics.ObserveRequest(path, fmt.Sprintf("%d", resp.StatusCode), time.Since(start).Seconds())
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, c.apiError(resp)
	}
	return resp, nil
}

// apiError extracts the upstream's {"error": "..."} message, falling back to
// the status text when the body isn't the expected shape.
func (c *Client) apiError(resp *http.Response) error {
	msg := http.StatusText(resp.StatusCode)
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && len(data) > 0 {
		if jsonErr := json.Unmarshal(data, &body); jsonErr == nil {
			if body.Error != "" {
				msg = body.Error
			} else if body.Message != "" {
				msg = body.Message
			}
		}
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
