// Package api is the HTTP client for the dayboard REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the root of the REST API (e.g. http://localhost:8080/).
	BaseURL string

	// Timeout bounds a single request. Zero means 30 seconds.
	Timeout time.Duration

	// MaxRequestsPerSec throttles outgoing requests; 0 disables throttling.
	MaxRequestsPerSec float64

	// Tokens supplies the bearer token. Nil sends unauthenticated requests.
	Tokens TokenSource

	// Transport is the underlying round tripper. Nil uses http.DefaultTransport.
	Transport http.RoundTripper

	Logger *zap.Logger
}

// Client is a thin JSON-over-HTTP client. Every call issues exactly one
// request; there is no retry.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter
	log        *zap.Logger
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var limiter *rate.Limiter
	if opts.MaxRequestsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.MaxRequestsPerSec), 1)
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	transport := NewAuthTransport(opts.Transport, opts.Tokens)
	if u, err := url.Parse(baseURL); err == nil {
		transport.BasePath = u.Path
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		tokens:  opts.Tokens,
		limiter: limiter,
		log:     log.Named("api"),
	}
}

// identity names the credentials requests are currently sent with, so
// shared in-flight calls never cross accounts.
func (c *Client) identity() string {
	if c.tokens == nil {
		return ""
	}
	token, _ := c.tokens.Token()
	return token
}

// Ping reports whether a server answers at the base URL. Any HTTP status
// counts as an answer.
func (c *Client) Ping(ctx context.Context) error {
	err := c.roundTrip(ctx, http.MethodGet, "/", nil, nil, nil)
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return nil
	}
	return err
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, nil, result)
}

// GetQuery performs an HTTP GET request with query parameters.
func (c *Client) GetQuery(
	ctx context.Context,
	path string,
	query url.Values,
	result any,
) error {
	return c.do(ctx, http.MethodGet, path, query, nil, result)
}

// Post performs an HTTP POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, result)
}

// Put performs an HTTP PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, result)
}

// Patch performs an HTTP PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, result)
}

// Delete performs an HTTP DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// do builds the request, waits on the limiter, executes it once and decodes
// the JSON response. Non-2xx responses become *Error.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	body any,
	result any,
) error {
	err := c.roundTrip(ctx, method, path, query, body, result)
	if err != nil {
		c.log.Error("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
	}
	return err
}

func (c *Client) roundTrip(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	body any,
	result any,
) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	c.log.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	// No content to parse (e.g. 204).
	if result == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}

	return nil
}
