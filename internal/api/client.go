// Package api is the single point of HTTP egress to the NVMS backend.
//
// The client attaches the stored access token to every request and recovers from
// access-token expiry: a 401 triggers one refresh and one re-issue of the original
// request. Everything else (network failures, other statuses) is returned to the
// caller as is.
package api

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

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/felixgeelhaar/nvms/internal/errors"
	"github.com/felixgeelhaar/nvms/internal/log"
	"github.com/felixgeelhaar/nvms/internal/tokenstore"
	"github.com/felixgeelhaar/nvms/internal/version"
)

const maxResponseBytes = 8 << 20

// Navigator sends the user to the login screen after an irrecoverable 401 or a logout.
type Navigator interface {
	ToLogin()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

// ToLogin calls f.
func (f NavigatorFunc) ToLogin() { f() }

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	Tokens     tokenstore.Store
	Navigator  Navigator
	HTTPClient *http.Client
	Logger     *log.Logger
	UserAgent  string

	// RateLimit caps outgoing requests per second. Zero disables limiting.
	RateLimit float64
	Burst     int
}

// Client is the authenticated NVMS API client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     tokenstore.Store
	navigator  Navigator
	logger     *log.Logger
	userAgent  string
	limiter    *rate.Limiter

	refreshes singleflight.Group
}

// New creates a client. Missing collaborators get in-memory or no-op defaults.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	tokens := cfg.Tokens
	if tokens == nil {
		tokens = tokenstore.NewMemoryStore()
	}

	navigator := cfg.Navigator
	if navigator == nil {
		navigator = NavigatorFunc(func() {})
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.DefaultLogger()
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = version.GetInfo().UserAgent()
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		tokens:     tokens,
		navigator:  navigator,
		logger:     logger.WithGroup("api"),
		limiter:    limiter,
	}
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Tokens returns the token store the client reads and writes.
func (c *Client) Tokens() tokenstore.Store {
	return c.tokens
}

// request is an encoded call that can be sent more than once.
type request struct {
	method string
	path   string
	query  url.Values
	body   []byte
}

// Do sends a JSON request and decodes a JSON response into out (when non-nil).
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	raw, err := c.DoRaw(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(errors.ErrCodeAPIDecode, fmt.Sprintf("failed to decode %s %s response", method, path), err)
	}
	return nil
}

// DoRaw sends a request and returns the raw response body of a 2xx answer.
func (c *Client) DoRaw(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	req := &request{method: method, path: path, query: query}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeAPIEncode, "failed to marshal request body", err)
		}
		req.body = payload
	}
	return c.send(ctx, req, false)
}

// Ping reports whether the backend answers at path. Any HTTP status counts as
// reachable; only transport failures are errors. No token is sent.
func (c *Client) Ping(ctx context.Context, path string) (int, error) {
	status, _, _, err := c.roundTrip(ctx, &request{method: http.MethodGet, path: path}, "")
	return status, err
}

// send performs req. A 401 on a request that has not been retried yet goes
// through recoverAuth and is re-issued exactly once.
func (c *Client) send(ctx context.Context, req *request, retried bool) ([]byte, error) {
	token, err := c.tokens.Get(tokenstore.AccessKey)
	if err != nil {
		return nil, err
	}

	status, raw, requestID, err := c.roundTrip(ctx, req, token)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized && !retried {
		if err := c.recoverAuth(ctx, token); err != nil {
			return nil, err
		}
		c.logger.Debug("retrying request with refreshed token", "method", req.method, "path", req.path)
		return c.send(ctx, req, true)
	}

	if status < 200 || status >= 300 {
		return nil, newStatusError(req.method, req.path, status, raw, requestID)
	}
	return raw, nil
}

// roundTrip performs a single HTTP exchange. token may be empty.
func (c *Client) roundTrip(ctx context.Context, req *request, token string) (int, []byte, string, error) {
	target, err := c.resolve(req.path, req.query)
	if err != nil {
		return 0, nil, "", err
	}

	var bodyReader io.Reader
	if req.body != nil {
		bodyReader = bytes.NewReader(req.body)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, "", fmt.Errorf("%s %s: %w", req.method, req.path, err)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, bodyReader)
	if err != nil {
		return 0, nil, "", errors.Wrap(errors.ErrCodeAPITransport, "failed to create request", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-ID", requestID)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("request failed", "method", req.method, "path", req.path, "request_id", requestID, "error", err.Error())
		return 0, nil, requestID, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return 0, nil, requestID, fmt.Errorf("%s %s: read response: %w", req.method, req.path, err)
	}
	if len(raw) > maxResponseBytes {
		c.logger.Error("response too large", "method", req.method, "path", req.path, "request_id", requestID, "limit", maxResponseBytes)
		return 0, nil, requestID, errors.New(errors.ErrCodeAPIDecode,
			fmt.Sprintf("%s %s: response too large (limit %d bytes)", req.method, req.path, maxResponseBytes))
	}

	if id := resp.Header.Get("X-Request-ID"); id != "" {
		requestID = id
	}

	c.logger.Debug("request completed",
		"method", req.method,
		"path", req.path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)
	return resp.StatusCode, raw, requestID, nil
}

// resolve joins path onto the base URL. Absolute URLs (pagination links) pass through.
func (c *Client) resolve(path string, query url.Values) (string, error) {
	var target string
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		target = path
	} else {
		target = strings.TrimSuffix(c.baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	}

	if len(query) == 0 {
		return target, nil
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeAPITransport, "invalid request URL", err)
	}
	q := u.Query()
	for key, values := range query {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
