package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 64 << 10
)

// TokenSource supplies the bearer token attached to backend requests.
// An empty token means the request is sent without Authorization.
type TokenSource interface {
	GetToken(ctx context.Context) (string, error)
}

type noToken struct{}

func (noToken) GetToken(context.Context) (string, error) { return "", nil }

// Client talks JSON over HTTP to the tourism REST backend.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient constructs a Client for the backend at baseURL.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	if tokens == nil {
		tokens = noToken{}
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		tokens:  tokens,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTokens returns a copy of c that authenticates with tokens.
func (c *Client) WithTokens(tokens TokenSource) *Client {
	clone := *c
	if tokens == nil {
		tokens = noToken{}
	}
	clone.tokens = tokens
	return &clone
}

// newRequest builds a request to path, attaching the bearer token when one is present.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s %s: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading session token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// send performs req and returns the response body of a 2xx reply. Non-2xx
// replies become *ServerError and transport failures *ConnectivityError.
func (c *Client) send(req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, ctxErr
		}
		c.log.Warn("backend unreachable", "method", req.Method, "path", req.URL.Path, "err", err)
		return nil, &ConnectivityError{Op: req.Method + " " + req.URL.Path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		serr := newServerError(resp.StatusCode, body)
		c.log.Warn("backend returned error",
			"method", req.Method, "path", req.URL.Path,
			"status", resp.StatusCode, "message", serr.Message)
		return nil, serr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectivityError{Op: req.Method + " " + req.URL.Path, Err: err}
	}
	c.log.Debug("backend request",
		"method", req.Method, "path", req.URL.Path,
		"status", resp.StatusCode, "duration", time.Since(start))
	return body, nil
}

// doJSON sends in (if non-nil) as JSON and decodes the reply into out (if non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	raw, err := c.send(req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response from %s %s: %w", method, path, err)
	}
	return nil
}
