// Package transport performs the four row operations (submit, delete, refresh,
// favourite toggle) against a form's action URL and decodes the response
// envelope. It never retries; failures are returned to the caller.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/goliatone/go-formsync/pkg/payload"
)

const (
	defaultUserAgent = "go-formsync/0.1"
	defaultTimeout   = 30 * time.Second
	maxBodyBytes     = 8 << 20
)

// Client talks to a row endpoint.
type Client struct {
	http      *http.Client
	base      *url.URL
	userAgent string
	log       logr.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client. Timeouts and cancellation are the
// HTTP client's concern.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithBaseURL resolves relative form actions against base.
func WithBaseURL(base *url.URL) Option {
	return func(c *Client) {
		c.base = base
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(ua); trimmed != "" {
			c.userAgent = trimmed
		}
	}
}

// WithLogger attaches a logger; requests and envelopes are traced at V(1).
func WithLogger(log logr.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient builds a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		log:       logr.Discard(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// ParseBaseURL parses a base URL, defaulting the scheme to http.
func ParseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("transport: parse base url %q: %w", raw, err)
	}
	return u, nil
}

// Submit sends the form payload with the form's method (POST when empty).
func (c *Client) Submit(ctx context.Context, method, action string, pairs payload.Pairs) (*Envelope, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodPost
	}
	return c.do(ctx, OpSubmit, method, action, pairs, true)
}

// Delete sends the form payload with DELETE. The body is required: the
// backend reads the row identifier from it.
func (c *Client) Delete(ctx context.Context, action string, pairs payload.Pairs) (*Envelope, error) {
	return c.do(ctx, OpDelete, http.MethodDelete, action, pairs, true)
}

// Refresh fetches the current row.
func (c *Client) Refresh(ctx context.Context, action string) (*Envelope, error) {
	return c.do(ctx, OpRefresh, http.MethodGet, action, nil, false)
}

// ToggleFavourite sets the favourite flag to favourite.
func (c *Client) ToggleFavourite(ctx context.Context, action string, favourite bool) (*Envelope, error) {
	pairs := payload.Pairs{{Name: payload.KeyFavourite, Value: strconv.FormatBool(favourite)}}
	return c.do(ctx, OpFavourite, http.MethodPost, action, pairs, true)
}

func (c *Client) do(ctx context.Context, op Operation, method, action string, pairs payload.Pairs, withBody bool) (*Envelope, error) {
	target, err := c.resolve(action)
	if err != nil {
		return nil, &Error{Op: op, Method: method, URL: action, Err: err}
	}

	var body io.Reader
	encoded := ""
	if withBody {
		encoded = pairs.Encode()
		body = strings.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &Error{Op: op, Method: method, URL: target, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("User-Agent", c.userAgent)
	if withBody {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	}

	c.log.V(1).Info("request", "op", op, "method", method, "url", target, "payload", encoded)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Method: method, URL: target, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Op: op, Method: method, URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	c.log.V(1).Info("response", "op", op, "status", resp.StatusCode, "body", string(raw))

	env, decodeErr := decodeEnvelope(raw)
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	switch {
	case decodeErr != nil && ok:
		return nil, &Error{Op: op, Method: method, URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode envelope: %w", decodeErr)}
	case decodeErr != nil:
		return nil, &Error{Op: op, Method: method, URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	case !ok && env.Result == nil && env.Error == "":
		return nil, &Error{Op: op, Method: method, URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	env.StatusCode = resp.StatusCode
	return env, nil
}

func (c *Client) resolve(action string) (string, error) {
	trimmed := strings.TrimSpace(action)
	if trimmed == "" {
		return "", ErrNoAction
	}
	ref, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse action: %w", err)
	}
	if c.base != nil && !ref.IsAbs() {
		return c.base.ResolveReference(ref).String(), nil
	}
	return ref.String(), nil
}
