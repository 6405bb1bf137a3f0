package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/marcogenualdo/godnsweb/internal/config"
	"github.com/marcogenualdo/godnsweb/internal/metrics"
)

// TokenProvider hands out a currently valid access token, or "" when the
// session has none.
type TokenProvider interface {
	GetAccessToken(ctx context.Context) string
}

type TokenProviderFunc func(ctx context.Context) string

func (f TokenProviderFunc) GetAccessToken(ctx context.Context) string { return f(ctx) }

// tokenSource adapts a TokenProvider to oauth2.TokenSource for one request.
type tokenSource struct {
	ctx    context.Context
	tokens TokenProvider
}

func (s tokenSource) Token() (*oauth2.Token, error) {
	token := s.tokens.GetAccessToken(s.ctx)
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

// Client talks to the DNS management REST API on behalf of one session.
type Client struct {
	baseURL *url.URL
	base    http.RoundTripper
	timeout time.Duration
	tokens  TokenProvider
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Client)

func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.base = rt }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func New(cfg config.APIConfig, logger *slog.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}

	c := &Client{
		baseURL: u,
		base:    http.DefaultTransport,
		timeout: cfg.Timeout,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// For returns a client that authenticates with tokens.
func (c *Client) For(tokens TokenProvider) *Client {
	cp := *c
	cp.tokens = tokens
	return &cp
}

func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

func (c *Client) endpoint(query url.Values, segments ...string) string {
	u := *c.baseURL
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u.RawPath = u.Path + "/api/v1/" + strings.Join(escaped, "/")
	u.Path = u.Path + "/api/v1/" + strings.Join(segments, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends one request and decodes a JSON answer into out. A nil out or a
// 204 answer skips decoding.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	raw, err := c.send(ctx, method, endpoint, body, "application/json")
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, endpoint, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, endpoint string, body any, accept string) ([]byte, error) {
	if c.tokens == nil {
		return nil, &APIError{Status: http.StatusUnauthorized, Message: "Not authenticated", Err: ErrNotAuthenticated}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)

	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: tokenSource{ctx: ctx, tokens: c.tokens},
			Base:   c.base,
		},
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			return nil, &APIError{Status: http.StatusUnauthorized, Message: "Not authenticated", Err: ErrNotAuthenticated}
		}
		c.metrics.ObserveBackend(method, "error", start)
		c.logger.Warn("api request failed", "method", method, "url", endpoint, "error", err)
		return nil, fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.metrics.ObserveBackend(method, strconv.Itoa(resp.StatusCode), start)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var decoded any
		if json.Unmarshal(data, &decoded) != nil {
			decoded = nil
		}
		apiErr := newAPIError(resp.StatusCode, data, decoded)
		c.logger.Debug("api error response", "method", method, "path", req.URL.Path, "status", resp.StatusCode, "message", apiErr.Message)
		return nil, apiErr
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	return data, nil
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
