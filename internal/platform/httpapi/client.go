package httpapi

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

	hclog "github.com/hashicorp/go-hclog"

	apperrors "airpulse/internal/platform/errors"
	"airpulse/internal/platform/logging"
)

const maxBodyBytes = 8 << 20

// TokenSource supplies the bearer token for authenticated calls. Returning
// apperrors.ErrNoSession sends the request without Authorization.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks JSON to the backend rooted at a resolved endpoint. It is safe
// for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  hclog.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = &http.Client{Timeout: d} }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithLogger(logger hclog.Logger) Option {
	return func(c *Client) { c.logger = logging.OrDiscard(logger) }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// URL joins path onto the base URL. path must start with "/".
func (c *Client) URL(path string) string {
	return c.baseURL + path
}

func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		switch {
		case err == nil && token != "":
			req.Header.Set("Authorization", "Bearer "+token)
		case err != nil && !errors.Is(err, apperrors.ErrNoSession):
			return nil, fmt.Errorf("load token: %w", err)
		}
	}
	return req, nil
}

// Do sends req and decodes a 2xx JSON body into out when out is non-nil.
func (c *Client) Do(req *http.Request, out any) error {
	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", req.Method, "url", req.URL.String(), "error", err)
		return fmt.Errorf("%w: %s %s: %w", apperrors.ErrNetwork, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", apperrors.ErrNetwork, req.URL.Path, err)
	}
	c.logger.Debug("request", "method", req.Method, "url", req.URL.String(), "status", resp.StatusCode, "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &apperrors.ServerError{Status: resp.StatusCode, Message: extractMessage(body)}
	}
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return apperrors.Malformed("%s %s: empty body", req.Method, req.URL.Path)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.Malformed("%s %s: %v", req.Method, req.URL.Path, err)
	}
	return nil
}

func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	req, err := c.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.Do(req, out)
}

func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := c.NewRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.Do(req, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	req, err := c.NewRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	return c.Do(req, nil)
}

func extractMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		return payload.Error
	}
	if trimmed[0] == '<' {
		return ""
	}
	msg := string(trimmed)
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
