// Package gateway is the client for the Mate AI REST backend: accounts,
// classes, tests and performance reports.
package gateway

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

	"github.com/mateai/mate/internal/logger"
)

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// HTTPClient overrides the default client; Timeout is ignored then.
	HTTPClient *http.Client
	Logger     *logger.Logger
}

// Client calls the backend on behalf of the Session's user.
type Client struct {
	baseURL string
	session *Session
	http    *http.Client
	log     *logger.Logger
}

// NewClient creates a Client. A nil session behaves as logged out.
func NewClient(cfg Config, session *Session) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	if session == nil {
		session = NewTokenSession("")
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		session: session,
		http:    hc,
		log:     log,
	}
}

// Session returns the client's session.
func (c *Client) Session() *Session {
	return c.session
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	return c.do(ctx, op, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, op, path string, in, out any) error {
	return c.do(ctx, op, http.MethodPost, path, nil, in, out)
}

func (c *Client) put(ctx context.Context, op, path string, in, out any) error {
	return c.do(ctx, op, http.MethodPut, path, nil, in, out)
}

func (c *Client) delete(ctx context.Context, op, path string) error {
	return c.do(ctx, op, http.MethodDelete, path, nil, nil, nil)
}

// do sends one request. A 401 clears the session.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.session.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("backend request failed", "op", op, "method", method, "path", path, "error", err)
		return &APIError{Message: MsgUnreachable, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Status: resp.StatusCode, Message: MsgUnreachable, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		apiErr := statusError(resp.StatusCode, eb)
		c.log.Warn("backend returned an error", "op", op, "method", method, "path", path, "status", resp.StatusCode, "message", apiErr.Message)
		if resp.StatusCode == http.StatusUnauthorized {
			if err := c.session.Clear(); err != nil {
				c.log.Error("clear session failed", "op", op, "error", err)
			}
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("Respuesta inválida del servidor (%s)", op), Err: err}
	}
	return nil
}

func escape(id string) string {
	return url.PathEscape(id)
}
