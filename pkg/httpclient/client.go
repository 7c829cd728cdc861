package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

// Authenticator supplies the bearer token and is told when the backend rejects it
type Authenticator interface {
	Token() string
	Unauthorized()
}

// Options are the optional inputs of a request
type Options struct {
	Params url.Values
	Body   interface{}
}

// Upstream outcomes passed to an Observer
const (
	OutcomeOK        = "ok"
	OutcomeClient    = "http_4xx"
	OutcomeServer    = "http_5xx"
	OutcomeTransport = "transport"
)

// Observer is told about every finished upstream call
type Observer func(method, path, outcome string, latency time.Duration)

// Client performs authenticated JSON calls against the CineCity backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       Authenticator
	breaker    *gobreaker.CircuitBreaker[[]byte]
	observer   Observer
}

// NewClient creates a new HTTP client for the given backend origin
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithAuth returns a copy of the client bound to a session
func (c *Client) WithAuth(auth Authenticator) *Client {
	clone := *c
	clone.auth = auth
	return &clone
}

// WithBreaker returns a copy of the client whose calls go through the breaker
func (c *Client) WithBreaker(cb *gobreaker.CircuitBreaker[[]byte]) *Client {
	clone := *c
	clone.breaker = cb
	return &clone
}

// WithObserver returns a copy of the client that reports each call to o
func (c *Client) WithObserver(o Observer) *Client {
	clone := *c
	clone.observer = o
	return &clone
}

// BaseURL returns the backend origin
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request sends one request and returns the response body. No retries.
func (c *Client) Request(ctx context.Context, method, path string, opts Options) ([]byte, error) {
	start := time.Now()
	body, err := c.request(ctx, method, path, opts)
	if c.observer != nil {
		c.observer(method, path, Outcome(err), time.Since(start))
	}
	return body, err
}

func (c *Client) request(ctx context.Context, method, path string, opts Options) ([]byte, error) {
	if c.breaker == nil {
		return c.do(ctx, method, path, opts)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, method, path, opts)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	return body, err
}

// Outcome names the result class of a call for metrics
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var se *StatusError
	if errors.As(err, &se) {
		if se.StatusCode >= 500 {
			return OutcomeServer
		}
		return OutcomeClient
	}
	return OutcomeTransport
}

// Get sends a GET request and decodes the response into out
func (c *Client) Get(ctx context.Context, path string, params url.Values, out interface{}) error {
	return c.decode(ctx, http.MethodGet, path, Options{Params: params}, out)
}

// Post sends a POST request with a JSON body and decodes the response into out
func (c *Client) Post(ctx context.Context, path string, body interface{}, out interface{}) error {
	return c.decode(ctx, http.MethodPost, path, Options{Body: body}, out)
}

func (c *Client) decode(ctx context.Context, method, path string, opts Options, out interface{}) error {
	data, err := c.Request(ctx, method, path, opts)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, opts Options) ([]byte, error) {
	target := c.baseURL + path
	if len(opts.Params) > 0 {
		target += "?" + opts.Params.Encode()
	}

	var reader io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	// token 在发送时读取，登录/登出后立即生效
	if c.auth != nil {
		if token := c.auth.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().
			Err(err).
			Str("method", method).
			Str("path", path).
			Msg("Request failed")
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("Upstream request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusUnauthorized && c.auth != nil {
			c.auth.Unauthorized()
		}
		return nil, &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       body,
		}
	}

	return body, nil
}

// CountsAsFailure reports whether err should count against the breaker.
// 4xx responses are the caller's problem and never open it.
func CountsAsFailure(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	return true
}
