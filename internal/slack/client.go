// Package slack is a hand-rolled client for the subset of the Slack Web API
// and Socket Mode protocol that SlackAdder needs: identity lookup, channel
// listing, join/invite, and threaded message posting.
package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Slack Web API root.
	DefaultBaseURL = "https://slack.com/api"

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// requestsPerSecond paces outgoing Web API calls. Slack tier-3 methods
	// allow ~50 req/min; pacing below that keeps routine traffic off the
	// 429 path entirely.
	requestsPerSecond = 5.0
)

// APIError is a structured Web API failure: the error code from the response
// envelope plus, for rate-limited calls, the server-suggested wait.
type APIError struct {
	Method     string
	Code       string
	StatusCode int
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("slack %s: %s", e.Method, e.Code)
}

// RateLimited reports whether the failure is a rate-limit signal.
func (e *APIError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.Code == "ratelimited"
}

// Client is a rate-limited Slack Web API client.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root (for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Web API client authenticated with a bot token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:      token,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiResult is implemented by every response struct embedding apiResponse.
type apiResult interface {
	status() (ok bool, errCode string)
}

// call posts a Web API method with form-encoded params and decodes the
// response into out. A 429 status or an ok:false envelope becomes an
// *APIError; rate-limited errors carry the Retry-After hint.
func (c *Client) call(ctx context.Context, method string, form url.Values, out apiResult) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &APIError{
			Method:     method,
			Code:       "ratelimited",
			StatusCode: resp.StatusCode,
			RetryAfter: ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse %s response: %w", method, err)
	}

	if ok, code := out.status(); !ok {
		apiErr := &APIError{Method: method, Code: code, StatusCode: resp.StatusCode}
		if apiErr.RateLimited() {
			apiErr.RetryAfter = ParseRetryAfter(resp.Header.Get("Retry-After"))
		}
		return apiErr
	}

	return nil
}

// ParseRetryAfter converts a Retry-After header value into a wait duration.
// Fractional values are truncated to whole seconds; malformed or sub-second
// hints default to the 1s floor.
func ParseRetryAfter(raw string) time.Duration {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || f < 1 {
		return time.Second
	}
	return time.Duration(int(f)) * time.Second
}
