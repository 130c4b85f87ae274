package mattermost

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultPerPage           = 100
	defaultRequestsPerSecond = 10
	maxRateLimitRetries      = 5
	defaultRetryAfterWait    = 5 * time.Second
)

// Client talks to the Mattermost v4 REST API. Create one per export run;
// it is not safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	perPage    int
	debug      bool

	// sleep is replaced in tests so retry waits can be observed without
	// slowing the suite down.
	sleep func(time.Duration)
}

// Options tunes a Client beyond the required base URL and token.
type Options struct {
	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool
	// PerPage is the page size used when paginating channel posts.
	PerPage int
	// RequestsPerSecond caps the outbound request rate.
	RequestsPerSecond float64
	Debug             bool
}

// NewClient builds a client for the API rooted at baseURL, which must
// already include the /api/v4 prefix.
func NewClient(baseURL, token string, opts Options) *Client {
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}

	transport := http.DefaultTransport
	if opts.InsecureSkipVerify {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second, Transport: transport},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		perPage:    perPage,
		debug:      opts.Debug,
		sleep:      time.Sleep,
	}
}

// APIError is a non-2xx response from the API. ID and Message carry the
// standard Mattermost error body when the server sent one.
type APIError struct {
	StatusCode int
	ID         string
	Message    string
	Path       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("mattermost API error: status %d on %s: %s", e.StatusCode, e.Path, e.Message)
	}
	return fmt.Sprintf("mattermost API error: status %d on %s", e.StatusCode, e.Path)
}

func newAPIError(statusCode int, path string, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Path: path}

	var wire struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &wire); err == nil {
		apiErr.ID = wire.ID
		apiErr.Message = wire.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

// getJSON issues an authenticated GET and decodes the response into out.
// 429 responses are retried with the server-advertised wait, up to
// maxRateLimitRetries times; every other failure surfaces immediately.
func (c *Client) getJSON(path string, out interface{}) error {
	for attempt := 0; ; attempt++ {
		c.pace()

		req, err := http.NewRequest("GET", c.baseURL+path, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("GET %s: %w", path, err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("GET %s: reading response: %w", path, err)
		}

		if c.debug {
			log.Printf("GET %s -> %d (%d bytes)", path, resp.StatusCode, len(body))
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if attempt >= maxRateLimitRetries {
				return newAPIError(resp.StatusCode, path, body)
			}
			wait := retryAfter(resp.Header)
			log.Printf("Rate limited on %s, waiting %v before retry %d/%d", path, wait, attempt+1, maxRateLimitRetries)
			c.sleep(wait)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return newAPIError(resp.StatusCode, path, body)
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("GET %s: decoding response: %w", path, err)
		}
		return nil
	}
}

// pace blocks until the limiter admits the next request.
func (c *Client) pace() {
	r := c.limiter.Reserve()
	if d := r.Delay(); d > 0 {
		c.sleep(d)
	}
}

// retryAfter reads the Retry-After header, accepting both the
// delay-seconds and HTTP-date forms. Missing or unparseable values fall
// back to a fixed wait.
func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return defaultRetryAfterWait
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return defaultRetryAfterWait
}
