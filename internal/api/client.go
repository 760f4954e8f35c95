package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Client is the HTTP client for the CareVault relay API. It carries the
// bearer token issued at login and retries transient failures with
// exponential backoff. Only opaque material crosses this boundary: auth
// hashes, salts, and sealed envelopes. Plaintext and raw keys never do.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      *RetryConfig
	logger     zerolog.Logger

	mu    sync.RWMutex
	token string
}

// Option configures the API client.
type Option func(*Client)

// WithBaseURL sets the base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetryConfig replaces the retry configuration.
func WithRetryConfig(cfg *RetryConfig) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithLogger sets the logger. The default is a no-op logger; the SDK stays
// silent unless the caller opts in.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a new API client.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retry:  DefaultRetryConfig(),
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// SetHTTPClient sets a custom HTTP client.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// SetToken installs the bearer token returned by the login endpoint.
// Passing the empty string clears it (logout).
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token, or "" when unauthenticated.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Do performs a JSON request against the relay. body and result may be nil.
func (c *Client) Do(ctx context.Context, method, path string, body, result interface{}) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = data
	}

	resp, err := c.send(ctx, method, path, "application/json", payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return parseErrorResponse(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// DoRaw performs a request with an opaque byte body and returns the raw
// response bytes. Used for attachment blobs, which are ciphertext and must
// not pass through JSON.
func (c *Client) DoRaw(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	resp, err := c.send(ctx, method, path, "application/octet-stream", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, parseErrorResponse(resp)
	}

	return io.ReadAll(resp.Body)
}

// send runs the retry loop. The request body is rebuilt on every attempt so
// retries never send a half-consumed reader.
func (c *Client) send(ctx context.Context, method, path, contentType string, payload []byte) (*http.Response, error) {
	url := c.baseURL + path

	for attempt := 0; ; attempt++ {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Accept", "application/json")
		if token := c.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt >= c.retry.MaxRetries || ctx.Err() != nil {
				return nil, &NetworkError{Err: err, URL: url, Attempt: attempt}
			}
			c.logger.Debug().Err(err).Str("url", url).Int("attempt", attempt).Msg("request failed, retrying")
			if werr := c.retry.Wait(ctx, c.retry.Delay(attempt)); werr != nil {
				return nil, &NetworkError{Err: err, URL: url, Attempt: attempt}
			}
			continue
		}

		if c.retry.ShouldRetry(attempt, resp.StatusCode) {
			delay := c.retry.DelayFor(attempt, resp)
			resp.Body.Close()
			c.logger.Debug().Int("status", resp.StatusCode).Str("url", url).Int("attempt", attempt).Dur("delay", delay).Msg("retryable status, retrying")
			if werr := c.retry.Wait(ctx, delay); werr != nil {
				return nil, werr
			}
			continue
		}

		return resp, nil
	}
}

func parseErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error     string `json:"error"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	}

	if err := json.Unmarshal(body, &errResp); err == nil {
		msg := errResp.Error
		if msg == "" {
			msg = errResp.Message
		}
		if msg != "" {
			return &APIError{
				StatusCode: resp.StatusCode,
				Message:    msg,
				RequestID:  errResp.RequestID,
			}
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    string(body),
	}
}
