package transport

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
	"github.com/rs/zerolog/log"
	"github.com/zeropapel/zeropapel-go/credentials"
	"github.com/zeropapel/zeropapel-go/internal/apperrors"
)

const (
	contentTypeJSON = "application/json"
	headerRequestID = "X-Request-ID"
	headerAuthorize = "Authorization"
	bearerPrefix    = "Bearer "
	defaultTimeout  = 30 * time.Second
)

// TokenRefresher exchanges the refresh credential for a new access
// credential. Concurrent callers must be collapsed into a single
// upstream call; a nil error means a fresh access credential is now in
// the store.
type TokenRefresher interface {
	Refresh(ctx context.Context) error
}

// APIError is a non-2xx response from the platform, carrying the
// server-supplied error message when one was present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return apperrors.As(err, &apiErr) && apiErr.StatusCode == status
}

// Client dispatches JSON requests against the platform API. It attaches
// the current access credential as a bearer token when one is present
// and retries a request exactly once after a successful refresh when
// the server answers 401.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	store     credentials.Store
	refresher TokenRefresher
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. Timeouts are the
// transport's concern; no additional timeout logic is layered on top.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithRefresher sets the TokenRefresher consulted on 401 responses.
// Without one, 401s are surfaced directly.
func WithRefresher(r TokenRefresher) Option {
	return func(c *Client) {
		c.refresher = r
	}
}

// New creates a Client rooted at baseURL (e.g. "https://zeropapel.com.br/api").
func New(baseURL string, store credentials.Store, options ...Option) (*Client, error) {
	if store == nil {
		return nil, fmt.Errorf("[transport.New] credential store is required")
	}
	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("[transport.New] parse base URL: %w", err)
	}

	c := &Client{
		baseURL: parsed,
		http:    &http.Client{Timeout: defaultTimeout},
		store:   store,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Do sends a JSON request and decodes a 2xx response body into out when
// out is non-nil. The body is marshalled once up front so a retried
// request resubmits identical bytes.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("[Do] marshal request body: %w", err)
		}
	}

	resp, err := c.roundTrip(ctx, method, path, payload)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.refresher != nil {
		apiErr := readAPIError(resp)
		_ = resp.Body.Close()

		if refreshErr := c.refresher.Refresh(ctx); refreshErr != nil {
			// The refresher has already invalidated the session.
			// Surface the original authorization failure.
			log.Debug().Err(refreshErr).Str("path", path).Msg("refresh failed, propagating original 401")
			return fmt.Errorf("%s %s: %w: %w", method, path, apperrors.ErrAuthorizationExpired, apiErr)
		}

		log.Debug().Str("path", path).Msg("retrying request with refreshed credential")
		resp, err = c.roundTrip(ctx, method, path, payload)
		if err != nil {
			return err
		}
		// A second 401 is surfaced directly: one retry, never a loop.
	}

	return decode(resp, out)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return nil, fmt.Errorf("[roundTrip] build request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set(headerRequestID, uuid.NewString())

	if pair, err := c.store.Get(); err == nil && pair.Access != "" {
		req.Header.Set(headerAuthorize, bearerPrefix+pair.Access)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrNetworkFailure, "%s %s: %v", method, path, err)
	}
	return resp, nil
}

func decode(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := readAPIError(resp)
		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %w", apperrors.ErrAuthorizationExpired, apiErr)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("[decode] decode response body: %w", err)
	}
	return nil
}

// readAPIError extracts the server's {"error": "..."} message, falling
// back to the raw body when it is not JSON.
func readAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return apiErr
	}

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Error != "" {
			apiErr.Message = body.Error
		} else {
			apiErr.Message = body.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}
