// Package transport is the single choke point for every backend call. It
// attaches the bearer credential to outgoing requests and recovers from
// access-token expiry by performing one transparent refresh before the
// failure is surfaced to the caller.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cloudopshq/cloudops-go/credentials"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	refreshPath           = "/auth/refresh/"
	contentTypeJSON       = "application/json"
	defaultRequestTimeout = 30 * time.Second
)

// Client wraps an *http.Client with bearer authentication and the
// refresh-and-retry protocol. Requests are rebuilt from a buffered payload
// for the retry, so no request object is ever mutated or resent in place.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      credentials.Store
	onExpired  func()
	logger     zerolog.Logger

	refreshLock sync.Mutex
	inflight    *refreshAttempt
}

// Option modifies a Client during construction.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the structured logger used for request logging.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithSessionExpiredHook registers a callback invoked exactly once per
// failed refresh, after the credential store has been cleared. The hook is
// the place to route the user back to the login entry point.
func WithSessionExpiredHook(hook func()) Option {
	return func(c *Client) {
		c.onExpired = hook
	}
}

// New creates a Client for the given API base URL.
func New(baseURL string, creds credentials.Store, options ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[transport.New] baseURL is required")
	}
	if creds == nil {
		return nil, errors.New("[transport.New] credential store is required")
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		creds:      creds,
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(client)
	}
	return client, nil
}

// Get issues a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body and decodes the response into out.
// Both body and out may be nil.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Patch issues a PATCH request with a JSON body and decodes the response into out.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do performs one authenticated request. On a 401 it attempts a single
// token refresh and resends the request once with the token produced by
// that refresh; the retried outcome is final. Every other failure is
// propagated unchanged with no credential side effects.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "[Client.Do] marshalling %s %s body", method, path)
		}
	}
	return c.do(ctx, method, path, payload, contentTypeJSON, out)
}

// PostMultipart issues a POST carrying a multipart form, used for file
// uploads. The form is buffered once so the retry after a refresh resends
// it unchanged.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, fileField, fileName string, file io.Reader, out any) error {
	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return errors.Wrapf(err, "[Client.PostMultipart] writing field %q", name)
		}
	}
	part, err := writer.CreateFormFile(fileField, fileName)
	if err != nil {
		return errors.Wrap(err, "[Client.PostMultipart] creating file part")
	}
	if _, err := io.Copy(part, file); err != nil {
		return errors.Wrap(err, "[Client.PostMultipart] reading file")
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "[Client.PostMultipart] finalizing form")
	}
	return c.do(ctx, http.MethodPost, path, form.Bytes(), writer.FormDataContentType(), out)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, contentType string, out any) error {
	requestID := uuid.New().String()
	access := c.creds.Access()
	resp, err := c.send(ctx, method, path, payload, contentType, access, requestID)
	if err != nil {
		return errors.Wrapf(err, "[Client.do] %s %s", method, path)
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return c.finish(resp, method, path, requestID, out, false)
	}

	originalErr := newAPIError(resp, method, path, requestID)

	if c.creds.Refresh() == "" {
		c.logger.Debug().Str("request_id", requestID).Msg("unauthorized with no refresh token, propagating")
		return originalErr
	}

	refreshed, refreshErr := c.refreshAccess(ctx, access)
	if refreshErr != nil {
		c.logger.Warn().Err(refreshErr).Str("request_id", requestID).Msg("token refresh failed")
		return originalErr
	}

	retryResp, err := c.send(ctx, method, path, payload, contentType, refreshed, requestID)
	if err != nil {
		return errors.Wrapf(err, "[Client.do] retrying %s %s", method, path)
	}
	return c.finish(retryResp, method, path, requestID, out, true)
}

// send builds and issues a fresh request. The retry goes through here again
// with the refreshed token, never by reusing the original *http.Request.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, contentType, token, requestID string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "http.NewRequestWithContext")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.httpClient.Do(req)
}

func (c *Client) finish(resp *http.Response, method, path, requestID string, out any, retried bool) error {
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Bool("retried", retried).
		Msg("request completed")

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return newAPIError(resp, method, path, requestID)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "[Client.finish] decoding %s %s response", method, path)
	}
	return nil
}
