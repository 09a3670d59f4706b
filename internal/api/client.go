// Package api implements domain.Gateway over the school server's JSON API.
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
	"strings"
	"time"

	"github.com/mmcdole/campus/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Campus/1.0"
)

// Client performs authenticated requests against one school server
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new API client. token is sent as a Bearer token.
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// WithHTTPClient replaces the underlying http.Client (used by tests).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// doRequest performs an authenticated HTTP request and returns the body of a
// 2xx response. Other statuses are mapped to domain errors.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload any) (int, []byte, error) {
	reqURL := fmt.Sprintf("%s%s", c.baseURL, path)
	if len(query) > 0 {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("api request", "method", method, "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("api request failed", "error", err, "method", method, "path", path)
		return 0, nil, fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: failed to read response: %w", domain.ErrNetwork, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.StatusCode, respBody, nil
	}

	apiErr := statusError(resp.StatusCode, respBody)
	if resp.StatusCode >= 500 {
		c.logger.Error("api request error", "status", resp.StatusCode, "body", string(respBody))
	} else {
		c.logger.Debug("api request rejected", "status", resp.StatusCode, "error", apiErr)
	}
	return resp.StatusCode, nil, apiErr
}

// statusError maps a non-2xx response to a domain error
func statusError(status int, body []byte) error {
	var env errorEnvelope
	_ = json.Unmarshal(body, &env) // body may be empty or not JSON
	msg := env.Error.Message

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.ErrAuthFailed
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return &domain.ValidationError{Message: msg, Fields: env.Error.Fields}
	case status == http.StatusNotFound:
		return domain.ErrNotFound
	case status >= 500:
		if msg != "" {
			return fmt.Errorf("%w: %s", domain.ErrServer, msg)
		}
		return fmt.Errorf("%w: status %d", domain.ErrServer, status)
	default:
		return fmt.Errorf("%w: unexpected status code %d", domain.ErrServer, status)
	}
}

// decode parses a JSON response body into v
func (c *Client) decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}
	return nil
}

// IsTransient reports whether err is worth retrying later without user action.
func IsTransient(err error) bool {
	return errors.Is(err, domain.ErrNetwork) || errors.Is(err, domain.ErrServer)
}
