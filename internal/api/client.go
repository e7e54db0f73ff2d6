package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/julianstephens/habitsync/internal/constants"
	apperrors "github.com/julianstephens/habitsync/internal/errors"
	"github.com/julianstephens/habitsync/internal/logger"
)

// TokenSource supplies the bearer credential for authenticated calls.
type TokenSource interface {
	Token() string
}

// Client is a thin HTTP client for the habit service's JSON API. Each call
// issues exactly one request: no retries, no caching.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the service rooted at baseURL. The timeout
// bounds each round trip.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the service root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request describes one call. A nil tokens means the call is unauthenticated.
type request struct {
	op     string
	method string
	path   string
	body   interface{}
	tokens TokenSource
	// check inspects the decoded result of a 2xx response. A non-nil error
	// turns the call into a RemoteError carrying the response status.
	check  func() error
}

// do builds the request, attaches auth, and decodes the JSON response into
// result. All failures come back as *errors.RemoteError.
func (c *Client) do(ctx context.Context, r request, result interface{}) error {
	start := time.Now()
	remoteErr := func(status int, msg string, err error) error {
		return &apperrors.RemoteError{
			Op:         r.op,
			Method:     r.method,
			Path:       r.path,
			StatusCode: status,
			Message:    msg,
			Err:        err,
		}
	}

	var bodyReader io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return remoteErr(0, "", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, bodyReader)
	if err != nil {
		return remoteErr(0, "", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(constants.RequestIDHeader, uuid.NewString())
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.tokens != nil {
		if token := r.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("Request failed", "op", r.op, "method", r.method, "path", r.path, "error", err)
		return remoteErr(0, "", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return remoteErr(0, "", err)
	}

	logger.Debug("Request completed",
		"op", r.op,
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return remoteErr(resp.StatusCode, serverMessage(respBody), nil)
	}

	// No content to parse (e.g. 204).
	if result != nil && resp.StatusCode != http.StatusNoContent && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return remoteErr(resp.StatusCode, "response body is not valid JSON", err)
		}
	}

	if r.check != nil {
		if err := r.check(); err != nil {
			logger.Warn("Unusable response", "op", r.op, "status", resp.StatusCode, "error", err)
			return remoteErr(resp.StatusCode, err.Error(), err)
		}
	}

	return nil
}

// serverMessage extracts the human-readable message from an error body. The
// service answers with a bare JSON string, an object carrying "message" or
// "error", or plain text.
func serverMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	var s string
	if json.Unmarshal(trimmed, &s) == nil {
		return s
	}

	var obj struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(trimmed, &obj) == nil {
		if obj.Message != "" {
			return obj.Message
		}
		if obj.Error != "" {
			return obj.Error
		}
	}

	const maxLen = 200
	text := string(trimmed)
	if len(text) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "..."
	}
	return text
}
