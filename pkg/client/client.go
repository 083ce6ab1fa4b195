// Package client is a Go client for a running MolScope server.  A Client
// holds one server session: an upload replaces the table that later Table,
// Hover and PlotPNG calls read.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/MolScope/pkg/errors"
)

const Version = "0.1.0"

// ErrInvalidConfig is returned by NewClient for an unusable base URL.
var ErrInvalidConfig = errors.New(errors.ErrCodeBadRequest, "invalid client configuration")

type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(format string, args ...interface{}) {}
func (noopLogger) Infof(format string, args ...interface{})  {}
func (noopLogger) Errorf(format string, args ...interface{}) {}

type Client struct {
	baseURL      string
	httpClient   *http.Client
	userAgent    string
	logger       Logger
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration

	mu         sync.Mutex
	csrfToken  string
	generation string
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("molscope: %s (HTTP %d): %s [request_id=%s]", e.Code, e.StatusCode, e.Message, e.RequestID)
}

func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func (e *APIError) IsTooLarge() bool {
	return e.StatusCode == http.StatusRequestEntityTooLarge
}

// IsInvalidLine reports a file rejected because one line is not a molecule.
// Message then names the line.
func (e *APIError) IsInvalidLine() bool {
	return e.StatusCode == http.StatusUnprocessableEntity
}

func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// Record is one row of the descriptor table.
type Record struct {
	SMILES  string  `json:"smiles"`
	Name    string  `json:"name,omitempty"`
	LogP    float64 `json:"logp"`
	SAScore float64 `json:"sa_score"`
}

// Tooltip is the server's answer to a hover.
type Tooltip struct {
	Show   bool   `json:"show"`
	Image  string `json:"image,omitempty"`
	SMILES string `json:"smiles,omitempty"`
	Name   string `json:"name,omitempty"`
	Width  int    `json:"width,omitempty"`
}

// Form describes the upload form.
type Form struct {
	CSRFToken         string   `json:"csrf_token"`
	MaxBytes          int64    `json:"max_bytes"`
	AllowedExtensions []string `json:"allowed_extensions"`
}

// UploadResult is the outcome of an accepted upload.
type UploadResult struct {
	Count      int    `json:"count"`
	Generation string `json:"generation"`
	Next       string `json:"next"`
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrInvalidConfig
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid baseURL: %v", ErrInvalidConfig, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("%w: baseURL scheme must be http or https", ErrInvalidConfig)
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		userAgent:    fmt.Sprintf("molscope-go-client/%s", Version),
		logger:       noopLogger{},
		retryMax:     3,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}

	// The session lives in a cookie; give the client its own jar unless the
	// caller supplied one.
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		hc := *c.httpClient
		hc.Jar = jar
		c.httpClient = &hc
	}
	return c, nil
}

// Form fetches the upload form, which also opens the server session.
func (c *Client) Form(ctx context.Context) (*Form, error) {
	var form Form
	if err := c.do(ctx, http.MethodGet, "/", "", nil, &form); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.csrfToken = form.CSRFToken
	c.mu.Unlock()
	return &form, nil
}

// Upload sends a SMILES list.  On success the server session holds the new
// table; on failure the previous table is kept.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	var result UploadResult
	for attempt := 0; attempt < 2; attempt++ {
		token, err := c.token(ctx, attempt > 0)
		if err != nil {
			return nil, err
		}
		body, contentType, err := multipartBody(token, filename, content)
		if err != nil {
			return nil, err
		}

		err = c.do(ctx, http.MethodPost, "/", contentType, body, &result)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Code == string(errors.ErrCodeUploadCSRF) && attempt == 0 {
			c.logger.Debugf("form token rejected, refreshing")
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}

	c.mu.Lock()
	c.generation = result.Generation
	c.mu.Unlock()
	return &result, nil
}

// Table returns the session's descriptor table.
func (c *Client) Table(ctx context.Context) ([]Record, error) {
	var resp struct {
		Count   int      `json:"count"`
		Records []Record `json:"records"`
	}
	if err := c.get(ctx, "/api/table", &resp); err != nil {
		return nil, err
	}
	return resp.Records, nil
}

// Hover asks for the tooltip of the point at index; a negative index sends
// an empty hover.  Indexes refer to the table of this client's last upload:
// once the session table has been replaced elsewhere the tooltip comes back
// hidden.
func (c *Client) Hover(ctx context.Context, index int) (*Tooltip, error) {
	type point struct {
		CurveNumber int `json:"curveNumber"`
		PointNumber int `json:"pointNumber"`
	}
	c.mu.Lock()
	req := struct {
		Points     []point `json:"points"`
		Generation string  `json:"generation,omitempty"`
	}{Generation: c.generation}
	c.mu.Unlock()
	if index >= 0 {
		req.Points = []point{{PointNumber: index}}
	}

	var tip Tooltip
	if err := c.post(ctx, "/api/hover", req, &tip); err != nil {
		return nil, err
	}
	return &tip, nil
}

// PlotPNG downloads the static scatter plot.
func (c *Client) PlotPNG(ctx context.Context) ([]byte, error) {
	var png []byte
	if err := c.do(ctx, http.MethodGet, "/plot.png", "", nil, &png); err != nil {
		return nil, err
	}
	return png, nil
}

func (c *Client) token(ctx context.Context, refresh bool) (string, error) {
	c.mu.Lock()
	token := c.csrfToken
	c.mu.Unlock()
	if token != "" && !refresh {
		return token, nil
	}
	form, err := c.Form(ctx)
	if err != nil {
		return "", err
	}
	return form.CSRFToken, nil
}

func multipartBody(token, filename string, content []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("csrf_token", token); err != nil {
		return nil, "", err
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, "", nil, result)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, "application/json", b, result)
}

// do sends one request with retries on transport errors, 5xx and 429.
// A *[]byte result receives the raw body; anything else is JSON-decoded.
func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte, result interface{}) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	fullURL := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 {
			backoff := c.calculateBackoff(attempt)
			c.logger.Debugf("Retry attempt %d after %v", attempt, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		requestID := uuid.New().String()
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("X-Request-ID", requestID)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		duration := time.Since(start)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Errorf("Request failed: %v", err)
			lastErr = err
			continue
		}
		c.logger.Debugf("%s %s %d (%v)", method, path, resp.StatusCode, duration)

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < c.retryMax {
			if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
				c.logger.Infof("Rate limited, retrying after %d seconds", seconds)
				select {
				case <-time.After(time.Duration(seconds) * time.Second):
					continue
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}

		if resp.StatusCode >= 400 {
			apiErr := decodeAPIError(resp.StatusCode, requestID, respBody)
			lastErr = apiErr
			if apiErr.IsServerError() {
				continue
			}
			return apiErr
		}

		switch r := result.(type) {
		case nil:
		case *[]byte:
			*r = respBody
		default:
			if len(respBody) > 0 {
				if err := json.Unmarshal(respBody, result); err != nil {
					return fmt.Errorf("failed to unmarshal response: %w", err)
				}
			}
		}
		return nil
	}
	return lastErr
}

func decodeAPIError(status int, requestID string, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, RequestID: requestID}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Code != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.retryWaitMin * time.Duration(1<<uint(attempt-1))
	if backoff > c.retryWaitMax {
		backoff = c.retryWaitMax
	}
	if backoff < 4 {
		return backoff
	}
	jitter := time.Duration(rand.Int63n(int64(backoff / 4)))
	return backoff + jitter
}
