// Package api implements the REST transport to the Qook chatbot backend.
// One Client per backend; every endpoint gets a typed method. Transport
// failures are returned as plain errors, non-2xx responses as *APIError
// carrying the backend's detail message. There are no retries: callers
// surface failures as chat bubbles and the next successful response
// overwrites any stale local state.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/logging"
)

const defaultCSRFCookie = "csrftoken"

// Config holds the settings for constructing a Client.
type Config struct {
	BaseURL    string
	UserID     string
	Timeout    time.Duration
	CSRFCookie string
}

// Client talks to the chatbot backend. The cookie jar keeps the backend's
// session and CSRF cookies across calls; the CSRF token is echoed into the
// X-CSRFToken header on every mutating request.
type Client struct {
	baseURL    string
	userID     string
	csrfCookie string
	httpClient *http.Client
}

// APIError is a non-2xx backend response with its surfaced detail message.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api: status %d", e.StatusCode)
}

// NewClient creates a new backend client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	csrfCookie := cfg.CSRFCookie
	if csrfCookie == "" {
		csrfCookie = defaultCSRFCookie
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		userID:     cfg.UserID,
		csrfCookie: csrfCookie,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}, nil
}

// UserID returns the identity the client sends with every request.
func (c *Client) UserID() string {
	return c.userID
}

// SetUserID changes the identity sent with subsequent requests.
func (c *Client) SetUserID(id string) {
	c.userID = id
}

// csrfToken reads the anti-forgery token from the cookie jar, empty when the
// backend has not set one yet.
func (c *Client) csrfToken() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	for _, ck := range c.httpClient.Jar.Cookies(u) {
		if ck.Name == c.csrfCookie {
			return ck.Value
		}
	}
	return ""
}

// doJSON posts the request body as JSON and decodes the response into out.
// method GET sends no body.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	start := time.Now()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		if token := c.csrfToken(); token != "" {
			req.Header.Set("X-CSRFToken", token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	logging.APIDebug("%s %s -> %d in %v", method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// multipartField is one non-file field of a multipart request.
type multipartField struct {
	name, value string
}

// doMultipart uploads a file plus form fields and decodes the JSON response.
func (c *Client) doMultipart(ctx context.Context, path, fileField, filePath string, fields []multipartField, out any) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(fileField, filepath.Base(filePath))
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to buffer %s: %w", filePath, err)
	}
	for _, f := range fields {
		if err := writer.WriteField(f.name, f.value); err != nil {
			return fmt.Errorf("failed to write field %s: %w", f.name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token := c.csrfToken(); token != "" {
		req.Header.Set("X-CSRFToken", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	logging.APIDebug("POST %s (multipart %s) -> %d", path, filepath.Base(filePath), resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// newAPIError extracts the backend's detail/error field when present.
func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	detail := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		detail = payload.Detail
		if detail == "" {
			detail = payload.Error
		}
	}
	if detail == "" && len(body) > 0 && len(body) < 200 {
		detail = string(body)
	}
	return &APIError{StatusCode: status, Detail: detail}
}
