// Package client is the Go SDK for the candidate pipeline API. It carries
// the client-side orchestration the pipeline needs: shortlist submission,
// processing monitoring, sequential candidate intake, results review and
// final-selects curation.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds every request the SDK makes. The processing monitor
// carries its own tighter poll deadline on top of this.
const DefaultTimeout = 30 * time.Second

// CredentialProvider supplies the bearer token attached to every request.
// Token lifecycle (storage, refresh) is the caller's concern.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a CredentialProvider for a fixed token.
type StaticToken string

func (t StaticToken) Token(ctx context.Context) (string, error) {
	return string(t), nil
}

// APIError is a non-2xx response decoded into its error payload. Aggregated
// validation messages, when the server sent them, are in Errors.
type APIError struct {
	Status  int
	Code    string
	Message string
	Errors  []string
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("api error %d: %s", e.Status, strings.Join(e.Errors, "; "))
	}
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// Upload is a file attached to a multipart request.
type Upload struct {
	Filename string
	Content  []byte
}

// Client talks to the pipeline API.
type Client struct {
	baseURL    string
	creds      CredentialProvider
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a pipeline API client.
func New(baseURL string, creds CredentialProvider, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, nil, bytes.NewReader(payload), "application/json", out)
}

func (c *Client) putJSON(ctx context.Context, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPut, path, nil, bytes.NewReader(payload), "application/json", out)
}

func (c *Client) deleteJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodDelete, path, query, nil, "", out)
}

// postMultipart sends form fields and file uploads as one multipart request.
func (c *Client) postMultipart(ctx context.Context, path string, fields map[string]string, files map[string]*Upload, out interface{}) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("write form field %s: %w", name, err)
		}
	}
	for name, file := range files {
		if file == nil {
			continue
		}
		part, err := writer.CreateFormFile(name, file.Filename)
		if err != nil {
			return fmt.Errorf("create form file %s: %w", name, err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return fmt.Errorf("write form file %s: %w", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, nil, &body, writer.FormDataContentType(), out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	token, err := c.creds.Token(ctx)
	if err != nil {
		return fmt.Errorf("resolve credentials: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, payload)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeAPIError maps the two error payload shapes the server uses (the
// error/message envelope and the aggregated errors array) onto APIError.
func decodeAPIError(status int, payload []byte) *APIError {
	apiErr := &APIError{Status: status}

	var envelope struct {
		Error   string   `json:"error"`
		Message string   `json:"message"`
		Errors  []string `json:"errors"`
	}
	if err := json.Unmarshal(payload, &envelope); err == nil {
		apiErr.Code = envelope.Error
		apiErr.Message = envelope.Message
		apiErr.Errors = envelope.Errors
		if apiErr.Message == "" && apiErr.Code != "" && len(apiErr.Errors) == 0 {
			apiErr.Message = apiErr.Code
		}
	}
	if apiErr.Message == "" && len(apiErr.Errors) == 0 {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// successError converts a 2xx body that still reports success:false into an
// error, so HTTP failures and application failures look identical to callers.
func successError(success bool, errMsg string) error {
	if success {
		return nil
	}
	if errMsg == "" {
		errMsg = "request was not successful"
	}
	return &APIError{Status: http.StatusOK, Message: errMsg}
}

// helper used by views that fetch candidates
func lowerContains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
