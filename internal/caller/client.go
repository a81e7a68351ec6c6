package caller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"hiredesk/internal/config"
	"hiredesk/internal/logging"
	"hiredesk/pkg/models"
)

// Client talks to the external calling service. Dial requests are rate
// limited and retried with backoff; call outcomes arrive later through the
// webhook, never in the dial response.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	logger     logging.Logger
}

// NewClient creates a calling service client from configuration.
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.Caller.BaseURL == "" {
		return nil, fmt.Errorf("calling service base URL is required")
	}

	perMinute := cfg.Caller.RatePerMinute
	if perMinute <= 0 {
		perMinute = 30
	}

	return &Client{
		baseURL: cfg.Caller.BaseURL,
		apiKey:  cfg.Caller.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Caller.Timeout,
		},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		maxRetries: cfg.Caller.MaxRetries,
		logger:     logging.GetGlobalLogger(),
	}, nil
}

// Dial asks the calling service to place calls to every candidate in the
// batch. The whole batch is one request, so partial failure is owned by the
// service.
func (c *Client) Dial(ctx context.Context, request *models.CallRequest) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("marshal call request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			c.logger.Warn("Retrying calling service request", map[string]interface{}{
				"attempt":   attempt,
				"backoff":   backoff.String(),
				"search_id": request.SearchID,
			})

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = c.post(ctx, "/v1/calls", payload)
		if lastErr == nil {
			c.logger.Info("Call batch accepted by calling service", map[string]interface{}{
				"search_id":  request.SearchID,
				"candidates": len(request.Candidates),
			})
			return nil
		}
	}

	return fmt.Errorf("calling service unavailable after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *Client) post(ctx context.Context, path string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("calling service returned %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
