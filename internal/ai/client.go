// Package ai talks to the remote ranking and link suggestion service.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/onetask/internal/model"
)

// ErrMalformedResponse is returned when a 2xx response cannot be used.
var ErrMalformedResponse = errors.New("malformed response")

// StatusError reports a non-2xx reply.
type StatusError struct {
	Path string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d on POST %s: %s", e.Code, e.Path, e.Body)
}

// Client is a thin JSON-over-POST client for the ranking service. It
// retries on HTTP 429 with backoff and never treats any other non-2xx
// status as success.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries int
}

// Option customizes a Client.
type Option func(*Client)

// WithToken sends the token as a Bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxRetries sets how many times a rate-limited request is retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// NewClient creates a client for the service rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: 2,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SuggestPosition asks where a new task belongs. The result is 1-based.
func (c *Client) SuggestPosition(ctx context.Context, title string, existing []model.Task) (int, error) {
	if existing == nil {
		existing = []model.Task{}
	}
	req := prioritizeTaskRequest{TaskTitle: title, ExistingTasks: existing}

	var resp prioritizeTaskResponse
	if err := c.post(ctx, pathPrioritizeTask, req, &resp); err != nil {
		return 0, err
	}
	if resp.Position == nil {
		return 0, fmt.Errorf("%w: prioritize-task returned no position", ErrMalformedResponse)
	}
	return *resp.Position, nil
}

// PrioritizeList asks the service to rank the whole list. The reply must
// carry every task with an id and title.
func (c *Client) PrioritizeList(ctx context.Context, tasks []model.Task) ([]model.Task, error) {
	var resp prioritizeListResponse
	if err := c.post(ctx, pathPrioritizeList, prioritizeListRequest{Tasks: tasks}, &resp); err != nil {
		return nil, err
	}
	if resp.PrioritizedTasks == nil {
		return nil, fmt.Errorf("%w: prioritize-list returned no tasks", ErrMalformedResponse)
	}
	seen := make(map[string]bool, len(resp.PrioritizedTasks))
	for i, t := range resp.PrioritizedTasks {
		if t.ID == "" || strings.TrimSpace(t.Title) == "" {
			return nil, fmt.Errorf("%w: task %d is missing an id or title", ErrMalformedResponse, i)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("%w: duplicate task id %s", ErrMalformedResponse, t.ID)
		}
		seen[t.ID] = true
	}
	return resp.PrioritizedTasks, nil
}

// Ping sends an empty ranking request to check that the service is
// reachable and accepts the token.
func (c *Client) Ping(ctx context.Context) error {
	var resp prioritizeListResponse
	return c.post(ctx, pathPrioritizeList, prioritizeListRequest{Tasks: []model.Task{}}, &resp)
}

// Suggest fetches link suggestions for a task. An empty result is not an
// error; a reply with any unusable url is rejected as a whole.
func (c *Client) Suggest(ctx context.Context, req SuggestionRequest) ([]model.SuggestedLink, error) {
	var resp suggestionResponse
	if err := c.post(ctx, pathGetSuggestion, req, &resp); err != nil {
		return nil, err
	}
	for i, l := range resp.Links {
		if _, err := model.ParseLinkURL(l.URL); err != nil {
			return nil, fmt.Errorf("%w: suggestion %d has an invalid url %q", ErrMalformedResponse, i, l.URL)
		}
	}
	return resp.Links, nil
}

// post sends body as JSON and decodes the reply into result.
func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request body: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(
			ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data),
		)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("executing request POST %s: %w", path, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading response body: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < c.maxRetries {
			lastErr = &StatusError{Path: path, Code: resp.StatusCode, Body: string(respBody)}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryAfterDuration(resp, attempt)):
				continue
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &StatusError{Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: decoding POST %s: %v", ErrMalformedResponse, path, err)
		}
		return nil
	}

	return fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// retryAfterDuration reads the Retry-After header and falls back to
// exponential backoff.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 10*time.Second {
		backoff = 10 * time.Second
	}
	return backoff
}
