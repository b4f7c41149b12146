package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"runready/internal/health"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 10 * time.Second
)

// Error is a non-2xx response from the backend
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("API error %d on %s %s: %s", e.StatusCode, e.Method, e.Path, e.Body)
}

// Client talks to the runready backend
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a backend client over an explicit transport
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// NewHTTPClient builds the transport. When token is set every request
// carries it as a bearer credential.
func NewHTTPClient(ctx context.Context, token string, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if token == "" {
		return &http.Client{Timeout: timeout}
	}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	client.Timeout = timeout
	return client
}

// ListRuns fetches prior run summaries
func (c *Client) ListRuns(ctx context.Context) ([]RunHistoryItem, error) {
	var runs []RunHistoryItem
	if err := c.do(ctx, http.MethodGet, "/api/v1/runs", nil, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// SaveRun persists a finished run. Any 2xx answer means the run was stored;
// the echoed body only fills in what the backend assigned and may be empty.
func (c *Client) SaveRun(ctx context.Context, run RunPayload) (*SavedRun, error) {
	data, err := c.send(ctx, http.MethodPost, "/api/v1/runs/save", run)
	if err != nil {
		return nil, err
	}

	saved := SavedRun{
		Distance:  run.Distance,
		Duration:  run.Duration,
		HeartRate: run.HeartRate,
		StepCount: run.StepCount,
	}
	if len(bytes.TrimSpace(data)) > 0 {
		var echo SavedRun
		if json.Unmarshal(data, &echo) == nil {
			saved.ID = echo.ID
			saved.Date = echo.Date
		}
	}
	return &saved, nil
}

// AnalyzeRun requests a natural-language insight for a run
func (c *Client) AnalyzeRun(ctx context.Context, run RunPayload) (string, error) {
	var resp AnalyzeResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/runs/analyze", run, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Insight) == "" {
		return "", fmt.Errorf("analyze returned an empty insight")
	}
	return resp.Insight, nil
}

// UploadHealthData submits one raw metric reading
func (c *Client) UploadHealthData(ctx context.Context, metric health.Metric, data any) error {
	return c.do(ctx, http.MethodPost, "/api/v1/health-data/upload", HealthUpload{
		DataType: string(metric),
		Data:     data,
	}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	data, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// send performs the request and returns the body of a 2xx response
func (c *Client) send(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s body: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &Error{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", path, err)
	}
	return data, nil
}
