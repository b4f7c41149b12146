package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"runready/internal/health"
)

// DefaultBridgeURL is where the on-device health bridge listens
const DefaultBridgeURL = "http://127.0.0.1:8765"

// Bridge is a MetricSource that reads samples from a native health bridge
// over HTTP. Requests are paced so a burst of refreshes cannot flood it.
type Bridge struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time
	logger     *slog.Logger
}

// NewBridge creates a bridge client. A nil httpClient uses a client with a 10s timeout.
func NewBridge(baseURL string, httpClient *http.Client, logger *slog.Logger) *Bridge {
	if baseURL == "" {
		baseURL = DefaultBridgeURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		// ~10 req/s with room for one full aggregation burst
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 3),
		now:     time.Now,
		logger:  logger.With("source", "bridge"),
	}
}

// Authorize asks the bridge to request read permission from the platform
func (b *Bridge) Authorize(ctx context.Context) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return &health.AuthError{Source: "bridge", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/authorize", nil)
	if err != nil {
		return &health.AuthError{Source: "bridge", Err: err}
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return &health.AuthError{Source: "bridge", Err: fmt.Errorf("%w: %v", health.ErrUnavailable, err)}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &health.AuthError{Source: "bridge", Err: health.ErrPermissionDenied}
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNotImplemented:
		return &health.AuthError{Source: "bridge", Err: health.ErrUnavailable}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &health.AuthError{Source: "bridge", Err: fmt.Errorf("bridge returned %d", resp.StatusCode)}
	}

	b.logger.Info("bridge authorized")
	return nil
}

func (b *Bridge) FetchSleepHours(ctx context.Context) float64 {
	start, end := health.SleepWindow(b.now())
	var samples []health.SleepSample
	if err := b.getSamples(ctx, "/samples/sleep", start, end, &samples); err != nil {
		b.degrade(health.MetricSleep, err)
		return 0
	}
	return health.SumAsleep(samples, start, end)
}

func (b *Bridge) FetchDailySteps(ctx context.Context) int {
	start, end := health.DayWindow(b.now())
	var samples []health.StepSample
	if err := b.getSamples(ctx, "/samples/steps", start, end, &samples); err != nil {
		b.degrade(health.MetricSteps, err)
		return 0
	}
	return health.SumSteps(samples, start, end)
}

func (b *Bridge) FetchHeartRate(ctx context.Context) float64 {
	now := b.now()
	var samples []health.HeartRateSample
	if err := b.getSamples(ctx, "/samples/heart-rate", now.Add(-health.HeartRateLookback), now, &samples); err != nil {
		b.degrade(health.MetricHeartRate, err)
		return 0
	}
	return health.LatestResting(samples, now)
}

func (b *Bridge) getSamples(ctx context.Context, path string, start, end time.Time, out any) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}

	params := url.Values{}
	params.Set("start", start.Format(time.RFC3339))
	params.Set("end", end.Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("bridge error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

func (b *Bridge) degrade(metric health.Metric, err error) {
	b.logger.Warn("metric unavailable, using 0", "error", &health.FetchError{Metric: metric, Err: err})
}
