package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runready/internal/health"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", srv.Client())
}

func TestListRuns(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/runs", r.URL.Path)
		io.WriteString(w, `[
			{"id": 1, "date": "2024-05-18T07:30:00Z", "distance": 5.02, "duration": "00:27:41", "avg_heart_rate": 151},
			{"id": 2, "date": "2024-05-19T07:10:00Z", "distance": 10.5, "duration": "00:58:03"}
		]`)
	})

	runs, err := c.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, int64(1), runs[0].ID)
	assert.Equal(t, 5.02, runs[0].Distance)
	require.NotNil(t, runs[0].AvgHeartRate)
	assert.Equal(t, 151, *runs[0].AvgHeartRate)
	assert.Equal(t, time.Date(2024, 5, 18, 7, 30, 0, 0, time.UTC), runs[0].Date.UTC())
	assert.Nil(t, runs[1].AvgHeartRate)
}

func TestSaveRun(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/runs/save", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		io.WriteString(w, `{"id": 42, "distance": 3.21, "duration": "00:20:00", "heart_rate": 150, "step_count": 4000}`)
	})

	saved, err := c.SaveRun(context.Background(), RunPayload{
		Distance:  3.21,
		Duration:  "00:20:00",
		HeartRate: 150,
		StepCount: 4000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), saved.ID)

	assert.Equal(t, map[string]any{
		"distance":   3.21,
		"duration":   "00:20:00",
		"heart_rate": 150.0,
		"step_count": 4000.0,
	}, body)
}

func TestSaveRunAcceptsAny2xx(t *testing.T) {
	run := RunPayload{Distance: 3.21, Duration: "00:20:00", HeartRate: 150, StepCount: 4000}

	tests := []struct {
		name   string
		status int
		body   string
		wantID int64
	}{
		{name: "created without body", status: http.StatusCreated},
		{name: "no content", status: http.StatusNoContent},
		{name: "naive date", status: http.StatusOK, body: `{"id": 7, "date": "2024-10-13T12:00:00"}`, wantID: 7},
		{name: "unexpected body", status: http.StatusOK, body: `saved`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			saved, err := c.SaveRun(context.Background(), run)
			require.NoError(t, err)
			require.NotNil(t, saved)
			assert.Equal(t, tt.wantID, saved.ID)
			assert.Equal(t, run.Distance, saved.Distance)
			assert.Equal(t, run.Duration, saved.Duration)
		})
	}
}

func TestTimestampDecoding(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{`"2024-05-18T07:30:00Z"`, time.Date(2024, 5, 18, 7, 30, 0, 0, time.UTC)},
		{`"2024-05-18T09:30:00+02:00"`, time.Date(2024, 5, 18, 7, 30, 0, 0, time.UTC)},
		{`"2024-10-13T12:00:00"`, time.Date(2024, 10, 13, 12, 0, 0, 0, time.UTC)},
		{`"2024-10-13T12:00:00.250000"`, time.Date(2024, 10, 13, 12, 0, 0, 250000000, time.UTC)},
		{`"2024-10-13 12:00:00"`, time.Date(2024, 10, 13, 12, 0, 0, 0, time.UTC)},
		{`"2024-10-13"`, time.Date(2024, 10, 13, 0, 0, 0, 0, time.UTC)},
		{`null`, time.Time{}},
		{`"yesterday"`, time.Time{}},
	}

	for _, tt := range tests {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &ts), tt.raw)
		assert.True(t, tt.want.Equal(ts.Time), "%s: got %v", tt.raw, ts.Time)
	}
}

func TestListRunsNaiveDates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id": 3, "date": "2024-10-13T12:00:00", "distance": 4.1, "duration": "00:22:10"}]`)
	})

	runs, err := c.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, time.Date(2024, 10, 13, 12, 0, 0, 0, time.UTC), runs[0].Date.UTC())
}

func TestAnalyzeRun(t *testing.T) {
	t.Run("returns insight", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/runs/analyze", r.URL.Path)
			io.WriteString(w, `{"insight": "Strong negative split."}`)
		})
		insight, err := c.AnalyzeRun(context.Background(), RunPayload{Distance: 5})
		require.NoError(t, err)
		assert.Equal(t, "Strong negative split.", insight)
	})

	t.Run("empty insight is an error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"insight": "  "}`)
		})
		_, err := c.AnalyzeRun(context.Background(), RunPayload{})
		assert.Error(t, err)
	})
}

func TestUploadHealthData(t *testing.T) {
	var got struct {
		DataType string         `json:"data_type"`
		Data     map[string]any `json:"data"`
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/health-data/upload", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})

	recorded := time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)
	err := c.UploadHealthData(context.Background(), health.MetricSteps, StepsData{Count: 6120, RecordedAt: recorded})
	require.NoError(t, err)

	assert.Equal(t, "steps", got.DataType)
	assert.Equal(t, 6120.0, got.Data["count"])
	assert.Equal(t, "2024-05-20T09:00:00Z", got.Data["recorded_at"])
}

func TestErrorResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
	})

	_, err := c.SaveRun(context.Background(), RunPayload{})
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr), "want *Error, got %v", err)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "/api/v1/runs/save", apiErr.Path)
	assert.Equal(t, "database unavailable", apiErr.Body)
}

func TestNewHTTPClient(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	t.Run("bearer token attached", func(t *testing.T) {
		hc := NewHTTPClient(context.Background(), "s3cret", 5*time.Second)
		assert.Equal(t, 5*time.Second, hc.Timeout)

		_, err := NewClient(srv.URL, hc).ListRuns(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Bearer s3cret", auth)
	})

	t.Run("no token", func(t *testing.T) {
		hc := NewHTTPClient(context.Background(), "", 0)
		assert.Equal(t, DefaultTimeout, hc.Timeout)

		_, err := NewClient(srv.URL, hc).ListRuns(context.Background())
		require.NoError(t, err)
		assert.Empty(t, auth)
	})
}
