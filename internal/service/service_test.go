package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runready/internal/analysis"
	"runready/internal/api"
	"runready/internal/health"
	"runready/internal/session"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSource struct {
	sleep float64
	steps int
	hr    float64
	// delay blocks every fetch until released
	delay chan struct{}

	mu    sync.Mutex
	calls int
}

func (f *fakeSource) Authorize(context.Context) error { return nil }

func (f *fakeSource) wait() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay != nil {
		<-f.delay
	}
}

func (f *fakeSource) FetchSleepHours(context.Context) float64 { f.wait(); return f.sleep }
func (f *fakeSource) FetchDailySteps(context.Context) int     { f.wait(); return f.steps }
func (f *fakeSource) FetchHeartRate(context.Context) float64  { f.wait(); return f.hr }

type upload struct {
	metric health.Metric
	data   any
	ctxErr error
}

type fakeUploader struct {
	err error

	mu      sync.Mutex
	uploads []upload
}

func (f *fakeUploader) UploadHealthData(ctx context.Context, metric health.Metric, data any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, upload{metric: metric, data: data, ctxErr: ctx.Err()})
	return f.err
}

func (f *fakeUploader) metrics() []health.Metric {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []health.Metric
	for _, u := range f.uploads {
		out = append(out, u.metric)
	}
	return out
}

func TestFetchAll(t *testing.T) {
	src := &fakeSource{sleep: 7.5, steps: 9000, hr: 58}
	agg := NewHealthAggregator(src, nil, quietLogger())

	m := agg.FetchAll(context.Background())
	assert.Equal(t, health.HealthMetrics{SleepHours: 7.5, StepCount: 9000, HeartRateBPM: 58}, m)
	assert.Equal(t, 3, src.calls)
}

func TestFetchAllRunsConcurrently(t *testing.T) {
	// every fetch blocks until all three have started
	release := make(chan struct{})
	src := &fakeSource{sleep: 6, steps: 3000, delay: release}
	agg := NewHealthAggregator(src, nil, quietLogger())

	done := make(chan health.HealthMetrics)
	go func() { done <- agg.FetchAll(context.Background()) }()

	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return src.calls == 3
	}, time.Second, 5*time.Millisecond)
	close(release)

	m := <-done
	assert.Equal(t, 6.0, m.SleepHours)
	assert.Equal(t, 3000, m.StepCount)
	assert.Equal(t, 0.0, m.HeartRateBPM)
}

func TestRefreshScoresAndUploads(t *testing.T) {
	tests := []struct {
		name      string
		source    *fakeSource
		wantScore int
		wantMsg   string
		uploaded  []health.Metric
	}{
		{
			name:      "rested and recovered",
			source:    &fakeSource{sleep: 8, steps: 3000, hr: 55},
			wantScore: 100,
			wantMsg:   analysis.MessageReady,
			uploaded:  []health.Metric{health.MetricSleep, health.MetricSteps, health.MetricHeartRate},
		},
		{
			name:      "no heart rate sample",
			source:    &fakeSource{sleep: 5, steps: 2000},
			wantScore: 30,
			wantMsg:   analysis.MessageLightDay,
			uploaded:  []health.Metric{health.MetricSleep, health.MetricSteps},
		},
		{
			name:      "everything failed",
			source:    &fakeSource{},
			wantScore: 30,
			wantMsg:   analysis.MessageLightDay,
			uploaded:  []health.Metric{health.MetricSleep, health.MetricSteps},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &fakeUploader{}
			agg := NewHealthAggregator(tt.source, up, quietLogger())

			report := agg.Refresh(context.Background())
			agg.Wait()

			assert.Equal(t, tt.wantScore, report.Score.Value)
			assert.Equal(t, tt.wantMsg, report.Score.Message)
			assert.ElementsMatch(t, tt.uploaded, up.metrics())
		})
	}
}

func TestRefreshUploadPayloads(t *testing.T) {
	up := &fakeUploader{}
	agg := NewHealthAggregator(&fakeSource{sleep: 7.25, steps: 4321, hr: 61}, up, quietLogger())
	fixed := time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)
	agg.now = func() time.Time { return fixed }

	agg.Refresh(context.Background())
	agg.Wait()

	byMetric := map[health.Metric]any{}
	for _, u := range up.uploads {
		byMetric[u.metric] = u.data
	}
	assert.Equal(t, api.SleepData{Hours: 7.25, RecordedAt: fixed}, byMetric[health.MetricSleep])
	assert.Equal(t, api.StepsData{Count: 4321, RecordedAt: fixed}, byMetric[health.MetricSteps])
	assert.Equal(t, api.HeartRateData{BPM: 61, RecordedAt: fixed}, byMetric[health.MetricHeartRate])
}

func TestRefreshUploadFailureDoesNotAffectScore(t *testing.T) {
	up := &fakeUploader{err: errors.New("backend down")}
	agg := NewHealthAggregator(&fakeSource{sleep: 8, steps: 3000, hr: 55}, up, quietLogger())

	report := agg.Refresh(context.Background())
	agg.Wait()

	assert.Equal(t, 100, report.Score.Value)
	assert.Len(t, up.metrics(), 3)
}

func TestRefreshUploadsOutliveCallerContext(t *testing.T) {
	up := &fakeUploader{}
	agg := NewHealthAggregator(&fakeSource{sleep: 8, steps: 10000, hr: 55}, up, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	agg.Refresh(ctx)
	cancel()
	agg.Wait()

	for _, u := range up.uploads {
		assert.NoError(t, u.ctxErr, "upload %s saw a cancelled context", u.metric)
	}
}

type fakeInsighter struct {
	text string
	err  error

	calls int
	got   api.RunPayload
}

func (f *fakeInsighter) AnalyzeRun(_ context.Context, run api.RunPayload) (string, error) {
	f.calls++
	f.got = run
	return f.text, f.err
}

type fakeSaver struct {
	errs []error

	calls int
	got   []api.RunPayload
}

func (f *fakeSaver) SaveRun(_ context.Context, run api.RunPayload) (*api.SavedRun, error) {
	f.calls++
	f.got = append(f.got, run)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &api.SavedRun{ID: int64(f.calls), Distance: run.Distance, Duration: run.Duration}, nil
}

func testSummary() session.Summary {
	return session.Summary{
		SessionID:      "abc",
		DurationText:   "00:30:00",
		ElapsedSeconds: 1800,
		DistanceKm:     8.1,
		HeartRateBPM:   148.5,
	}
}

func TestCompleteSavesOnce(t *testing.T) {
	ins := &fakeInsighter{text: "Strong steady effort."}
	saver := &fakeSaver{}
	p := NewRunUploadPipeline(ins, saver, &fakeSource{steps: 6200}, quietLogger())

	record, err := p.Complete(context.Background(), testSummary())
	require.NoError(t, err)

	want := api.RunPayload{Distance: 8.1, Duration: "00:30:00", HeartRate: 148.5, StepCount: 6200}
	assert.Equal(t, want, ins.got)
	require.Equal(t, 1, saver.calls)
	assert.Equal(t, want, saver.got[0])

	assert.Equal(t, "Strong steady effort.", record.Insight)
	assert.Equal(t, "abc", record.SessionID)
	require.NotNil(t, record.Saved)
	assert.Equal(t, int64(1), record.Saved.ID)
}

func TestCompleteInsightFallback(t *testing.T) {
	tests := []struct {
		name      string
		insighter Insighter
	}{
		{name: "analyze fails", insighter: &fakeInsighter{err: errors.New("timeout")}},
		{name: "empty insight", insighter: &fakeInsighter{}},
		{name: "no insighter", insighter: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saver := &fakeSaver{}
			p := NewRunUploadPipeline(tt.insighter, saver, nil, quietLogger())

			record, err := p.Complete(context.Background(), testSummary())
			require.NoError(t, err)
			assert.Equal(t, FallbackInsight, record.Insight)
			assert.NotEmpty(t, record.Insight)
			assert.Equal(t, 1, saver.calls, "save is attempted regardless of insight")
			assert.Equal(t, 0, record.StepCount)
		})
	}
}

func TestCompleteSaveFailureAndRetry(t *testing.T) {
	saver := &fakeSaver{errs: []error{&api.Error{StatusCode: 503, Body: "unavailable"}}}
	p := NewRunUploadPipeline(&fakeInsighter{text: "ok"}, saver, nil, quietLogger())

	record, err := p.Complete(context.Background(), testSummary())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSaveFailed)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 503, apiErr.StatusCode)

	require.NotNil(t, record)
	assert.Nil(t, record.Saved)
	assert.Equal(t, 1, saver.calls, "no automatic retry")

	require.NoError(t, p.Save(context.Background(), record))
	require.NotNil(t, record.Saved)
	assert.Equal(t, 2, saver.calls)

	// already saved records are not sent again
	require.NoError(t, p.Save(context.Background(), record))
	assert.Equal(t, 2, saver.calls)
}

func TestCompleteTreatsAcceptedSaveAsPersisted(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "created without body", status: http.StatusCreated},
		{name: "no content", status: http.StatusNoContent},
		{name: "naive date", status: http.StatusOK, body: `{"id": 9, "date": "2024-10-13T12:00:00"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var saves atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/api/v1/runs/save" {
					saves.Add(1)
				}
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			client := api.NewClient(srv.URL, srv.Client())
			p := NewRunUploadPipeline(nil, client, nil, quietLogger())

			record, err := p.Complete(context.Background(), testSummary())
			require.NoError(t, err)
			require.NotNil(t, record.Saved)

			require.NoError(t, p.Save(context.Background(), record))
			assert.Equal(t, int32(1), saves.Load())
		})
	}
}
