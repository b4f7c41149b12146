package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"runready/internal/analysis"
	"runready/internal/api"
	"runready/internal/health"
)

// HealthUploader submits raw metric readings to the backend
type HealthUploader interface {
	UploadHealthData(ctx context.Context, metric health.Metric, data any) error
}

// ReadinessReport is the result of one aggregation pass
type ReadinessReport struct {
	Metrics   health.HealthMetrics    `json:"metrics"`
	Score     analysis.ReadinessScore `json:"score"`
	FetchedAt time.Time               `json:"fetched_at"`
}

// HealthAggregator gathers biometrics from a MetricSource and scores them
type HealthAggregator struct {
	source        health.MetricSource
	uploader      HealthUploader
	logger        *slog.Logger
	now           func() time.Time
	uploadTimeout time.Duration

	uploads sync.WaitGroup
}

// NewHealthAggregator creates an aggregator. uploader may be nil to skip uploads.
func NewHealthAggregator(source health.MetricSource, uploader HealthUploader, logger *slog.Logger) *HealthAggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthAggregator{
		source:        source,
		uploader:      uploader,
		logger:        logger,
		now:           time.Now,
		uploadTimeout: DefaultUploadTimeout,
	}
}

// FetchAll reads all three metrics concurrently and waits for every one.
// Sources degrade failures to 0, so the result is always complete.
func (a *HealthAggregator) FetchAll(ctx context.Context) health.HealthMetrics {
	var m health.HealthMetrics
	var g errgroup.Group

	g.Go(func() error {
		m.SleepHours = a.source.FetchSleepHours(ctx)
		return nil
	})
	g.Go(func() error {
		m.StepCount = a.source.FetchDailySteps(ctx)
		return nil
	})
	g.Go(func() error {
		m.HeartRateBPM = a.source.FetchHeartRate(ctx)
		return nil
	})
	g.Wait()

	a.logger.Debug("metrics fetched",
		"sleep_hours", m.SleepHours,
		"steps", m.StepCount,
		"heart_rate", m.HeartRateBPM,
	)
	return m
}

// Refresh fetches, scores, and starts uploading the raw metrics in the
// background. The report is returned without waiting for uploads.
func (a *HealthAggregator) Refresh(ctx context.Context) ReadinessReport {
	metrics := a.FetchAll(ctx)
	report := ReadinessReport{
		Metrics:   metrics,
		Score:     analysis.Score(metrics),
		FetchedAt: a.now(),
	}

	a.logger.Info("readiness computed",
		"score", report.Score.Value,
		"message", report.Score.Message,
	)

	if a.uploader != nil {
		a.upload(ctx, metrics, report.FetchedAt)
	}
	return report
}

// Wait blocks until background uploads started by Refresh have finished
func (a *HealthAggregator) Wait() {
	a.uploads.Wait()
}

func (a *HealthAggregator) upload(ctx context.Context, m health.HealthMetrics, at time.Time) {
	// uploads outlive the caller's request
	base := context.WithoutCancel(ctx)

	a.send(base, health.MetricSleep, api.SleepData{Hours: m.SleepHours, RecordedAt: at})
	a.send(base, health.MetricSteps, api.StepsData{Count: m.StepCount, RecordedAt: at})
	if m.HasHeartRate() {
		a.send(base, health.MetricHeartRate, api.HeartRateData{BPM: m.HeartRateBPM, RecordedAt: at})
	}
}

func (a *HealthAggregator) send(ctx context.Context, metric health.Metric, data any) {
	a.uploads.Add(1)
	go func() {
		defer a.uploads.Done()

		ctx, cancel := context.WithTimeout(ctx, a.uploadTimeout)
		defer cancel()

		if err := a.uploader.UploadHealthData(ctx, metric, data); err != nil {
			a.logger.Warn("health upload failed", "data_type", metric, "error", err)
			return
		}
		a.logger.Debug("health data uploaded", "data_type", metric)
	}()
}
