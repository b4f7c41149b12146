package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"runready/internal/api"
	"runready/internal/health"
	"runready/internal/session"
)

// ErrSaveFailed wraps the transport error when a run could not be persisted
var ErrSaveFailed = errors.New("saving run failed")

// Insighter generates a short commentary for a finished run
type Insighter interface {
	AnalyzeRun(ctx context.Context, run api.RunPayload) (string, error)
}

// RunSaver persists finished runs
type RunSaver interface {
	SaveRun(ctx context.Context, run api.RunPayload) (*api.SavedRun, error)
}

// RunRecord is a finished run ready for persistence
type RunRecord struct {
	SessionID    string
	DurationText string
	DistanceKm   float64
	HeartRateBPM float64
	StepCount    int
	Insight      string

	// Saved is set once the backend has accepted the record
	Saved *api.SavedRun
}

// Payload returns the wire form of the record
func (r *RunRecord) Payload() api.RunPayload {
	return api.RunPayload{
		Distance:  r.DistanceKm,
		Duration:  r.DurationText,
		HeartRate: r.HeartRateBPM,
		StepCount: r.StepCount,
	}
}

// RunUploadPipeline turns a finished session into a saved run record
type RunUploadPipeline struct {
	insighter Insighter
	saver     RunSaver
	source    health.MetricSource
	logger    *slog.Logger
}

// NewRunUploadPipeline creates a pipeline. source supplies the step count
// at summary time and may be nil; insighter may be nil to always use the
// fallback insight.
func NewRunUploadPipeline(insighter Insighter, saver RunSaver, source health.MetricSource, logger *slog.Logger) *RunUploadPipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunUploadPipeline{
		insighter: insighter,
		saver:     saver,
		source:    source,
		logger:    logger,
	}
}

// Complete builds the run record, requests an insight and saves the run
// once. The record is returned even when saving fails so the caller can
// retry with Save.
func (p *RunUploadPipeline) Complete(ctx context.Context, summary session.Summary) (*RunRecord, error) {
	record := &RunRecord{
		SessionID:    summary.SessionID,
		DurationText: summary.DurationText,
		DistanceKm:   summary.DistanceKm,
		HeartRateBPM: summary.HeartRateBPM,
	}
	if p.source != nil {
		record.StepCount = p.source.FetchDailySteps(ctx)
	}

	record.Insight = p.insight(ctx, record.Payload())

	if err := p.Save(ctx, record); err != nil {
		return record, err
	}
	return record, nil
}

// Save submits the record. A record that was already saved is not sent again.
func (p *RunUploadPipeline) Save(ctx context.Context, record *RunRecord) error {
	if record.Saved != nil {
		return nil
	}

	saved, err := p.saver.SaveRun(ctx, record.Payload())
	if err != nil {
		p.logger.Error("run save failed", "session_id", record.SessionID, "error", err)
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	record.Saved = saved
	p.logger.Info("run saved",
		"session_id", record.SessionID,
		"run_id", saved.ID,
		"distance_km", record.DistanceKm,
		"duration", record.DurationText,
	)
	return nil
}

func (p *RunUploadPipeline) insight(ctx context.Context, run api.RunPayload) string {
	if p.insighter == nil {
		return FallbackInsight
	}
	text, err := p.insighter.AnalyzeRun(ctx, run)
	if err != nil || text == "" {
		p.logger.Warn("insight unavailable, using fallback", "error", err)
		return FallbackInsight
	}
	return text
}
