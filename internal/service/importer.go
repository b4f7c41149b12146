package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"runready/internal/health"
	"runready/internal/store"
)

// SampleFile is the on-disk export format accepted by the importer
type SampleFile struct {
	Sleep     []health.SleepSample     `json:"sleep"`
	Steps     []health.StepSample      `json:"steps"`
	HeartRate []health.HeartRateSample `json:"heart_rate"`
}

// ImportProgress reports progress during an import
type ImportProgress struct {
	Phase     health.Metric
	Total     int
	Completed int
}

// ImportResult contains the results of an import
type ImportResult struct {
	SleepStored     int
	StepsStored     int
	HeartRateStored int
	Skipped         int
}

// Stored is the total number of new rows written
func (r *ImportResult) Stored() int {
	return r.SleepStored + r.StepsStored + r.HeartRateStored
}

// ImportService loads exported samples into the local store
type ImportService struct {
	store *store.DB
	now   func() time.Time
}

// NewImportService creates a new import service
func NewImportService(db *store.DB) *ImportService {
	return &ImportService{store: db, now: time.Now}
}

// ImportFile reads a sample export from disk and stores it
func (s *ImportService) ImportFile(ctx context.Context, path, source string, progress chan<- ImportProgress) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		if progress != nil {
			close(progress)
		}
		return nil, fmt.Errorf("opening sample file: %w", err)
	}
	defer f.Close()

	if source == "" {
		source = DefaultImportSource
	}
	return s.Import(ctx, f, source, progress)
}

// Import decodes a sample export and stores it: sleep -> steps -> heart rate
func (s *ImportService) Import(ctx context.Context, r io.Reader, source string, progress chan<- ImportProgress) (*ImportResult, error) {
	if progress != nil {
		defer close(progress)
	}

	var file SampleFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decoding sample file: %w", err)
	}

	result := &ImportResult{}

	sendProgress(progress, health.MetricSleep, len(file.Sleep), 0)
	n, err := s.store.InsertSleepSamples(ctx, validSleep(file.Sleep), source)
	if err != nil {
		return result, fmt.Errorf("importing sleep samples: %w", err)
	}
	result.SleepStored = n
	result.Skipped += len(file.Sleep) - n
	sendProgress(progress, health.MetricSleep, len(file.Sleep), len(file.Sleep))

	sendProgress(progress, health.MetricSteps, len(file.Steps), 0)
	n, err = s.store.InsertStepSamples(ctx, file.Steps, source)
	if err != nil {
		return result, fmt.Errorf("importing step samples: %w", err)
	}
	result.StepsStored = n
	result.Skipped += len(file.Steps) - n
	sendProgress(progress, health.MetricSteps, len(file.Steps), len(file.Steps))

	sendProgress(progress, health.MetricHeartRate, len(file.HeartRate), 0)
	n, err = s.store.InsertHeartRateSamples(ctx, file.HeartRate, source)
	if err != nil {
		return result, fmt.Errorf("importing heart rate samples: %w", err)
	}
	result.HeartRateStored = n
	result.Skipped += len(file.HeartRate) - n
	sendProgress(progress, health.MetricHeartRate, len(file.HeartRate), len(file.HeartRate))

	if err := s.store.SetImportState(store.KeyLastImport, s.now().UTC().Format(time.RFC3339)); err != nil {
		return result, fmt.Errorf("updating import state: %w", err)
	}
	if err := s.store.SetImportState(store.KeyLastSource, source); err != nil {
		return result, fmt.Errorf("updating import state: %w", err)
	}

	return result, nil
}

// validSleep drops samples whose interval is empty or inverted
func validSleep(samples []health.SleepSample) []health.SleepSample {
	out := make([]health.SleepSample, 0, len(samples))
	for _, s := range samples {
		if s.End.After(s.Start) {
			out = append(out, s)
		}
	}
	return out
}

func sendProgress(ch chan<- ImportProgress, phase health.Metric, total, completed int) {
	if ch == nil {
		return
	}
	select {
	case ch <- ImportProgress{Phase: phase, Total: total, Completed: completed}:
	default:
	}
}
