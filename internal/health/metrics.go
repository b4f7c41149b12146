package health

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Metric identifies one kind of biometric reading
type Metric string

const (
	MetricSleep     Metric = "sleep"
	MetricSteps     Metric = "steps"
	MetricHeartRate Metric = "heart_rate"
)

// HealthMetrics is one best-effort snapshot of the athlete's biometrics.
// HeartRateBPM == 0 means no sample was available.
type HealthMetrics struct {
	SleepHours   float64 `json:"sleep_hours"`
	StepCount    int     `json:"step_count"`
	HeartRateBPM float64 `json:"heart_rate_bpm"`
}

// HasHeartRate reports whether a heart-rate sample was found
func (m HealthMetrics) HasHeartRate() bool {
	return m.HeartRateBPM > 0
}

// MetricSource produces raw biometric readings from one backing platform.
//
// The fetch methods never fail: a reading that cannot be retrieved is
// reported as 0 so aggregation is never blocked by a single metric.
type MetricSource interface {
	Authorize(ctx context.Context) error
	FetchSleepHours(ctx context.Context) float64
	FetchDailySteps(ctx context.Context) int
	FetchHeartRate(ctx context.Context) float64
}

var (
	// ErrPermissionDenied is wrapped by AuthError when the user refused access
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnavailable is wrapped by AuthError when the platform lacks the capability
	ErrUnavailable = errors.New("capability unavailable")
)

// AuthError is returned by MetricSource.Authorize
type AuthError struct {
	Source string
	Err    error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authorizing %s: %v", e.Source, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// FetchError describes a failed read. Sources log it and degrade to 0.
type FetchError struct {
	Metric Metric
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Metric, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// SleepStage classifies a sleep sample
type SleepStage string

const (
	StageAsleep SleepStage = "asleep"
	StageAwake  SleepStage = "awake"
	StageInBed  SleepStage = "in_bed"
)

// SleepSample is one contiguous sleep-analysis interval
type SleepSample struct {
	Start time.Time  `json:"start"`
	End   time.Time  `json:"end"`
	Stage SleepStage `json:"stage"`
}

// StepSample is a step count recorded over an interval
type StepSample struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Count int       `json:"count"`
}

// HeartRateSample is a single heart-rate reading
type HeartRateSample struct {
	At      time.Time `json:"at"`
	BPM     float64   `json:"bpm"`
	Resting bool      `json:"resting"`
}
