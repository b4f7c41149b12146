package api

import (
	"bytes"
	"encoding/json"
	"time"
)

// Timestamp decodes the backend's dates. Values without a zone are read
// as UTC; an unrecognised value decodes to the zero time.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	t.Time = time.Time{}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time)
}

// RunHistoryItem is one prior run as listed by the backend
type RunHistoryItem struct {
	ID           int64     `json:"id"`
	Date         Timestamp `json:"date"`
	Distance     float64   `json:"distance"` // km
	Duration     string    `json:"duration"` // HH:MM:SS
	AvgHeartRate *int      `json:"avg_heart_rate,omitempty"`
}

// RunPayload is the body of the save and analyze endpoints
type RunPayload struct {
	Distance  float64 `json:"distance"`   // km, two decimals
	Duration  string  `json:"duration"`   // HH:MM:SS
	HeartRate float64 `json:"heart_rate"` // bpm
	StepCount int     `json:"step_count"`
}

// SavedRun is the backend's echo of a persisted run
type SavedRun struct {
	ID        int64     `json:"id"`
	Date      Timestamp `json:"date"`
	Distance  float64   `json:"distance"`
	Duration  string    `json:"duration"`
	HeartRate float64   `json:"heart_rate"`
	StepCount int       `json:"step_count"`
}

// AnalyzeResponse carries the generated insight for a run
type AnalyzeResponse struct {
	Insight string `json:"insight"`
}

// HealthUpload is the body of the health-data upload endpoint
type HealthUpload struct {
	DataType string `json:"data_type"` // sleep, steps or heart_rate
	Data     any    `json:"data"`
}

// SleepData is the data object for a sleep upload
type SleepData struct {
	Hours      float64   `json:"hours"`
	RecordedAt time.Time `json:"recorded_at"`
}

// StepsData is the data object for a steps upload
type StepsData struct {
	Count      int       `json:"count"`
	RecordedAt time.Time `json:"recorded_at"`
}

// HeartRateData is the data object for a heart-rate upload
type HeartRateData struct {
	BPM        float64   `json:"bpm"`
	RecordedAt time.Time `json:"recorded_at"`
}
