package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"runready/internal/health"
)

// InsertSleepSamples stores sleep intervals, skipping exact duplicates.
// Returns the number of new rows.
func (db *DB) InsertSleepSamples(ctx context.Context, samples []health.SleepSample, source string) (int, error) {
	return db.insertBatch(ctx, `
		INSERT INTO sleep_samples (start_at, end_at, stage, source)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(start_at, end_at, stage) DO NOTHING
	`, len(samples), func(i int) []any {
		s := samples[i]
		return []any{s.Start.Unix(), s.End.Unix(), string(s.Stage), toNullString(source)}
	})
}

// InsertStepSamples stores step counts; a re-imported interval takes the new count
func (db *DB) InsertStepSamples(ctx context.Context, samples []health.StepSample, source string) (int, error) {
	return db.insertBatch(ctx, `
		INSERT INTO step_samples (start_at, end_at, count, source)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(start_at, end_at) DO UPDATE SET
			count = excluded.count,
			source = excluded.source
	`, len(samples), func(i int) []any {
		s := samples[i]
		return []any{s.Start.Unix(), s.End.Unix(), s.Count, toNullString(source)}
	})
}

// InsertHeartRateSamples stores heart-rate readings, skipping duplicates
func (db *DB) InsertHeartRateSamples(ctx context.Context, samples []health.HeartRateSample, source string) (int, error) {
	return db.insertBatch(ctx, `
		INSERT INTO heart_rate_samples (measured_at, bpm, resting, source)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(measured_at, resting) DO NOTHING
	`, len(samples), func(i int) []any {
		s := samples[i]
		return []any{s.At.Unix(), s.BPM, boolToInt(s.Resting), toNullString(source)}
	})
}

func (db *DB) insertBatch(ctx context.Context, query string, n int, args func(i int) []any) (int, error) {
	if n == 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i := 0; i < n; i++ {
		result, err := stmt.ExecContext(ctx, args(i)...)
		if err != nil {
			return 0, fmt.Errorf("inserting sample %d: %w", i, err)
		}
		if rows, err := result.RowsAffected(); err == nil {
			inserted += int(rows)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing samples: %w", err)
	}
	return inserted, nil
}

// SleepSamples returns sleep intervals overlapping [start, end], oldest first
func (db *DB) SleepSamples(ctx context.Context, start, end time.Time) ([]health.SleepSample, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT start_at, end_at, stage
		FROM sleep_samples
		WHERE end_at >= ? AND start_at <= ?
		ORDER BY start_at
	`, start.Unix(), end.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []health.SleepSample
	for rows.Next() {
		var startAt, endAt int64
		var stage string
		if err := rows.Scan(&startAt, &endAt, &stage); err != nil {
			return nil, err
		}
		samples = append(samples, health.SleepSample{
			Start: time.Unix(startAt, 0),
			End:   time.Unix(endAt, 0),
			Stage: health.SleepStage(stage),
		})
	}
	return samples, rows.Err()
}

// StepSamples returns step intervals starting within [start, end]
func (db *DB) StepSamples(ctx context.Context, start, end time.Time) ([]health.StepSample, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT start_at, end_at, count
		FROM step_samples
		WHERE start_at >= ? AND start_at <= ?
		ORDER BY start_at
	`, start.Unix(), end.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []health.StepSample
	for rows.Next() {
		var startAt, endAt int64
		var s health.StepSample
		if err := rows.Scan(&startAt, &endAt, &s.Count); err != nil {
			return nil, err
		}
		s.Start = time.Unix(startAt, 0)
		s.End = time.Unix(endAt, 0)
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// HeartRateSamples returns readings measured within [start, end], newest first
func (db *DB) HeartRateSamples(ctx context.Context, start, end time.Time) ([]health.HeartRateSample, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT measured_at, bpm, resting
		FROM heart_rate_samples
		WHERE measured_at >= ? AND measured_at <= ?
		ORDER BY measured_at DESC
	`, start.Unix(), end.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []health.HeartRateSample
	for rows.Next() {
		var measuredAt int64
		var resting int
		var s health.HeartRateSample
		if err := rows.Scan(&measuredAt, &s.BPM, &resting); err != nil {
			return nil, err
		}
		s.At = time.Unix(measuredAt, 0)
		s.Resting = resting != 0
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// SampleCounts returns the number of stored rows per metric
func (db *DB) SampleCounts(ctx context.Context) (map[health.Metric]int, error) {
	counts := make(map[health.Metric]int, 3)
	tables := map[health.Metric]string{
		health.MetricSleep:     "sleep_samples",
		health.MetricSteps:     "step_samples",
		health.MetricHeartRate: "heart_rate_samples",
	}
	for metric, table := range tables {
		var n int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("counting %s: %w", table, err)
		}
		counts[metric] = n
	}
	return counts, nil
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
