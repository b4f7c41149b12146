package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Sleep analysis intervals (unix seconds)
		`CREATE TABLE IF NOT EXISTS sleep_samples (
			id INTEGER PRIMARY KEY,
			start_at INTEGER NOT NULL,
			end_at INTEGER NOT NULL,
			stage TEXT NOT NULL,
			source TEXT,
			UNIQUE (start_at, end_at, stage)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sleep_samples_end ON sleep_samples(end_at)`,

		// Step counts over intervals
		`CREATE TABLE IF NOT EXISTS step_samples (
			id INTEGER PRIMARY KEY,
			start_at INTEGER NOT NULL,
			end_at INTEGER NOT NULL,
			count INTEGER NOT NULL,
			source TEXT,
			UNIQUE (start_at, end_at)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_step_samples_start ON step_samples(start_at)`,

		// Point-in-time heart-rate readings
		`CREATE TABLE IF NOT EXISTS heart_rate_samples (
			id INTEGER PRIMARY KEY,
			measured_at INTEGER NOT NULL,
			bpm REAL NOT NULL,
			resting INTEGER NOT NULL DEFAULT 0,
			source TEXT,
			UNIQUE (measured_at, resting)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_heart_rate_samples_measured ON heart_rate_samples(measured_at)`,

		// Import bookkeeping (key-value)
		`CREATE TABLE IF NOT EXISTS import_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
