package store

import (
	"database/sql"
	"errors"
)

// Import state keys
const (
	KeyLastImport = "last_import"
	KeyLastSource = "last_import_source"
)

// GetImportState retrieves an import state value by key.
// Returns empty string if key doesn't exist.
func (db *DB) GetImportState(key string) (string, error) {
	var value string
	err := db.QueryRow(`
		SELECT value FROM import_state WHERE key = ?
	`, key).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetImportState sets an import state value
func (db *DB) SetImportState(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO import_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}
