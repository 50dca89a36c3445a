package store

import (
	"database/sql"
	"fmt"
	"time"
)

var backupKeys = []string{
	"backup_enabled",
	"backup_s3_endpoint",
	"backup_s3_bucket",
	"backup_s3_region",
	"backup_s3_access_key",
	"backup_s3_secret_key",
}

type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *SettingsStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// GetBackupSettings returns every backup-related setting that has been set.
func (s *SettingsStore) GetBackupSettings() (map[string]string, error) {
	settings := make(map[string]string)
	for _, key := range backupKeys {
		var value string
		err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get backup setting %q: %w", key, err)
		}
		settings[key] = value
	}
	return settings, nil
}
