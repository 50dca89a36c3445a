package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Well-known blob keys for the state engine's collections.
const (
	KeyActiveUser = "active_user"
	KeyUsers      = "users"
	KeyTasks      = "tasks"
	KeyBanners    = "banners"
	KeyHistory    = "history"
	KeyMessages   = "messages"
	KeyAdRequests = "ad_requests"
)

// BlobStore persists named serialized collections. The state engine loads
// every collection at startup and writes the affected one back after each
// mutation.
type BlobStore struct {
	db *sql.DB
}

func NewBlobStore(db *sql.DB) *BlobStore {
	return &BlobStore{db: db}
}

// Load returns the blob stored under key, or nil if the key is absent.
// Absent means "initialize empty" to the caller.
func (s *BlobStore) Load(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM blobs WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load blob %q: %w", key, err)
	}
	return value, nil
}

func (s *BlobStore) Save(key string, blob []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, blob, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save blob %q: %w", key, err)
	}
	return nil
}

func (s *BlobStore) Remove(key string) error {
	_, err := s.db.Exec(`DELETE FROM blobs WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("remove blob %q: %w", key, err)
	}
	return nil
}
