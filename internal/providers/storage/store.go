package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store is the embedded persistence engine behind the storage capability.
// All durability is delegated to sqlite; the provider layer is glue.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	app_id     TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (app_id, key)
);
`

// OpenStore opens (creating if needed) the store database under dataDir.
func OpenStore(dataDir string) (*Store, error) {
	path := filepath.Join(dataDir, "store.db")

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open store database: %w", err)
	}

	// Single writer; sqlite serializes concurrent writers poorly otherwise.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize store schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Set stores a serialized value under (appID, key).
func (s *Store) Set(appID, key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (app_id, key, value, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (app_id, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		appID, key, value,
	)
	if err != nil {
		return fmt.Errorf("store write failed: %w", err)
	}
	return nil
}

// Get returns the serialized value for (appID, key). The second return is
// false when the key does not exist.
func (s *Store) Get(appID, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE app_id = ? AND key = ?`, appID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store read failed: %w", err)
	}
	return value, true, nil
}

// Remove deletes (appID, key). Reports whether a row was deleted.
func (s *Store) Remove(appID, key string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM kv WHERE app_id = ? AND key = ?`, appID, key)
	if err != nil {
		return false, fmt.Errorf("store delete failed: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Keys lists all keys stored for appID in lexical order.
func (s *Store) Keys(appID string) ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM kv WHERE app_id = ? ORDER BY key`, appID)
	if err != nil {
		return nil, fmt.Errorf("store list failed: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("store list failed: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Entries returns all key/value pairs stored for appID in lexical key order.
func (s *Store) Entries(appID string) (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM kv WHERE app_id = ? ORDER BY key`, appID)
	if err != nil {
		return nil, fmt.Errorf("store list failed: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("store list failed: %w", err)
		}
		entries[key] = value
	}
	return entries, rows.Err()
}

// Clear removes all keys stored for appID. Returns the number removed.
func (s *Store) Clear(appID string) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM kv WHERE app_id = ?`, appID)
	if err != nil {
		return 0, fmt.Errorf("store clear failed: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
