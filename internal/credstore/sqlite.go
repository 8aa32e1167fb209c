package credstore

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store backed by a local SQLite file.
type SQLiteStore struct {
	db        *sql.DB
	encryptor *encryptor
	mu        sync.RWMutex
	closed    bool
}

// Open creates or opens the secret database at dbPath.
func Open(dbPath string) (*SQLiteStore, error) {
	return open(dbPath, newEncryptor())
}

// OpenWithKey opens a store with an explicit 32-byte encryption key (tests).
func OpenWithKey(dbPath string, key []byte) (*SQLiteStore, error) {
	enc, err := newEncryptorWithKey(key)
	if err != nil {
		return nil, err
	}
	return open(dbPath, enc)
}

func open(dbPath string, enc *encryptor) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db, encryptor: enc}

	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS secrets (
		service     TEXT NOT NULL,
		account     TEXT NOT NULL,
		value       TEXT NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (service, account)
	);

	CREATE TABLE IF NOT EXISTS probe_logs (
		id                TEXT PRIMARY KEY,
		url               TEXT NOT NULL,
		provider          TEXT NOT NULL,
		strategy          TEXT NOT NULL,
		status_code       INTEGER,
		prompt_tokens     INTEGER DEFAULT 0,
		completion_tokens INTEGER DEFAULT 0,
		duration_ms       INTEGER,
		error_message     TEXT,
		created_at        DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_probe_logs_created ON probe_logs(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SetSecret stores or replaces a secret, encrypting the value at rest.
func (s *SQLiteStore) SetSecret(service, account, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if service == "" || account == "" || value == "" {
		return ErrInvalidInput
	}

	encrypted, err := s.encryptor.Encrypt(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncryption, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO secrets (service, account, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(service, account) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, service, account, encrypted, time.Now().UTC())

	return err
}

// GetSecret retrieves and decrypts a secret.
func (s *SQLiteStore) GetSecret(service, account string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", ErrStoreClosed
	}

	var encrypted string
	err := s.db.QueryRow(
		"SELECT value FROM secrets WHERE service = ? AND account = ?",
		service, account,
	).Scan(&encrypted)

	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}

	value, err := s.encryptor.Decrypt(encrypted)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryption, err)
	}
	return value, nil
}

// DeleteSecret removes a secret. Deleting a missing secret is not an error.
func (s *SQLiteStore) DeleteSecret(service, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(
		"DELETE FROM secrets WHERE service = ? AND account = ?",
		service, account,
	)
	return err
}

// HasSecret reports whether a secret exists without decrypting it.
func (s *SQLiteStore) HasSecret(service, account string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, ErrStoreClosed
	}

	var one int
	err := s.db.QueryRow(
		"SELECT 1 FROM secrets WHERE service = ? AND account = ?",
		service, account,
	).Scan(&one)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// LogProbe stores one probe history entry.
func (s *SQLiteStore) LogProbe(entry *ProbeLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if entry.ID == "" {
		entry.ID = generateID("probe")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO probe_logs (id, url, provider, strategy, status_code,
			prompt_tokens, completion_tokens, duration_ms, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.URL, entry.Provider, entry.Strategy, entry.StatusCode,
		entry.PromptTokens, entry.CompletionTokens, entry.Duration.Milliseconds(),
		entry.ErrorMessage, entry.CreatedAt)

	return err
}

// ListProbes retrieves probe history, newest first.
func (s *SQLiteStore) ListProbes(filter ProbeFilter) ([]*ProbeLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	query := `SELECT id, url, provider, strategy, status_code,
		prompt_tokens, completion_tokens, duration_ms, COALESCE(error_message, ''), created_at
		FROM probe_logs WHERE 1=1`
	var args []interface{}

	if filter.Provider != "" {
		query += " AND provider = ?"
		args = append(args, filter.Provider)
	}
	if filter.StatusCode != 0 {
		query += " AND status_code = ?"
		args = append(args, filter.StatusCode)
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*ProbeLog
	for rows.Next() {
		var entry ProbeLog
		var durationMs int64
		if err := rows.Scan(&entry.ID, &entry.URL, &entry.Provider, &entry.Strategy,
			&entry.StatusCode, &entry.PromptTokens, &entry.CompletionTokens,
			&durationMs, &entry.ErrorMessage, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.Duration = time.Duration(durationMs) * time.Millisecond
		logs = append(logs, &entry)
	}

	return logs, rows.Err()
}

// PruneProbes deletes probe entries older than the cutoff and reports how
// many were removed.
func (s *SQLiteStore) PruneProbes(olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	result, err := s.db.Exec(
		"DELETE FROM probe_logs WHERE created_at < ?",
		olderThan.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Close closes the underlying database. Safe to call twice.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// generateID creates a new unique ID with a prefix
func generateID(prefix string) string {
	return prefix + "_" + uuid.New().String()[:8]
}
