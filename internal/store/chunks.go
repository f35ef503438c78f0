package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrWriteFailed wraps every store mutation failure. A rebuild that
// returns it leaves the previous transaction rolled back; no partial
// content is ever visible. Callers match it with errors.Is.
var ErrWriteFailed = errors.New("chunk store write failed")

// SessionMeta describes the report the current session was built from
type SessionMeta struct {
	Filename     string
	Dimension    int
	ChatCount    int
	CallCount    int
	ContactCount int
	BuiltAt      time.Time
}

// Rebuild atomically replaces all stored chunks and session metadata.
// Chunk i of the argument lands at position i; after commit no earlier
// chunk is retrievable. The single transaction is what keeps a crashed
// rebuild from leaving a mixed store behind.
func (db *DB) Rebuild(chunks []string, meta SessionMeta) error {
	tx, err := db.sqlDB.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", ErrWriteFailed, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM chunks"); err != nil {
		return fmt.Errorf("%w: failed to clear chunks: %v", ErrWriteFailed, err)
	}
	if _, err := tx.Exec("DELETE FROM session_meta"); err != nil {
		return fmt.Errorf("%w: failed to clear session metadata: %v", ErrWriteFailed, err)
	}

	stmt, err := tx.Prepare("INSERT INTO chunks (position, content) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("%w: failed to prepare statement: %v", ErrWriteFailed, err)
	}
	defer stmt.Close()

	for i, chunk := range chunks {
		if _, err := stmt.Exec(i, chunk); err != nil {
			return fmt.Errorf("%w: failed to insert chunk %d: %v", ErrWriteFailed, i, err)
		}
	}

	builtAt := meta.BuiltAt
	if builtAt.IsZero() {
		builtAt = time.Now().UTC()
	}

	if _, err := tx.Exec(
		`INSERT INTO session_meta (id, filename, dimension, chat_count, call_count, contact_count, built_at)
		 VALUES (1, ?, ?, ?, ?, ?, ?)`,
		meta.Filename, meta.Dimension, meta.ChatCount, meta.CallCount, meta.ContactCount,
		builtAt.Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("%w: failed to write session metadata: %v", ErrWriteFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit: %v", ErrWriteFailed, err)
	}

	return nil
}

// Fetch returns the stored content for each requested position. A
// position with no stored chunk yields no map entry rather than an
// error, so callers can detect partial loss themselves.
func (db *DB) Fetch(positions []int) (map[int]string, error) {
	texts := make(map[int]string, len(positions))
	if len(positions) == 0 {
		return texts, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(positions)), ",")
	args := make([]interface{}, len(positions))
	for i, pos := range positions {
		args[i] = pos
	}

	rows, err := db.sqlDB.Query(
		"SELECT position, content FROM chunks WHERE position IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pos int
		var content string
		if err := rows.Scan(&pos, &content); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		texts[pos] = content
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chunk rows: %w", err)
	}

	return texts, nil
}

// AllChunks returns every stored chunk in position order
func (db *DB) AllChunks() ([]string, error) {
	rows, err := db.sqlDB.Query("SELECT content FROM chunks ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		chunks = append(chunks, content)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chunk rows: %w", err)
	}

	return chunks, nil
}

// Count returns the number of stored chunks
func (db *DB) Count() (int, error) {
	var count int
	if err := db.sqlDB.QueryRow("SELECT COUNT(*) FROM chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

// Meta returns the metadata of the current session, or nil if no
// session has ever been built into this store
func (db *DB) Meta() (*SessionMeta, error) {
	var meta SessionMeta
	var builtAt string

	err := db.sqlDB.QueryRow(
		`SELECT filename, dimension, chat_count, call_count, contact_count, built_at
		 FROM session_meta WHERE id = 1`,
	).Scan(&meta.Filename, &meta.Dimension, &meta.ChatCount, &meta.CallCount,
		&meta.ContactCount, &builtAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session metadata: %w", err)
	}

	if t, err := time.Parse(time.RFC3339, builtAt); err == nil {
		meta.BuiltAt = t
	}

	return &meta, nil
}
