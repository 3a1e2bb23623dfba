// ABOUTME: SQLite implementation of the Backend interface
// ABOUTME: Stores one JSON transcript per conversation key with automatic schema creation

package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Driver names accepted by NewSQLiteBackend.
const (
	DriverModernc = "sqlite"
	DriverCgo     = "sqlite3"
)

// SQLiteBackend implements Backend using SQLite
type SQLiteBackend struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteBackend opens (or creates) the database at path with the given
// driver. An empty driver selects DriverModernc. Parent directories are
// created if needed.
func NewSQLiteBackend(driver, path string) (*SQLiteBackend, error) {
	logger := slog.Default().With("component", "history")

	switch driver {
	case "":
		driver = DriverModernc
	case DriverModernc, DriverCgo:
	default:
		return nil, fmt.Errorf("unsupported sqlite driver %q", driver)
	}

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	b := &SQLiteBackend{
		db:     db,
		logger: logger,
	}

	if err := b.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite history initialized", "path", path, "driver", driver)
	return b, nil
}

// createSchema creates the transcripts table if it doesn't exist
func (b *SQLiteBackend) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS transcripts (
			conversation_key TEXT PRIMARY KEY,
			body             TEXT NOT NULL,
			updated_at       TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_transcripts_updated ON transcripts(updated_at);
	`

	_, err := b.db.Exec(schema)
	return err
}

// Get returns the stored body for key.
// Returns ErrNotFound if nothing is stored.
func (b *SQLiteBackend) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT body FROM transcripts WHERE conversation_key = ?`

	var body string
	err := b.db.QueryRowContext(ctx, query, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}

	return []byte(body), nil
}

// Put overwrites the body stored for key.
func (b *SQLiteBackend) Put(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT OR REPLACE INTO transcripts (conversation_key, body, updated_at)
		VALUES (?, ?, ?)
	`

	_, err := b.db.ExecContext(ctx, query,
		key,
		string(value),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving transcript: %w", err)
	}

	b.logger.Debug("saved transcript", "conversation_key", key, "size", len(value))
	return nil
}

// Delete removes the row for key. Deleting a missing key is not an error.
func (b *SQLiteBackend) Delete(ctx context.Context, key string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM transcripts WHERE conversation_key = ?`, key); err != nil {
		return fmt.Errorf("deleting transcript: %w", err)
	}

	b.logger.Debug("deleted transcript", "conversation_key", key)
	return nil
}

// Keys lists every stored conversation key in lexical order.
func (b *SQLiteBackend) Keys(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT conversation_key FROM transcripts ORDER BY conversation_key`)
	if err != nil {
		return nil, fmt.Errorf("listing transcripts: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning transcript key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transcripts: %w", err)
	}

	return keys, nil
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	b.logger.Info("closing SQLite history")
	return b.db.Close()
}
