package data

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// OpenDB opens the notifier database and creates its tables
func OpenDB(dbPath string) (*sql.DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	// notifier, cheer-mcp and send-now may share the file; writers wait instead of failing
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single writer keeps sqlite from reporting SQLITE_BUSY under concurrent firings
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY,
			content TEXT NOT NULL,
			category_time TEXT NOT NULL DEFAULT 'all',
			category_day TEXT NOT NULL DEFAULT 'all',
			category_season TEXT NOT NULL DEFAULT 'all',
			category_special TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '[]'
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create messages table: %w", err)
	}

	// message_id 0 is the built-in message, so no foreign key is declared here
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sent_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			message_id INTEGER NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT 'catalog',
			character_id TEXT NOT NULL DEFAULT '',
			slot TEXT NOT NULL DEFAULT '',
			sent_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sent_history table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_sent_history_sent_at ON sent_history(sent_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return db, nil
}
