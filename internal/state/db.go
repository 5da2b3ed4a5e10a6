package state

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/droneq/droneq/internal/utils"

	_ "modernc.org/sqlite"
)

var (
	db         *sql.DB
	dbMu       sync.Mutex
	dbPath     string
	configured bool
)

// Configure sets the path for the SQLite database
func Configure(path string) {
	dbMu.Lock()
	defer dbMu.Unlock()
	dbPath = path
	configured = true
}

const schema = `
CREATE TABLE IF NOT EXISTS queue_items (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	title TEXT,
	link TEXT NOT NULL,
	link_key TEXT,
	protocol TEXT,
	download_client TEXT,
	indexer TEXT,
	size INTEGER,
	size_left INTEGER,
	time_left INTEGER,
	episode_id INTEGER,
	added_at INTEGER
);

CREATE INDEX IF NOT EXISTS idx_queue_items_added ON queue_items(added_at, id);

CREATE TABLE IF NOT EXISTS blacklist (
	link_key TEXT PRIMARY KEY,
	link TEXT NOT NULL,
	title TEXT,
	blacklisted_at INTEGER
);

CREATE TABLE IF NOT EXISTS services (
	name TEXT PRIMARY KEY,
	installed_at INTEGER
);
`

// initDB opens the configured database and creates tables
func initDB() error {
	dbMu.Lock()
	defer dbMu.Unlock()

	if db != nil {
		return nil
	}

	if !configured || dbPath == "" {
		return fmt.Errorf("state database not configured: call state.Configure() first")
	}

	var err error
	db, err = sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers, sqlite would report SQLITE_BUSY otherwise.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		db = nil
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// CloseDB closes the database connection
func CloseDB() {
	dbMu.Lock()
	defer dbMu.Unlock()
	if db != nil {
		if err := db.Close(); err != nil {
			utils.Debug("Error closing state DB: %v", err)
		}
		db = nil
	}
}

// GetDB returns the database instance, initializing it if necessary
func GetDB() (*sql.DB, error) {
	if err := initDB(); err != nil {
		return nil, err
	}
	dbMu.Lock()
	defer dbMu.Unlock()
	return db, nil
}

func withTx(fn func(*sql.Tx) error) error {
	d, err := GetDB()
	if err != nil {
		return err
	}

	tx, err := d.Begin()
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
