package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/abhijit1892/ragdemo/server/store/migrations"
)

// DefaultSQLitePath is used when NewSQLiteStore gets an empty path.
const DefaultSQLitePath = "ragdemo.db"

// NewSQLiteStore opens (and migrates) a SQLite history file.
func NewSQLiteStore(path string) (*SQLStore, error) {
	if path == "" {
		path = DefaultSQLitePath
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	if err := runMigration(db, migrations.SQLite, "sqlite/001_init.sql"); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLStore{db: db, d: sqliteDialect}, nil
}
