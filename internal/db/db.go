package db

import (
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteOptions = "_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

// InitDB opens the sqlite database at path.
func InitDB(path string) (*sqlx.DB, error) {
	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&" + sqliteOptions
	} else {
		dsn += "?" + sqliteOptions
	}

	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", path, err)
	}

	log.Println("Database connected.")
	return db, nil
}

// InitMemoryDB opens a private in-memory database. Every connection to
// ":memory:" is a separate database, so the pool is pinned to one connection.
func InitMemoryDB() (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("connect to memory db: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
