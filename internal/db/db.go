package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	defaultDirName = ".planforge"
	defaultDBName  = "planforge.db"
)

type Config struct {
	Workspace string
	// Dir overrides the directory holding the database, relative to Workspace.
	Dir string
}

func (c Config) dir() string {
	workspace := c.Workspace
	if workspace == "" {
		workspace = "."
	}
	dir := c.Dir
	if dir == "" {
		dir = defaultDirName
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(workspace, dir)
}

// EnsureWorkspace creates the database directory if missing.
func EnsureWorkspace(cfg Config) (string, error) {
	path := cfg.dir()
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", err
	}
	return path, nil
}

// Open opens the SQLite database with foreign keys on. Writers take the
// database lock when their transaction begins and the pool holds a single
// connection, so overlapping gateway calls run one after another.
func Open(cfg Config) (*sql.DB, error) {
	if _, err := EnsureWorkspace(cfg); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate", Path(cfg))
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("open %s: %w", Path(cfg), err)
	}
	return conn, nil
}

// Path returns the db path for the workspace.
func Path(cfg Config) string {
	return filepath.Join(cfg.dir(), defaultDBName)
}
