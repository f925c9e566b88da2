package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// MemoryPath selects a private in-memory database instead of a file.
const MemoryPath = ":memory:"

type Config struct {
	Path string // e.g. "./data/presensi.db" or MemoryPath
	Env  string // "dev" | "prod"

	// Name distinguishes in-memory databases opened by the same process.
	Name string
}

func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if cfg.Path == "" {
		cfg.Path = "./data/presensi.db"
	}
	if cfg.Env == "" {
		cfg.Env = "dev"
	}

	// modernc.org/sqlite DSN with per-connection PRAGMAs, see pragmas.
	var dsn string
	if cfg.Path == MemoryPath {
		name := cfg.Name
		if name == "" {
			name = "presensi"
		}
		// Shared cache keeps the database alive while the pool holds its
		// single connection.
		dsn = fmt.Sprintf("file:%s?mode=memory&cache=shared&%s", memoryNameReplacer.Replace(name), pragmas)
	} else {
		// Ensure DB parent directory exists.
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir db dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?%s", cfg.Path, pragmas)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	// Single connection. SQLite allows one writer at a time anyway; every
	// writer goes through Worker and readers never observe a half-applied
	// transaction from another connection. It also keeps an in-memory
	// database from being dropped when an idle connection is closed.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Validate connection early.
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	// Apply migrations.
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// memoryNameReplacer keeps test names (which may contain "/") a single URI
// path segment.
var memoryNameReplacer = strings.NewReplacer("/", "_", "?", "_", "#", "_", " ", "_")

// pragmas are applied per connection by modernc.org/sqlite. Defaults for a
// single-process server:
//   - foreign_keys ON, sessions reference their user snapshot
//   - WAL so history reads do not block the writer
//   - synchronous NORMAL for performance with good safety under WAL
//   - busy_timeout to reduce SQLITE_BUSY under load
const pragmas = "_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
