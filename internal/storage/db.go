// ABOUTME: Database connection and lifecycle management for SQLite and Postgres.
// ABOUTME: Uses modernc.org/sqlite (pure Go) or pgx through database/sql.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect identifies the SQL engine behind a DB.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DB wraps the database connection.
type DB struct {
	db      *sql.DB
	dialect Dialect
	target  string
}

// ParseDSN maps a connection URL to a driver dialect and driver-specific source.
// postgres:// and postgresql:// use pgx; sqlite://path, file: and :memory: use SQLite.
func ParseDSN(dsn string) (Dialect, string, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DialectPostgres, dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		path := strings.TrimPrefix(dsn, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("sqlite url has no path: %q", dsn)
		}
		return DialectSQLite, path, nil
	case dsn == ":memory:", strings.HasPrefix(dsn, "file:"):
		return DialectSQLite, dsn, nil
	default:
		return "", "", fmt.Errorf("unsupported database url %q", dsn)
	}
}

// Open connects to dsn and initializes the schema.
func Open(ctx context.Context, dsn string) (*DB, error) {
	dialect, target, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	if dialect == DialectPostgres {
		return openPostgres(ctx, target)
	}
	return OpenPath(ctx, target)
}

// OpenPath opens or creates a SQLite database at path, which may also be
// :memory: or a file: URI.
func OpenPath(ctx context.Context, path string) (*DB, error) {
	return openSQLite(ctx, path)
}

// OpenMemory opens a private in-memory SQLite database.
func OpenMemory(ctx context.Context) (*DB, error) {
	return openSQLite(ctx, ":memory:")
}

func openSQLite(ctx context.Context, target string) (*DB, error) {
	if isFilePath(target) {
		if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", target)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer; also keeps :memory: on a single connection.
	db.SetMaxOpenConns(1)

	d := &DB{db: db, dialect: DialectSQLite, target: target}
	if err := d.configurePragmas(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure pragmas: %w", err)
	}
	if err := d.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return d, nil
}

func openPostgres(ctx context.Context, dsn string) (*DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	d := &DB{db: db, dialect: DialectPostgres, target: dsn}
	if err := d.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return d, nil
}

func isFilePath(target string) bool {
	return target != ":memory:" && !strings.HasPrefix(target, "file:")
}

// DataDir returns the default data directory following the XDG base directory layout.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "trainload")
}

// DefaultDSN returns a sqlite:// url at the default XDG data path.
func DefaultDSN() string {
	return "sqlite://" + filepath.Join(DataDir(), "trainload.db")
}

// Dialect reports the engine in use.
func (d *DB) Dialect() Dialect {
	return d.dialect
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// configurePragmas sets up SQLite for integrity and concurrency.
func (d *DB) configurePragmas(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	if isFilePath(d.target) {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL", "PRAGMA synchronous = NORMAL")
	}
	for _, pragma := range pragmas {
		if _, err := d.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for Postgres.
func (d *DB) rebind(query string) string {
	if d.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
