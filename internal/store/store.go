package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/examprep/internal/dbdriver"

	// Postgres driver registered as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Driver names a supported SQL backend.
type Driver = dbdriver.Driver

const (
	DriverSQLite   = dbdriver.SQLite
	DriverPostgres = dbdriver.Postgres
)

// ParseDriver maps common aliases onto a Driver.
func ParseDriver(s string) (Driver, error) {
	return dbdriver.Parse(s)
}

// Options configures Open.
type Options struct {
	Driver Driver
	DSN    string
}

// Store is the SQL-backed Repository. Statements are built with ent's
// dialect-aware builders so the same code serves SQLite and Postgres.
type Store struct {
	db      *sql.DB
	dialect string
}

var _ Repository = (*Store)(nil)

// Open connects to the database described by opts, applies SQLite pragmas
// and creates the schema if it does not exist.
func Open(ctx context.Context, opts Options) (*Store, error) {
	var driverName, dia string
	switch opts.Driver {
	case DriverSQLite, "":
		driverName, dia = "sqlite", dialect.SQLite
	case DriverPostgres:
		driverName, dia = "pgx", dialect.Postgres
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
	if opts.DSN == "" {
		return nil, fmt.Errorf("open database: empty dsn")
	}

	db, err := sql.Open(driverName, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dia == dialect.SQLite {
		// A single connection keeps pragmas and in-memory databases stable.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dia == dialect.SQLite {
		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	}

	s := &Store{db: db, dialect: dia}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return s, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the ent dialect name in use.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.dialect)
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := sqliteSchema
	if s.dialect == dialect.Postgres {
		stmts = postgresSchema
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. EXAMPREP_DB environment variable
// 2. $XDG_DATA_HOME/examprep/examprep.db
// 3. ~/.local/share/examprep/examprep.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("EXAMPREP_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "examprep", "examprep.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
