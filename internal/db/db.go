package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"

	"github.com/vaughan-dsouza/thepath/internal/config"
)

// Dialect holds what differs between the supported backends.
type Dialect struct {
	Name        string
	Placeholder sq.PlaceholderFormat
	createTable string
}

var (
	SQLite = Dialect{
		Name:        "sqlite",
		Placeholder: sq.Question,
		createTable: `
			CREATE TABLE IF NOT EXISTS posts (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				title      TEXT NOT NULL,
				content    TEXT NOT NULL,
				published  BOOLEAN NOT NULL DEFAULT 1,
				created_at TIMESTAMP NOT NULL
			)`,
	}

	Postgres = Dialect{
		Name:        "pgx",
		Placeholder: sq.Dollar,
		createTable: `
			CREATE TABLE IF NOT EXISTS posts (
				id         BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
				title      TEXT NOT NULL,
				content    TEXT NOT NULL,
				published  BOOLEAN NOT NULL DEFAULT TRUE,
				created_at TIMESTAMPTZ NOT NULL
			)`,
	}
)

// Store owns the connection pool. It is created once at start and closed at
// shutdown.
type Store struct {
	DB      *sqlx.DB
	Dialect Dialect
	log     zerolog.Logger
}

// Connect opens the database named by cfg.URL, applies pool settings and
// checks connectivity before returning.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*Store, error) {
	var (
		db      *sqlx.DB
		dialect Dialect
	)

	if isPostgresURL(cfg.URL) {
		pgCfg, err := pgx.ParseConfig(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("db: failed to parse DSN: %w", err)
		}

		// Fail fast on startup if PG is unreachable
		pgCfg.ConnectTimeout = 5 * time.Second

		db = sqlx.NewDb(stdlib.OpenDB(*pgCfg), "pgx")
		dialect = Postgres
	} else {
		path, dsn := sqliteDSN(cfg.URL, cfg.BusyTimeout)

		var err error
		db, err = sqlx.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("db: failed to open sqlite database %q: %w", path, err)
		}
		dialect = SQLite

		// Each connection to :memory: is its own database.
		if path == ":memory:" {
			cfg.MaxOpenConns = 1
			cfg.MaxIdleConns = 1
			cfg.ConnMaxLifetime = 0
		}
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db: failed to connect: %w", err)
	}

	var tmp int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&tmp); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db: health check failed: %w", err)
	}

	log.Info().
		Str("driver", dialect.Name).
		Int("max_open_conns", cfg.MaxOpenConns).
		Msg("database connected")

	return &Store{DB: db, Dialect: dialect, log: log}, nil
}

// EnsureSchema creates the posts table and its index if they are missing.
// Existing tables are left as they are.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		s.Dialect.createTable,
		`CREATE INDEX IF NOT EXISTS ix_posts_title ON posts (title)`,
	}
	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("db: ensure schema: %w", err)
		}
	}
	s.log.Debug().Str("table", "posts").Msg("schema ready")
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.DB.Close()
}

// Session acquires a connection from the pool for one unit of work. The
// caller must Close it.
func (s *Store) Session(ctx context.Context) (*Session, error) {
	conn, err := s.DB.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("db: acquire session: %w", err)
	}
	return &Session{conn: conn, sb: sq.StatementBuilder.PlaceholderFormat(s.Dialect.Placeholder)}, nil
}

func isPostgresURL(raw string) bool {
	return strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://")
}

// sqliteDSN turns sqlite:<path>, file:<path>, :memory: or a bare path into a
// modernc DSN carrying the connection pragmas.
func sqliteDSN(raw string, busyTimeout time.Duration) (path, dsn string) {
	path = strings.TrimPrefix(raw, "sqlite://")
	path = strings.TrimPrefix(path, "sqlite:")
	path = strings.TrimPrefix(path, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		path = ":memory:"
	}

	pragmas := []string{
		fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeout.Milliseconds()),
		"_pragma=foreign_keys(ON)",
		"_time_format=sqlite",
	}
	if path != ":memory:" {
		pragmas = append(pragmas, "_pragma=journal_mode(WAL)")
	}

	return path, "file:" + path + "?" + strings.Join(pragmas, "&")
}
