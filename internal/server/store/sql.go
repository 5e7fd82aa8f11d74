package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/dbx"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/filex"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const documentRowID = 1

// SQLMedium keeps the document in a single row of store_documents.
type SQLMedium struct {
	db            *sql.DB
	gooseDialect  string
	migrationsDir string
}

// NewSQLMedium returns a medium for a PostgreSQL database.
func NewSQLMedium(db *sql.DB) *SQLMedium {
	return &SQLMedium{db: db, gooseDialect: "pgx", migrationsDir: migrations.DirPostgres}
}

// NewSQLiteMedium returns a medium for a SQLite database.
func NewSQLiteMedium(db *sql.DB) *SQLMedium {
	return &SQLMedium{db: db, gooseDialect: "sqlite3", migrationsDir: migrations.DirSQLite}
}

// OpenPostgres opens a pgx-backed database handle for dsn and checks it.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

// OpenSQLite opens the SQLite database file at path, creating its directory
// if needed. The handle is limited to one connection so writers never race
// on the file lock.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if err := filex.EnsureDir(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema migrations.
func (m *SQLMedium) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(m.gooseDialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, m.db, m.migrationsDir); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (m *SQLMedium) Read(ctx context.Context) ([]byte, error) {
	var body []byte
	err := m.db.QueryRowContext(ctx, `SELECT body FROM store_documents WHERE id = $1`, documentRowID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAbsent
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return body, nil
}

func (m *SQLMedium) Write(ctx context.Context, body []byte) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO store_documents (id, body, updated_at)
			VALUES ($1, $2, CURRENT_TIMESTAMP)
			ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
			documentRowID, string(body))
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return nil
	})
}

func (m *SQLMedium) Close() error {
	return m.db.Close()
}
