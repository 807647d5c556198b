package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mealkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/mealkeeper/internal/dbx"
	"github.com/dmitrijs2005/mealkeeper/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// SQLiteStore keeps credentials in the metadata table of a local SQLite
// database.
type SQLiteStore struct {
	db *sql.DB
	q  *sqliteQueries
}

// NewSQLiteStore wraps an already migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, q: &sqliteQueries{db: db}}
}

// OpenSQLite opens (creating if needed) the database file at path and
// migrates it. ":memory:" gives a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		abs, err := filex.EnsureParentDir(path)
		if err != nil {
			return nil, err
		}
		dsn = abs
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// one connection: keeps :memory: a single database and avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewSQLiteStore(db), nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.q.Get(ctx, key)
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	return s.q.Set(ctx, key, value)
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	return s.q.Delete(ctx, key)
}

func (s *SQLiteStore) Update(ctx context.Context, fn func(ctx context.Context, w Writer) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, &sqliteQueries{db: tx})
	})
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type sqliteQueries struct {
	db dbx.DBTX
}

func (q *sqliteQueries) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := q.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential[%s]: %w", key, err)
	}
	return value, nil
}

func (q *sqliteQueries) Set(ctx context.Context, key string, value []byte) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set credential[%s]: %w", key, err)
	}
	return nil
}

func (q *sqliteQueries) Delete(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete credential[%s]: %w", key, err)
	}
	return nil
}
