package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_insight/customErrors"
	"github.com/fatali-fataliyev/budget_insight/internal/contextutil"
	"github.com/fatali-fataliyev/budget_insight/logging"
	_ "modernc.org/sqlite"
)

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(ctx context.Context, dbPath string) (*SQLiteStorage, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One writer avoids SQLITE_BUSY on concurrent upserts.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrateDb, err := sql.Open("sqlite", dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open migration handle: %w", err)
	}
	if err := runMigrations(migrateDb, "sqlite"); err != nil {
		migrateDb.Close()
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logging.Logger.Infof("SQLite database ready at %s", dbPath)
	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) GetDocument(ctx context.Context, key string) ([]byte, bool, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	var body string
	err := s.db.QueryRowContext(ctx, "SELECT body FROM documents WHERE doc_key = ?;", key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to read document '%s' in SQLiteStorage.GetDocument(), Error: %v", traceID, key, err)
		return nil, false, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "failed to read data, try again later.",
		}
	}
	return []byte(body), true, nil
}

func (s *SQLiteStorage) PutDocument(ctx context.Context, key string, body []byte) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := `INSERT INTO documents (doc_key, body, updated_at) VALUES (?, ?, ?)
ON CONFLICT(doc_key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at;`
	if _, err := s.db.ExecContext(ctx, query, key, string(body), time.Now().UTC()); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to write document '%s' in SQLiteStorage.PutDocument(), Error: %v", traceID, key, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "failed to save data, try again later.",
		}
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStorage) GetStorageType() string {
	return "SQLite"
}
