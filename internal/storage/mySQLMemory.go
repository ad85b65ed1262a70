package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_insight/customErrors"
	"github.com/fatali-fataliyev/budget_insight/internal/contextutil"
	"github.com/fatali-fataliyev/budget_insight/logging"
	"github.com/go-sql-driver/mysql"
)

const (
	connectAttempts = 15
	connectInterval = 3 * time.Second
)

type MySQLConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
	// FullDSN overrides every other field when set.
	FullDSN string
}

func (c MySQLConfig) dsns() (adminDsn string, finalDsn string, err error) {
	if c.FullDSN != "" {
		// updated_at is scanned into time.Time, which needs parseTime.
		parsed, err := mysql.ParseDSN(c.FullDSN)
		if err != nil {
			return "", "", fmt.Errorf("invalid FULL_DSN: %w", err)
		}
		parsed.ParseTime = true
		admin := parsed.Clone()
		admin.DBName = ""
		return admin.FormatDSN(), parsed.FormatDSN(), nil
	}
	if c.User == "" || c.Password == "" || c.Host == "" || c.Port == "" {
		return "", "", fmt.Errorf("missing required DB environment variables")
	}
	adminDsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/?parseTime=true", c.User, c.Password, c.Host, c.Port)
	finalDsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", c.User, c.Password, c.Host, c.Port, c.Name)
	return adminDsn, finalDsn, nil
}

// --- INIT START --- //

// Init waits for the server, creates the database if needed and applies
// the embedded migrations.
func Init(ctx context.Context, cfg MySQLConfig) (*sql.DB, error) {
	if cfg.Name == "" {
		cfg.Name = "budget_insight"
	}
	adminDsn, finalDsn, err := cfg.dsns()
	if err != nil {
		return nil, err
	}

	logging.Logger.Info("Connecting to MySQL server for initialization...")
	adminDb, err := sql.Open("mysql", adminDsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open admin mysql handle: %w", err)
	}
	defer adminDb.Close()

	if err := waitForDatabase(ctx, adminDb); err != nil {
		return nil, err
	}

	if cfg.FullDSN == "" {
		if err := ensureDatabase(ctx, adminDb, cfg.Name); err != nil {
			return nil, err
		}
	}

	logging.Logger.Info("Connecting to database...")
	db, err := sql.Open("mysql", finalDsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database handle: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logging.Logger.Info("Connected to database successfully")

	logging.Logger.Info("Running migrations...")
	migrateDb, err := sql.Open("mysql", finalDsn)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open migration handle: %w", err)
	}
	if err := runMigrations(migrateDb, "mysql"); err != nil {
		migrateDb.Close()
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func waitForDatabase(ctx context.Context, db *sql.DB) error {
	for i := 0; i < connectAttempts; i++ {
		if err := db.PingContext(ctx); err == nil {
			return nil
		}
		logging.Logger.Warnf("Database not ready, retrying... (%d/%d)", i+1, connectAttempts)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(connectInterval):
		}
	}
	return fmt.Errorf("database unreachable after multiple attempts")
}

func ensureDatabase(ctx context.Context, adminDb *sql.DB, dbname string) error {
	var dbnameExistence string
	checkDbnameExistQuery := "SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?"
	err := adminDb.QueryRowContext(ctx, checkDbnameExistQuery, dbname).Scan(&dbnameExistence)
	if errors.Is(err, sql.ErrNoRows) {
		logging.Logger.Infof("Database '%s' does not exist, creating...", dbname)
		createDbSql := fmt.Sprintf("CREATE DATABASE `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_general_ci;", dbname)
		if _, err := adminDb.ExecContext(ctx, createDbSql); err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check database existence: %w", err)
	}
	return nil
}

// --- INIT END --- //

type MySQLStorage struct {
	db *sql.DB
}

func NewMySQLStorage(db *sql.DB) *MySQLStorage {
	return &MySQLStorage{db: db}
}

func (mySql *MySQLStorage) GetDocument(ctx context.Context, key string) ([]byte, bool, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	var doc dbDocument
	query := "SELECT doc_key, body, updated_at FROM documents WHERE doc_key = ?;"
	err := mySql.db.QueryRowContext(ctx, query, key).Scan(&doc.Key, &doc.Body, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to read document '%s' in Storage.GetDocument(), Error: %v", traceID, key, err)
		return nil, false, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "failed to read data, try again later.",
		}
	}
	return doc.Body, true, nil
}

func (mySql *MySQLStorage) PutDocument(ctx context.Context, key string, body []byte) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "INSERT INTO documents (doc_key, body, updated_at) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE body = VALUES(body), updated_at = VALUES(updated_at);"
	_, err := mySql.db.ExecContext(ctx, query, key, string(body), time.Now().UTC())
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to write document '%s' in Storage.PutDocument(), Error: %v", traceID, key, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "failed to save data, try again later.",
		}
	}
	return nil
}

func (mySql *MySQLStorage) Close() error {
	return mySql.db.Close()
}

func (mySql *MySQLStorage) GetStorageType() string {
	return "MySQL"
}
