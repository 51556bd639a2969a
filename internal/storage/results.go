// Package storage persists extraction results in SQLite so they can be
// fetched later through the analysis API.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/okhrimenko/kasabot/internal/common"
	"github.com/okhrimenko/kasabot/internal/model"
)

// ResultStore implements durable storage for extraction results.
type ResultStore struct {
	db     *sql.DB
	dbPath string
}

// NewResultStore creates a SQLite-backed result store.
func NewResultStore(dbPath string) (*ResultStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath cannot be empty")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &ResultStore{db: db, dbPath: dbPath}, nil
}

// Migrate creates the schema.
func (s *ResultStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS results (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			date TEXT NOT NULL,
			amount REAL,
			category TEXT NOT NULL,
			original_text TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("failed to create results table: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_results_user ON results(user_id)`)
	if err != nil {
		return fmt.Errorf("failed to create results index: %w", err)
	}

	return nil
}

// SaveResult stores one extraction result.
func (s *ResultStore) SaveResult(ctx context.Context, result model.Result) error {
	var amount sql.NullFloat64
	if result.Amount != nil {
		amount = sql.NullFloat64{Float64: *result.Amount, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO results (id, user_id, date, amount, category, original_text, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID, result.UserID, result.Date, amount,
		string(result.Category), result.OriginalText, result.Error, result.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	return nil
}

// GetResult loads one result by id, returning common.ErrNotFound when absent.
func (s *ResultStore) GetResult(ctx context.Context, id string) (*model.Result, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, date, amount, category, original_text, error, created_at
		FROM results WHERE id = ?`, id)

	result, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("result %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	return result, nil
}

// GetResultsByUser loads all results for a user, newest first.
func (s *ResultStore) GetResultsByUser(ctx context.Context, userID string) ([]model.Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, date, amount, category, original_text, error, created_at
		FROM results WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []model.Result
	for rows.Next() {
		result, scanErr := scanResult(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan result: %w", scanErr)
		}
		results = append(results, *result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate results: %w", err)
	}

	return results, nil
}

// Close closes the database connection.
func (s *ResultStore) Close() error {
	return s.db.Close()
}

// scanner abstracts sql.Row and sql.Rows for scanResult.
type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (*model.Result, error) {
	var result model.Result
	var amount sql.NullFloat64
	var category string

	err := row.Scan(&result.ID, &result.UserID, &result.Date, &amount,
		&category, &result.OriginalText, &result.Error, &result.CreatedAt)
	if err != nil {
		return nil, err
	}

	if amount.Valid {
		result.Amount = &amount.Float64
	}
	result.Category = model.Category(category)

	return &result, nil
}
