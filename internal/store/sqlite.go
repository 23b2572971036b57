// Package store provides storage backends for MovePilot.
//
// This file implements the SQLite-backed store for generated tasks and
// workflow submissions.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/MovePilotApp/MovePilot/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.SQLiteDSN != "")

	// Determine DSN (required)
	dsn := cfg.SQLiteDSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	// Ensure the directory exists
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	slog.Debug("SQLite database directory verified/created", "dir", dir)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	slog.Debug("SQLite database opened")

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure tables exist
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// UpsertTasks inserts or replaces tasks by id inside one transaction, so a
// batch lands atomically.
func (s *SQLiteStore) UpsertTasks(ctx context.Context, tasks []models.GeneratedTask) error {
	if len(tasks) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("SQLiteStore UpsertTasks begin failed", "error", err)
		return fmt.Errorf("failed to begin task upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO tasks (id, user_id, title, subtitle, category, subcategory, status, priority, created_at, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		slog.Error("SQLiteStore UpsertTasks prepare failed", "error", err)
		return fmt.Errorf("failed to prepare task upsert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tasks {
		_, err := stmt.ExecContext(ctx, t.ID, t.UserID, t.Title, nilIfEmpty(t.Subtitle), t.Category,
			nilIfEmpty(t.Subcategory), string(t.Status), t.Priority, t.CreatedAt, t.Source)
		if err != nil {
			slog.Error("SQLiteStore UpsertTasks insert failed", "error", err, "taskID", t.ID)
			return fmt.Errorf("failed to upsert task %s: %w", t.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		slog.Error("SQLiteStore UpsertTasks commit failed", "error", err)
		return fmt.Errorf("failed to commit task upsert: %w", err)
	}
	slog.Debug("SQLiteStore UpsertTasks succeeded", "count", len(tasks))
	return nil
}

// ListTasksByUser returns the user's tasks, highest priority first.
func (s *SQLiteStore) ListTasksByUser(ctx context.Context, userID string) ([]models.GeneratedTask, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, subtitle, category, subcategory, status, priority, created_at, source
		FROM tasks WHERE user_id = ? ORDER BY priority DESC, id ASC`, userID)
	if err != nil {
		slog.Error("SQLiteStore ListTasksByUser query failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query tasks for %s: %w", userID, err)
	}
	defer rows.Close()

	var tasks []models.GeneratedTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			slog.Error("SQLiteStore ListTasksByUser scan failed", "error", err)
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore ListTasksByUser rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate task rows: %w", err)
	}
	slog.Debug("SQLiteStore ListTasksByUser succeeded", "userID", userID, "count", len(tasks))
	return tasks, nil
}

// RecordSubmission appends one workflow submission audit record.
func (s *SQLiteStore) RecordSubmission(ctx context.Context, sub models.WorkflowSubmission) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (id, workflow_id, user_id, kind, answers_json, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.WorkflowID, sub.UserID, string(sub.Kind), nilIfEmpty(sub.AnswersJSON), sub.SubmittedAt)
	if err != nil {
		slog.Error("SQLiteStore RecordSubmission failed", "error", err, "workflowID", sub.WorkflowID)
		return fmt.Errorf("failed to insert submission %s: %w", sub.ID, err)
	}
	slog.Debug("SQLiteStore RecordSubmission succeeded", "workflowID", sub.WorkflowID, "userID", sub.UserID)
	return nil
}

// Ping reports whether the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}
