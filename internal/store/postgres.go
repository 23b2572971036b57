// Package store provides storage backends for MovePilot.
//
// This file implements the PostgreSQL-backed store for generated tasks and
// workflow submissions.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/MovePilotApp/MovePilot/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.PostgresDSN != "")

	// Determine DSN (required)
	dsn := cfg.PostgresDSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}
	slog.Debug("Postgres database opened")

	// Configure connection pool for better performance
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure tables exist
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")
	return &PostgresStore{db: db}, nil
}

// UpsertTasks inserts or updates tasks by id inside one transaction, so a
// batch lands atomically.
func (s *PostgresStore) UpsertTasks(ctx context.Context, tasks []models.GeneratedTask) error {
	if len(tasks) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("PostgresStore UpsertTasks begin failed", "error", err)
		return fmt.Errorf("failed to begin task upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (id, user_id, title, subtitle, category, subcategory, status, priority, created_at, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			title = EXCLUDED.title,
			subtitle = EXCLUDED.subtitle,
			category = EXCLUDED.category,
			subcategory = EXCLUDED.subcategory,
			status = EXCLUDED.status,
			priority = EXCLUDED.priority,
			created_at = EXCLUDED.created_at,
			source = EXCLUDED.source`)
	if err != nil {
		slog.Error("PostgresStore UpsertTasks prepare failed", "error", err)
		return fmt.Errorf("failed to prepare task upsert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tasks {
		_, err := stmt.ExecContext(ctx, t.ID, t.UserID, t.Title, nilIfEmpty(t.Subtitle), t.Category,
			nilIfEmpty(t.Subcategory), string(t.Status), t.Priority, t.CreatedAt, t.Source)
		if err != nil {
			slog.Error("PostgresStore UpsertTasks insert failed", "error", err, "taskID", t.ID)
			return fmt.Errorf("failed to upsert task %s: %w", t.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		slog.Error("PostgresStore UpsertTasks commit failed", "error", err)
		return fmt.Errorf("failed to commit task upsert: %w", err)
	}
	slog.Debug("PostgresStore UpsertTasks succeeded", "count", len(tasks))
	return nil
}

// ListTasksByUser returns the user's tasks, highest priority first.
func (s *PostgresStore) ListTasksByUser(ctx context.Context, userID string) ([]models.GeneratedTask, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, subtitle, category, subcategory, status, priority, created_at, source
		FROM tasks WHERE user_id = $1 ORDER BY priority DESC, id ASC`, userID)
	if err != nil {
		slog.Error("PostgresStore ListTasksByUser query failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query tasks for %s: %w", userID, err)
	}
	defer rows.Close()

	var tasks []models.GeneratedTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			slog.Error("PostgresStore ListTasksByUser scan failed", "error", err)
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore ListTasksByUser rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate task rows: %w", err)
	}
	slog.Debug("PostgresStore ListTasksByUser succeeded", "userID", userID, "count", len(tasks))
	return tasks, nil
}

// RecordSubmission appends one workflow submission audit record.
func (s *PostgresStore) RecordSubmission(ctx context.Context, sub models.WorkflowSubmission) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (id, workflow_id, user_id, kind, answers_json, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sub.ID, sub.WorkflowID, sub.UserID, string(sub.Kind), nilIfEmpty(sub.AnswersJSON), sub.SubmittedAt)
	if err != nil {
		slog.Error("PostgresStore RecordSubmission failed", "error", err, "workflowID", sub.WorkflowID)
		return fmt.Errorf("failed to insert submission %s: %w", sub.ID, err)
	}
	slog.Debug("PostgresStore RecordSubmission succeeded", "workflowID", sub.WorkflowID, "userID", sub.UserID)
	return nil
}

// Ping reports whether the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close Postgres database", "error", err)
	}
	return err
}
