// Package store provides storage backends for MovePilot.
//
// Generated tasks and workflow submission records persist to SQLite or
// PostgreSQL depending on the configured DSN, with an in-memory store as the
// zero-configuration fallback. All backends satisfy the Store interface.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/MovePilotApp/MovePilot/internal/models"
)

// Store is the persistence surface the engine needs: idempotent task upserts
// keyed by task id, per-user task listings, and the submission audit trail.
type Store interface {
	// UpsertTasks inserts or replaces tasks by id. Callers batch at
	// models.MaxTaskBatchSize; a single call never exceeds one batch.
	UpsertTasks(ctx context.Context, tasks []models.GeneratedTask) error

	// ListTasksByUser returns the user's tasks ordered by priority
	// (highest first), then id.
	ListTasksByUser(ctx context.Context, userID string) ([]models.GeneratedTask, error)

	// RecordSubmission appends one workflow submission audit record.
	RecordSubmission(ctx context.Context, sub models.WorkflowSubmission) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend's resources.
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	PostgresDSN string // PostgreSQL connection string
	SQLiteDSN   string // SQLite database file path
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) {
		o.PostgresDSN = dsn
	}
}

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) {
		o.SQLiteDSN = dsn
	}
}

// DetectDSNType reports "postgres" for PostgreSQL-style connection strings
// and "sqlite" for everything else. File paths are assumed to be SQLite.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// InMemoryStore keeps tasks and submissions in process memory. It backs
// deployments without a database DSN and the test suite.
type InMemoryStore struct {
	mu          sync.RWMutex
	tasks       map[string]models.GeneratedTask
	submissions []models.WorkflowSubmission
}

// Compile-time check that InMemoryStore implements Store.
var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{tasks: make(map[string]models.GeneratedTask)}
}

func (s *InMemoryStore) UpsertTasks(_ context.Context, tasks []models.GeneratedTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range tasks {
		s.tasks[task.ID] = task
	}
	return nil
}

func (s *InMemoryStore) ListTasksByUser(_ context.Context, userID string) ([]models.GeneratedTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.GeneratedTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		if task.UserID == userID {
			out = append(out, task)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *InMemoryStore) RecordSubmission(_ context.Context, sub models.WorkflowSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions = append(s.submissions, sub)
	return nil
}

// Submissions returns all recorded submissions in insertion order.
func (s *InMemoryStore) Submissions() []models.WorkflowSubmission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.WorkflowSubmission, len(s.submissions))
	copy(out, s.submissions)
	return out
}

func (s *InMemoryStore) Ping(_ context.Context) error {
	return nil
}

func (s *InMemoryStore) Close() error {
	return nil
}
