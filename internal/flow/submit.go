package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/MovePilotApp/MovePilot/internal/catalog"
	"github.com/MovePilotApp/MovePilot/internal/metrics"
	"github.com/MovePilotApp/MovePilot/internal/models"
	"github.com/google/uuid"
)

// VendorMatchingStatus is the status returned for every accepted vendor
// submission; matching itself happens downstream.
const VendorMatchingStatus = "matching_in_progress"

// SubmissionRecorder persists the audit trail of accepted submissions.
type SubmissionRecorder interface {
	RecordSubmission(ctx context.Context, sub models.WorkflowSubmission) error
}

// Notifier announces accepted submissions to external listeners. Calls must
// not block; implementations send in the background and only log failures.
type Notifier interface {
	WorkflowSubmitted(userID, workflowID string, kind models.WorkflowKind, tasksCreated int)
}

// Outcome is the kind-specific result of one accepted submission. Exactly
// one of Vendor and Assessment is set.
type Outcome struct {
	WorkflowID string
	Kind       models.WorkflowKind
	Fallback   bool
	Vendor     *models.VendorSubmissionResult
	Assessment *models.AssessmentSubmissionResult
}

// Submitter commits finished workflows: vendor answers head to matching,
// mini-assessment entries become tasks. The recorder and notifier are
// best-effort collaborators; only task generation can fail a submission.
type Submitter struct {
	catalog   *catalog.Catalog
	generator *Generator
	recorder  SubmissionRecorder
	notifier  Notifier
	now       func() time.Time
}

// NewSubmitter wires the submission path. A nil recorder skips the audit
// trail; a nil notifier skips outbound notifications.
func NewSubmitter(cat *catalog.Catalog, generator *Generator, recorder SubmissionRecorder, notifier Notifier) *Submitter {
	slog.Debug("Submitter.NewSubmitter: submission path assembled",
		"hasRecorder", recorder != nil, "hasNotifier", notifier != nil)
	return &Submitter{
		catalog:   cat,
		generator: generator,
		recorder:  recorder,
		notifier:  notifier,
		now:       time.Now,
	}
}

// Submit validates and commits one submission. Unknown workflow ids follow
// the fallback definition rather than failing, and the fallback use is
// counted.
func (s *Submitter) Submit(ctx context.Context, req *models.SubmitWorkflowRequest) (*Outcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	def, ok := s.catalog.Workflow(req.WorkflowID)
	if !ok {
		def = s.catalog.FallbackWorkflow(req.WorkflowID)
		metrics.WorkflowFallbacksTotal.Inc()
		slog.Warn("Submitter.Submit: unknown workflow id, submitting against the fallback survey",
			"workflowID", req.WorkflowID, "userID", req.UserID)
	}

	s.recordAudit(ctx, req, def.Kind)

	out := &Outcome{WorkflowID: def.ID, Kind: def.Kind, Fallback: !ok}
	tasksCreated := 0
	switch def.Kind {
	case models.WorkflowKindAssessment:
		tasks, err := s.generator.Generate(ctx, &def, req.UserID, req.Entries)
		if err != nil {
			return nil, fmt.Errorf("generating tasks for %s: %w", def.ID, err)
		}
		tasksCreated = len(tasks)
		out.Assessment = &models.AssessmentSubmissionResult{Success: true, TasksCreated: tasksCreated}
	default:
		out.Vendor = &models.VendorSubmissionResult{Success: true, Status: VendorMatchingStatus}
	}

	metrics.SubmissionsTotal.WithLabelValues(string(def.Kind)).Inc()
	if tasksCreated > 0 {
		metrics.TasksGeneratedTotal.Add(float64(tasksCreated))
	}
	if s.notifier != nil {
		s.notifier.WorkflowSubmitted(req.UserID, def.ID, def.Kind, tasksCreated)
	}

	slog.Info("Submitter.Submit: submission accepted",
		"workflowID", def.ID,
		"kind", def.Kind,
		"userID", req.UserID,
		"tasksCreated", tasksCreated)
	return out, nil
}

// recordAudit persists the submission record. Best-effort: failures log and
// never fail the submission.
func (s *Submitter) recordAudit(ctx context.Context, req *models.SubmitWorkflowRequest, kind models.WorkflowKind) {
	if s.recorder == nil {
		return
	}
	payload, err := json.Marshal(req)
	if err != nil {
		slog.Error("Submitter.recordAudit: marshaling submission failed", "error", err, "workflowID", req.WorkflowID)
		return
	}
	sub := models.WorkflowSubmission{
		ID:          uuid.NewString(),
		WorkflowID:  req.WorkflowID,
		UserID:      req.UserID,
		Kind:        kind,
		AnswersJSON: string(payload),
		SubmittedAt: s.now().UTC(),
	}
	if err := s.recorder.RecordSubmission(ctx, sub); err != nil {
		slog.Error("Submitter.recordAudit: persisting submission failed", "error", err, "workflowID", req.WorkflowID, "userID", req.UserID)
	}
}
