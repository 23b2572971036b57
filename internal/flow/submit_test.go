package flow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MovePilotApp/MovePilot/internal/catalog"
	"github.com/MovePilotApp/MovePilot/internal/models"
)

type fakeRecorder struct {
	subs []models.WorkflowSubmission
	err  error
}

func (f *fakeRecorder) RecordSubmission(_ context.Context, sub models.WorkflowSubmission) error {
	f.subs = append(f.subs, sub)
	return f.err
}

type fakeNotifier struct {
	calls        int
	workflowID   string
	kind         models.WorkflowKind
	tasksCreated int
}

func (f *fakeNotifier) WorkflowSubmitted(_, workflowID string, kind models.WorkflowKind, tasksCreated int) {
	f.calls++
	f.workflowID = workflowID
	f.kind = kind
	f.tasksCreated = tasksCreated
}

func newTestSubmitter(t *testing.T, writer TaskWriter, recorder SubmissionRecorder, notifier Notifier) *Submitter {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	return NewSubmitter(cat, NewGenerator(writer), recorder, notifier)
}

func TestSubmitAssessmentGeneratesTasks(t *testing.T) {
	writer := &fakeTaskWriter{}
	recorder := &fakeRecorder{}
	notifier := &fakeNotifier{}
	sub := newTestSubmitter(t, writer, recorder, notifier)

	req := &models.SubmitWorkflowRequest{
		WorkflowID: "special_items_assessment",
		UserID:     "user-1",
		Entries: []models.AssessmentEntry{
			{QuestionID: "instruments", AnswerID: "instruments_grand_piano", DisplayName: "Grand piano"},
			{QuestionID: "artwork", AnswerID: "artwork_monet_print", DisplayName: "Monet print"},
		},
	}
	out, err := sub.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if out.Kind != models.WorkflowKindAssessment || out.Fallback {
		t.Errorf("outcome = %+v", out)
	}
	if out.Vendor != nil {
		t.Errorf("Vendor result set on an assessment: %+v", out.Vendor)
	}
	if out.Assessment == nil || !out.Assessment.Success || out.Assessment.TasksCreated != 2 {
		t.Errorf("Assessment = %+v, want success with 2 tasks", out.Assessment)
	}

	written := writer.all()
	if len(written) != 2 || written[0].ID != "special_items_assessment_instruments_grand_piano" {
		t.Errorf("written tasks = %+v", written)
	}
	if notifier.calls != 1 || notifier.kind != models.WorkflowKindAssessment || notifier.tasksCreated != 2 {
		t.Errorf("notifier = %+v", notifier)
	}
	if len(recorder.subs) != 1 {
		t.Fatalf("recorded %d submissions, want 1", len(recorder.subs))
	}
	rec := recorder.subs[0]
	if rec.WorkflowID != req.WorkflowID || rec.UserID != req.UserID || rec.Kind != models.WorkflowKindAssessment {
		t.Errorf("submission record = %+v", rec)
	}
	if rec.ID == "" || rec.SubmittedAt.IsZero() {
		t.Errorf("submission record missing id or timestamp: %+v", rec)
	}
	if !strings.Contains(rec.AnswersJSON, "instruments_grand_piano") {
		t.Errorf("AnswersJSON = %q, want the raw payload", rec.AnswersJSON)
	}
}

func TestSubmitVendorStartsMatching(t *testing.T) {
	writer := &fakeTaskWriter{}
	notifier := &fakeNotifier{}
	sub := newTestSubmitter(t, writer, nil, notifier)

	req := &models.SubmitWorkflowRequest{
		WorkflowID: "moving_services_qualify",
		UserID:     "user-1",
		Answers:    models.WorkflowAnswers{"home_size": {"two_bed"}},
	}
	out, err := sub.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if out.Assessment != nil {
		t.Errorf("Assessment result set on a vendor flow: %+v", out.Assessment)
	}
	if out.Vendor == nil || !out.Vendor.Success || out.Vendor.Status != VendorMatchingStatus {
		t.Errorf("Vendor = %+v, want success with status %q", out.Vendor, VendorMatchingStatus)
	}
	if len(writer.batches) != 0 {
		t.Errorf("vendor flow wrote tasks: %+v", writer.batches)
	}
	if notifier.tasksCreated != 0 {
		t.Errorf("tasksCreated = %d, want 0", notifier.tasksCreated)
	}
}

func TestSubmitUnknownWorkflowUsesFallback(t *testing.T) {
	sub := newTestSubmitter(t, &fakeTaskWriter{}, nil, nil)

	req := &models.SubmitWorkflowRequest{
		WorkflowID: "garage_cleanout_qualify",
		UserID:     "user-1",
		Answers:    models.WorkflowAnswers{"priority": {"speed"}},
	}
	out, err := sub.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !out.Fallback {
		t.Error("Fallback = false for an unregistered id")
	}
	if out.WorkflowID != "garage_cleanout_qualify" || out.Kind != models.WorkflowKindVendor {
		t.Errorf("outcome = %+v, want the requested id treated as a vendor survey", out)
	}
	if out.Vendor == nil || out.Vendor.Status != VendorMatchingStatus {
		t.Errorf("Vendor = %+v", out.Vendor)
	}
}

func TestSubmitRejectsIncompleteRequests(t *testing.T) {
	sub := newTestSubmitter(t, &fakeTaskWriter{}, nil, nil)

	tests := []struct {
		name    string
		req     *models.SubmitWorkflowRequest
		wantErr error
	}{
		{
			name:    "missing workflow id",
			req:     &models.SubmitWorkflowRequest{UserID: "user-1", Answers: models.WorkflowAnswers{"q": {"a"}}},
			wantErr: models.ErrEmptyWorkflowID,
		},
		{
			name:    "missing user id",
			req:     &models.SubmitWorkflowRequest{WorkflowID: "moving_services_qualify", Answers: models.WorkflowAnswers{"q": {"a"}}},
			wantErr: models.ErrEmptyUserID,
		},
		{
			name:    "no answers or entries",
			req:     &models.SubmitWorkflowRequest{WorkflowID: "moving_services_qualify", UserID: "user-1"},
			wantErr: models.ErrMissingAnswers,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := sub.Submit(context.Background(), tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("Submit: err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubmitFailsWhenTaskWritesFail(t *testing.T) {
	errWrite := errors.New("disk full")
	notifier := &fakeNotifier{}
	sub := newTestSubmitter(t, &fakeTaskWriter{err: errWrite}, nil, notifier)

	req := &models.SubmitWorkflowRequest{
		WorkflowID: "special_items_assessment",
		UserID:     "user-1",
		Entries:    []models.AssessmentEntry{{QuestionID: "instruments", DisplayName: "Piano"}},
	}
	if _, err := sub.Submit(context.Background(), req); !errors.Is(err, errWrite) {
		t.Errorf("Submit: err = %v, want the write failure wrapped", err)
	}
	if notifier.calls != 0 {
		t.Errorf("notifier called %d times after a failed submission", notifier.calls)
	}
}

func TestSubmitToleratesRecorderFailure(t *testing.T) {
	recorder := &fakeRecorder{err: errors.New("audit table locked")}
	sub := newTestSubmitter(t, &fakeTaskWriter{}, recorder, nil)

	req := &models.SubmitWorkflowRequest{
		WorkflowID: "moving_services_qualify",
		UserID:     "user-1",
		Answers:    models.WorkflowAnswers{"home_size": {"studio"}},
	}
	out, err := sub.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("Submit failed on an audit-only error: %v", err)
	}
	if out.Vendor == nil || !out.Vendor.Success {
		t.Errorf("outcome = %+v", out)
	}
}
