// Package api provides HTTP handlers for MovePilot endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MovePilotApp/MovePilot/internal/metrics"
	"github.com/MovePilotApp/MovePilot/internal/models"
)

// chatTurnHandler runs one turn of conversation (POST /chat/turn). Success
// and failure both answer in the chat wire shape; the models.Error envelope
// never appears on this endpoint.
func (s *Server) chatTurnHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.chatTurnHandler: processing chat turn", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.chatTurnHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req models.ChatTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.chatTurnHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.ChatErrorResponse{
			Text:      "Invalid JSON format",
			Error:     true,
			Retryable: false,
		})
		return
	}

	resp, failure := s.chat.Turn(r.Context(), &req)
	if failure != nil {
		writeJSONResponse(w, statusForFailure(failure.Kind), failure.Response())
		return
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

// statusForFailure maps a chat failure classification to its HTTP status.
// Provider 429s answer 503: the client should back off from us, not see a
// limit it can do nothing about.
func statusForFailure(kind models.FailureKind) int {
	switch kind {
	case models.FailureInvalid:
		return http.StatusBadRequest
	case models.FailureAdmission:
		return http.StatusTooManyRequests
	case models.FailureRateLimited:
		return http.StatusServiceUnavailable
	case models.FailureTimeout:
		return http.StatusGatewayTimeout
	case models.FailureUpstream:
		return http.StatusBadGateway
	case models.FailureAuth:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// workflowsHandler routes workflow operations (GET /workflows/{id},
// POST /workflows/{id}/submit).
func (s *Server) workflowsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.workflowsHandler: routing workflow request", "method", r.Method, "path", r.URL.Path)

	path := strings.TrimPrefix(r.URL.Path, "/workflows")

	// Remove leading slash if present
	path = strings.TrimPrefix(path, "/")

	// Split path into segments
	segments := strings.Split(path, "/")

	if len(segments) == 0 || segments[0] == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Workflow id is required"))
		return
	}

	workflowID := segments[0]

	if len(segments) == 1 {
		// /workflows/{id}
		switch r.Method {
		case http.MethodGet:
			s.getWorkflowHandler(w, r, workflowID)
		default:
			w.Header().Set("Allow", http.MethodGet)
			writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("Method not allowed"))
		}
		return
	}

	if len(segments) == 2 && segments[1] == "submit" {
		// /workflows/{id}/submit
		switch r.Method {
		case http.MethodPost:
			s.submitWorkflowHandler(w, r, workflowID)
		default:
			w.Header().Set("Allow", http.MethodPost)
			writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("Method not allowed"))
		}
		return
	}

	writeJSONResponse(w, http.StatusNotFound, models.Error("Unknown workflow endpoint"))
}

// getWorkflowHandler handles GET /workflows/{id}. Unknown ids serve the
// generic fallback survey instead of a 404 so the client flow never dies.
func (s *Server) getWorkflowHandler(w http.ResponseWriter, r *http.Request, workflowID string) {
	slog.Debug("Server.getWorkflowHandler: fetching workflow definition", "workflowID", workflowID)

	def, ok := s.catalog.Workflow(workflowID)
	if !ok {
		def = s.catalog.FallbackWorkflow(workflowID)
		metrics.WorkflowFallbacksTotal.Inc()
		slog.Warn("Server.getWorkflowHandler: unknown workflow id, serving fallback survey", "workflowID", workflowID)
	}

	writeJSONResponse(w, http.StatusOK, def)
}

// submitWorkflowHandler handles POST /workflows/{id}/submit. The body's
// workflowId wins when present; the path id fills it in otherwise.
func (s *Server) submitWorkflowHandler(w http.ResponseWriter, r *http.Request, workflowID string) {
	var req models.SubmitWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.submitWorkflowHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.WorkflowID == "" {
		req.WorkflowID = workflowID
	}

	out, err := s.submitter.Submit(r.Context(), &req)
	if err != nil {
		if errors.Is(err, models.ErrEmptyWorkflowID) || errors.Is(err, models.ErrEmptyUserID) || errors.Is(err, models.ErrMissingAnswers) {
			slog.Warn("Server.submitWorkflowHandler: validation failed", "error", err, "workflowID", workflowID)
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
			return
		}
		slog.Error("Server.submitWorkflowHandler: submission failed", "error", err, "workflowID", workflowID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to submit workflow"))
		return
	}

	if out.Assessment != nil {
		writeJSONResponse(w, http.StatusOK, out.Assessment)
		return
	}
	writeJSONResponse(w, http.StatusOK, out.Vendor)
}

// refreshTasksRequest is the payload for re-deriving the eligible task list.
type refreshTasksRequest struct {
	UserState *models.UserContext `json:"userState"`
}

// tasksRefreshHandler re-evaluates catalog conditions against a fresh user
// context (POST /tasks/refresh).
func (s *Server) tasksRefreshHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.tasksRefreshHandler: processing refresh request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.tasksRefreshHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req refreshTasksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.tasksRefreshHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.UserState == nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("userState is required"))
		return
	}

	uc := *req.UserState
	uc.DaysUntilMove = models.DaysUntil(uc.MoveDate, time.Now())
	tasks := s.catalog.EligibleTasks(uc.Profile())

	slog.Debug("Server.tasksRefreshHandler: eligible tasks derived", "userID", uc.UserID, "count", len(tasks))
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// tasksHandler returns the generated tasks stored for a user
// (GET /tasks/{userId}).
func (s *Server) tasksHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.tasksHandler: routing task request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		slog.Warn("Server.tasksHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/tasks")
	path = strings.TrimPrefix(path, "/")
	segments := strings.Split(path, "/")
	if len(segments) != 1 || segments[0] == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("User id is required"))
		return
	}
	userID := segments[0]

	tasks, err := s.st.ListTasksByUser(r.Context(), userID)
	if err != nil {
		slog.Error("Server.tasksHandler: failed to fetch tasks", "error", err, "userID", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch tasks"))
		return
	}

	slog.Debug("Server.tasksHandler: tasks fetched", "userID", userID, "count", len(tasks))
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// healthHandler provides a health check endpoint for monitoring and load
// balancing. Store reachability decides healthy versus degraded.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	healthData := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if s.st != nil {
		if err := s.st.Ping(ctx); err != nil {
			slog.Warn("Health check: store ping failed", "error", err)
			healthData["status"] = "degraded"
			healthData["error"] = "Failed to reach task store"
		}
	}

	// Set appropriate status code based on health
	statusCode := http.StatusOK
	if healthData["status"] == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSONResponse(w, statusCode, healthData)
}
