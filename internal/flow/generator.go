package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MovePilotApp/MovePilot/internal/models"
)

// TaskWriter is the persistence capability the generator needs. The store
// package provides the real implementation.
type TaskWriter interface {
	UpsertTasks(ctx context.Context, tasks []models.GeneratedTask) error
}

// Generator turns committed mini-assessment entries into persisted tasks.
type Generator struct {
	writer TaskWriter
	now    func() time.Time
}

// NewGenerator creates a task generator backed by the given writer.
func NewGenerator(writer TaskWriter) *Generator {
	return &Generator{writer: writer, now: time.Now}
}

// Generate upserts one task per entry. Task ids derive from the workflow id
// and the entry's answer id alone, so resubmitting the same entries
// overwrites instead of duplicating. Writes commit in batches of at most
// models.MaxTaskBatchSize records.
func (g *Generator) Generate(ctx context.Context, def *models.WorkflowDefinition, userID string, entries []models.AssessmentEntry) ([]models.GeneratedTask, error) {
	if def.TaskTemplate == nil {
		return nil, fmt.Errorf("workflow %s has no task template", def.ID)
	}
	tpl := def.TaskTemplate
	now := g.now().UTC()

	index := make(map[string]int, len(entries))
	tasks := make([]models.GeneratedTask, 0, len(entries))
	for _, entry := range entries {
		answerID := entry.AnswerID
		if answerID == "" {
			answerID = deriveAnswerID(entry.QuestionID, entry.DisplayName, entry.Text)
		}
		task := models.GeneratedTask{
			ID:          def.ID + "_" + answerID,
			UserID:      userID,
			Title:       strings.TrimSpace(tpl.TitlePrefix + " " + entry.Title()),
			Category:    tpl.Category,
			Subcategory: tpl.Subcategory,
			Status:      models.TaskStatusPending,
			Priority:    tpl.Priority,
			CreatedAt:   now,
			Source:      def.ID,
		}
		if entry.DisplayName != "" && entry.Text != "" {
			task.Subtitle = entry.Text
		}
		if i, seen := index[task.ID]; seen {
			tasks[i] = task // duplicate id within one submission: latest wins
			continue
		}
		index[task.ID] = len(tasks)
		tasks = append(tasks, task)
	}

	for start := 0; start < len(tasks); start += models.MaxTaskBatchSize {
		end := start + models.MaxTaskBatchSize
		if end > len(tasks) {
			end = len(tasks)
		}
		if err := g.writer.UpsertTasks(ctx, tasks[start:end]); err != nil {
			return nil, fmt.Errorf("upserting tasks %d..%d: %w", start, end-1, err)
		}
	}

	slog.Debug("Generator.Generate: tasks upserted", "workflowID", def.ID, "userID", userID, "count", len(tasks))
	return tasks, nil
}
