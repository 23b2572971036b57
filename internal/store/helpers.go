package store

import (
	"database/sql"
	"fmt"

	"github.com/MovePilotApp/MovePilot/internal/models"
)

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// scanTask scans a GeneratedTask from sql.Rows.
func scanTask(rows *sql.Rows) (models.GeneratedTask, error) {
	var t models.GeneratedTask
	var subtitle, subcategory sql.NullString
	var status string
	err := rows.Scan(
		&t.ID, &t.UserID, &t.Title, &subtitle, &t.Category, &subcategory,
		&status, &t.Priority, &t.CreatedAt, &t.Source,
	)
	if err != nil {
		return t, fmt.Errorf("scan task failed: %w", err)
	}
	t.Subtitle = subtitle.String
	t.Subcategory = subcategory.String
	t.Status = models.TaskStatus(status)
	return t, nil
}
