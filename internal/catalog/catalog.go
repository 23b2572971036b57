// Package catalog provides MovePilot's read-only reference data.
//
// This file loads the embedded task and workflow catalogs and answers
// lookups against them. Unknown workflow ids fall back to a generic
// qualifying survey instead of failing; callers decide whether to count the
// fallback as a telemetry event.
package catalog

import (
	"fmt"
	"log/slog"

	_ "embed"

	"github.com/MovePilotApp/MovePilot/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed tasks.yaml
var tasksYAML []byte

//go:embed workflows.yaml
var workflowsYAML []byte

// TaskEntry is one task template in the catalog. An entry matches a profile
// iff every condition predicate accepts it; an entry with no conditions
// matches everyone.
type TaskEntry struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string     `json:"category" yaml:"category"`
	Priority    int        `json:"priority" yaml:"priority"`
	Conditions  Conditions `json:"-" yaml:"conditions"`
}

type taskFile struct {
	Tasks []TaskEntry `yaml:"tasks"`
}

type workflowFile struct {
	Workflows []models.WorkflowDefinition `yaml:"workflows"`
}

// Catalog holds the parsed reference data. Read-only after Load.
type Catalog struct {
	tasks     []TaskEntry
	workflows map[string]models.WorkflowDefinition
	order     []string // workflow ids in file order, for listings
}

// Load parses the embedded catalogs. Called once at startup; the result is
// safe for concurrent readers.
func Load() (*Catalog, error) {
	var tf taskFile
	if err := yaml.Unmarshal(tasksYAML, &tf); err != nil {
		slog.Error("Catalog.Load: failed to parse task catalog", "error", err)
		return nil, fmt.Errorf("failed to parse task catalog: %w", err)
	}
	var wf workflowFile
	if err := yaml.Unmarshal(workflowsYAML, &wf); err != nil {
		slog.Error("Catalog.Load: failed to parse workflow catalog", "error", err)
		return nil, fmt.Errorf("failed to parse workflow catalog: %w", err)
	}

	c := &Catalog{
		tasks:     tf.Tasks,
		workflows: make(map[string]models.WorkflowDefinition, len(wf.Workflows)),
	}
	for _, w := range wf.Workflows {
		if w.ID == "" {
			return nil, fmt.Errorf("workflow catalog contains an entry without an id")
		}
		if !models.IsValidWorkflowKind(w.Kind) {
			return nil, fmt.Errorf("workflow %s has unsupported kind %q", w.ID, w.Kind)
		}
		if _, dup := c.workflows[w.ID]; dup {
			return nil, fmt.Errorf("workflow catalog contains duplicate id %s", w.ID)
		}
		c.workflows[w.ID] = w
		c.order = append(c.order, w.ID)
	}
	slog.Info("Catalog loaded", "tasks", len(c.tasks), "workflows", len(c.order))
	return c, nil
}

// Tasks returns every catalog entry in file order.
func (c *Catalog) Tasks() []TaskEntry {
	return c.tasks
}

// TaskByID returns the entry with the given id.
func (c *Catalog) TaskByID(id string) (TaskEntry, bool) {
	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return TaskEntry{}, false
}

// EligibleTasks filters the catalog down to the entries whose conditions all
// accept the profile, preserving catalog order.
func (c *Catalog) EligibleTasks(profile models.Profile) []TaskEntry {
	matched := make([]TaskEntry, 0, len(c.tasks))
	for _, t := range c.tasks {
		if MatchAll(t.Conditions, profile) {
			matched = append(matched, t)
		}
	}
	return matched
}

// Workflow looks up a definition by id. The second return value reports
// whether the id was registered; callers serve FallbackWorkflow when it was
// not.
func (c *Catalog) Workflow(id string) (models.WorkflowDefinition, bool) {
	w, ok := c.workflows[id]
	return w, ok
}

// WorkflowIDs returns the registered workflow ids in catalog order.
func (c *Catalog) WorkflowIDs() []string {
	ids := make([]string, len(c.order))
	copy(ids, c.order)
	return ids
}

// FallbackWorkflow builds the generic three-question qualifying survey served
// for unregistered workflow ids. The requested id is echoed back so a later
// submission round-trips, and the payload is always usable: priority,
// requirements, timeline.
func (c *Catalog) FallbackWorkflow(requestedID string) models.WorkflowDefinition {
	return models.WorkflowDefinition{
		ID:   requestedID,
		Kind: models.WorkflowKindVendor,
		Intro: models.Intro{
			Title:    "Tell us what you need",
			Subtitle: "Three quick questions so we can point you the right way.",
		},
		Questions: []models.Question{
			{
				ID:     "priority",
				Prompt: "What matters most for this?",
				Type:   models.QuestionSingleSelect,
				Options: []models.Option{
					{ID: "speed", Label: "Getting it done fast", Icon: "bolt"},
					{ID: "cost", Label: "Keeping costs down", Icon: "dollarsign.circle"},
					{ID: "care", Label: "Extra care and quality", Icon: "hands.sparkles"},
				},
			},
			{
				ID:     "requirements",
				Prompt: "Anything we should plan around?",
				Type:   models.QuestionMultiSelect,
				Options: []models.Option{
					{ID: "stairs", Label: "Stairs or tricky access", Icon: "figure.stairs"},
					{ID: "storage", Label: "Short-term storage", Icon: "shippingbox"},
					{ID: "fragile", Label: "Fragile or valuable items", Icon: "exclamationmark.shield"},
					{ID: "none", Label: "Nothing special", Icon: "checkmark.circle", Exclusive: true},
				},
			},
			{
				ID:     "timeline",
				Prompt: "When do you need this handled?",
				Type:   models.QuestionSingleSelect,
				Options: []models.Option{
					{ID: "asap", Label: "As soon as possible", Icon: "hare"},
					{ID: "two_weeks", Label: "Within two weeks", Icon: "calendar"},
					{ID: "flexible", Label: "I'm flexible", Icon: "clock"},
				},
			},
		},
		Recap: &models.Recap{
			Title:   "Got it",
			Closing: "We'll use this to line up the right help.",
			Button:  "Sounds good",
		},
	}
}
