package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// TaskStatus is the derived lifecycle state of a follow-up task. Only
// completion is stored (CompletedAt); the three open states are computed
// from the due date at read time and never persisted.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusDue       TaskStatus = "due"
	StatusOverdue   TaskStatus = "overdue"
	StatusCompleted TaskStatus = "completed"
)

// FollowUpTask is one concrete, dated unit of work generated from a
// template step within an instance. Step content is copied at creation so
// later template edits never change existing tasks.
type FollowUpTask struct {
	gorm.Model
	InstanceID uint `gorm:"not null;index" json:"instance_id"`
	StepID     uint `gorm:"not null;index" json:"step_id"`

	Title          string     `gorm:"not null" json:"title"`
	Description    string     `json:"description"`
	ScriptTemplate string     `gorm:"type:text" json:"script_template"`
	ActionType     ActionType `gorm:"not null;default:'other'" json:"action_type"`
	DayNumber      int        `gorm:"not null" json:"day_number"`

	DueDate     time.Time  `gorm:"type:date;not null;index" json:"due_date"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Notes       string     `gorm:"type:text" json:"notes"`

	// Relations
	Instance *SequenceInstance `json:"instance,omitempty"`
}

// DateOnly renders a time as a local YYYY-MM-DD string. All due-date
// comparisons in the engine go through this: comparing timestamps across
// timezones misclassifies tasks on the day boundary, comparing calendar
// date strings cannot.
func DateOnly(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

// Status derives the lifecycle state of the task as of the given day.
// Completed wins unconditionally, even for due dates in the future.
func (ft *FollowUpTask) Status(today time.Time) TaskStatus {
	if ft.CompletedAt != nil {
		return StatusCompleted
	}
	due, now := DateOnly(ft.DueDate), DateOnly(today)
	switch {
	case due < now:
		return StatusOverdue
	case due == now:
		return StatusDue
	default:
		return StatusPending
	}
}

// IsOpen reports whether the task still needs doing.
func (ft *FollowUpTask) IsOpen() bool {
	return ft.CompletedAt == nil
}

// CompletedOn reports whether the task was completed on the given calendar day.
func (ft *FollowUpTask) CompletedOn(day time.Time) bool {
	return ft.CompletedAt != nil && DateOnly(*ft.CompletedAt) == DateOnly(day)
}

// Complete transitions the task to its terminal state. Call tasks require
// notes. Completing an already-completed task is a no-op, not an error:
// slow clients double-submit and the second write must not move
// CompletedAt.
func (ft *FollowUpTask) Complete(notes string, now time.Time) error {
	if ft.CompletedAt != nil {
		return nil
	}
	if ft.ActionType == ActionCall && strings.TrimSpace(notes) == "" {
		return NewValidationError("call tasks require completion notes")
	}
	completedAt := now
	ft.CompletedAt = &completedAt
	if notes != "" {
		ft.Notes = notes
	}
	return nil
}

// BuildTasks expands a template into the concrete tasks for one instance,
// one task per step in step order, due on start_date + day_number
// (calendar-day arithmetic, no time component).
func BuildTasks(template *FollowUpTemplate, startDate time.Time) ([]FollowUpTask, error) {
	if len(template.Steps) == 0 {
		return nil, NewValidationError("template %q has no steps", template.Name)
	}

	tasks := make([]FollowUpTask, 0, len(template.Steps))
	for _, step := range template.Steps {
		tasks = append(tasks, FollowUpTask{
			StepID:         step.ID,
			Title:          step.Title,
			Description:    step.Description,
			ScriptTemplate: step.ScriptTemplate,
			ActionType:     step.ActionType,
			DayNumber:      step.DayNumber,
			DueDate:        startDate.AddDate(0, 0, step.DayNumber),
		})
	}
	return tasks, nil
}

// ActiveTaskCount counts tasks not yet completed. Reassignment reports this
// as moved_count: completed tasks keep their historical assignee semantics.
func ActiveTaskCount(tasks []FollowUpTask) int {
	count := 0
	for i := range tasks {
		if tasks[i].IsOpen() {
			count++
		}
	}
	return count
}
