// Package structs defines todo domain models.
package structs

import "time"

// Status is the completion axis of a todo.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
)

// Recurrence is the interval used to derive a successor due date when a
// recurring todo is completed.
type Recurrence string

const (
	RecurrenceNone     Recurrence = "NONE"
	RecurrenceDaily    Recurrence = "DAILY"
	RecurrenceWeekly   Recurrence = "WEEKLY"
	RecurrenceBiweekly Recurrence = "BIWEEKLY"
	RecurrenceMonthly  Recurrence = "MONTHLY"
	RecurrenceYearly   Recurrence = "YEARLY"
)

// ValidRecurrence reports whether s names a known interval.
func ValidRecurrence(s string) bool {
	switch Recurrence(s) {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceBiweekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// View selects the lifecycle slice a listing returns.
type View string

const (
	ViewActive   View = "active"
	ViewArchived View = "archived"
	ViewTrashed  View = "trashed"
)

// Todo is the tenant-scoped task record. Empty AssigneeID and
// Description mean unset; WasArchived is set at trash time so restore
// knows whether to return the row to the archive.
type Todo struct {
	ID                    string     `json:"id"`
	TenantID              string     `json:"tenant_id"`
	CreatedByID           string     `json:"created_by"`
	AssigneeID            string     `json:"assignee_id,omitempty"`
	Title                 string     `json:"title"`
	Description           string     `json:"description,omitempty"`
	Status                Status     `json:"status"`
	DueDate               *time.Time `json:"due_date,omitempty"`
	RecurrenceType        Recurrence `json:"recurrence_type"`
	ArchivedAt            *time.Time `json:"archived_at,omitempty"`
	DeletedAt             *time.Time `json:"deleted_at,omitempty"`
	WasArchived           bool       `json:"was_archived,omitempty"`
	DueSoonReminderSentAt *time.Time `json:"due_soon_reminder_sent_at,omitempty"`
	OverdueReminderSentAt *time.Time `json:"overdue_reminder_sent_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	LabelIDs              []string   `json:"label_ids"`
}

// Trashed reports whether the todo is in the trash.
func (t *Todo) Trashed() bool { return t.DeletedAt != nil }

// Archived reports whether the todo is archived.
func (t *Todo) Archived() bool { return t.ArchivedAt != nil }

// Subtask is an ordered child item of a todo. Order is dense and
// zero-based; at most 20 live subtasks per todo.
type Subtask struct {
	ID         string    `json:"id"`
	TodoID     string    `json:"todo_id"`
	Title      string    `json:"title"`
	IsComplete bool      `json:"is_complete"`
	Order      int       `json:"order"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateTodoRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	AssigneeID  string     `json:"assignee_id"`
	LabelIDs    []string   `json:"label_ids"`
}

// UpdateTodoRequest carries partial field updates. Nil pointers leave
// the field unchanged; an empty string (or zero time) clears it. Title
// may be changed but never cleared.
type UpdateTodoRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	AssigneeID  *string    `json:"assignee_id"`
}

// UpdateAssigneeRequest sets or clears the assignee; null clears.
type UpdateAssigneeRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

type UpdateRecurrenceRequest struct {
	RecurrenceType string `json:"recurrence_type" validate:"required,oneof=NONE DAILY WEEKLY BIWEEKLY MONTHLY YEARLY"`
}

type ReplaceLabelsRequest struct {
	LabelIDs []string `json:"label_ids"`
}

type CreateSubtaskRequest struct {
	Title string `json:"title"`
}

type UpdateSubtaskRequest struct {
	Title string `json:"title"`
}
