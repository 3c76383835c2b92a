// Package structs defines the audit trail data shapes.
package structs

import "time"

// Action tags what a single activity row records.
type Action string

const (
	ActionCreated            Action = "CREATED"
	ActionStatusChanged      Action = "STATUS_CHANGED"
	ActionAssigneeChanged    Action = "ASSIGNEE_CHANGED"
	ActionDueDateChanged     Action = "DUE_DATE_CHANGED"
	ActionDescriptionChanged Action = "DESCRIPTION_CHANGED"
	ActionLabelsChanged      Action = "LABELS_CHANGED"
	ActionArchived           Action = "ARCHIVED"
	ActionRestored           Action = "RESTORED"
	ActionTrashed            Action = "TRASHED"
	ActionPurged             Action = "PURGED"
)

// Activity is one immutable audit row: a field-level change or a lifecycle
// event observed during a single mutation. Seq is the row's position within
// its mutation batch; readers order by (created_at, seq) so the relative
// order stays stable even when timestamps tie.
type Activity struct {
	ID        string    `json:"id"`
	TodoID    string    `json:"todo_id"`
	ActorID   string    `json:"actor_id"`
	Action    Action    `json:"action"`
	Field     *string   `json:"field,omitempty"`
	OldValue  *string   `json:"old_value,omitempty"`
	NewValue  *string   `json:"new_value,omitempty"`
	Seq       int       `json:"seq"`
	CreatedAt time.Time `json:"created_at"`
}
