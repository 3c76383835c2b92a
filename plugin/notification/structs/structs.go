// Package structs defines the notification data shapes.
package structs

import "time"

// Type tags what a notification is about.
type Type string

const (
	TypeTodoCommented Type = "TODO_COMMENTED"
	TypeTodoAssigned  Type = "TODO_ASSIGNED"
	TypeTodoDueSoon   Type = "TODO_DUE_SOON"
	TypeTodoOverdue   Type = "TODO_OVERDUE"
)

// Notification is one in-app message for a single recipient. Rows are
// recipient-guarded the way todos are tenant-guarded: reads and the
// read-flag mutations always carry the caller's user id in the
// predicate.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      Type      `json:"type"`
	Message   string    `json:"message"`
	TodoID    string    `json:"todo_id,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
