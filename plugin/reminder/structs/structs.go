// Package structs defines the reminder job data shapes.
package structs

import "time"

// JobStatus tracks a scan job through its lifecycle.
type JobStatus string

const (
	JobPending   JobStatus = "PENDING"
	JobRunning   JobStatus = "RUNNING"
	JobCompleted JobStatus = "COMPLETED"
	JobFailed    JobStatus = "FAILED"
)

// Job records one due-date scan: how many due-soon and overdue
// reminders it sent, or why it failed.
type Job struct {
	ID           string     `json:"id"`
	Status       JobStatus  `json:"status"`
	DueSoonCount int        `json:"due_soon_count"`
	OverdueCount int        `json:"overdue_count"`
	Error        string     `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}
