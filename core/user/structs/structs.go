// Package structs defines user directory data shapes.
package structs

import "time"

// User is a tenant-scoped directory entry. It backs assignee validation
// and actor email resolution for notification messages.
type User struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}
