// Package structs defines tenant data shapes.
package structs

import "time"

// Tenant is an isolation boundary; every core entity is scoped to one.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateTenantRequest struct {
	Name string `json:"name" binding:"required"`
}
