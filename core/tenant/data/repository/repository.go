// Package repository stores tenant records.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/ncobase/todox/core/tenant/structs"
)

var ErrNotFound = errors.New("tenant not found")

type TenantRepository interface {
	Create(ctx context.Context, tenant *structs.Tenant) error
	FindByID(ctx context.Context, id string) (*structs.Tenant, error)
	List(ctx context.Context, limit, offset int) ([]*structs.Tenant, error)
}

type tenantRepository struct {
	db *sql.DB
}

func NewTenantRepository(db *sql.DB) (TenantRepository, error) {
	if db == nil {
		return nil, errors.New("database is nil")
	}

	repo := &tenantRepository{db: db}
	if err := repo.initSchema(context.Background()); err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *tenantRepository) initSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tenants (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
	`)
	return err
}

func (r *tenantRepository) Create(ctx context.Context, tenant *structs.Tenant) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tenants (id, name, created_at) VALUES ($1, $2, $3)
	`, tenant.ID, tenant.Name, tenant.CreatedAt)
	return err
}

func (r *tenantRepository) FindByID(ctx context.Context, id string) (*structs.Tenant, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, created_at FROM tenants WHERE id = $1
	`, id)

	item := &structs.Tenant{}
	if err := row.Scan(&item.ID, &item.Name, &item.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return item, nil
}

func (r *tenantRepository) List(ctx context.Context, limit, offset int) ([]*structs.Tenant, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, created_at FROM tenants
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*structs.Tenant
	for rows.Next() {
		item := &structs.Tenant{}
		if err := rows.Scan(&item.ID, &item.Name, &item.CreatedAt); err != nil {
			return nil, err
		}
		tenants = append(tenants, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tenants, nil
}

type MemoryTenantRepository struct {
	tenants map[string]*structs.Tenant
	mu      sync.RWMutex
}

func NewMemoryTenantRepository() TenantRepository {
	return &MemoryTenantRepository{
		tenants: make(map[string]*structs.Tenant),
	}
}

func (r *MemoryTenantRepository) Create(_ context.Context, tenant *structs.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tenants[tenant.ID]; exists {
		return fmt.Errorf("tenant already exists: %s", tenant.ID)
	}

	r.tenants[tenant.ID] = tenant
	return nil
}

func (r *MemoryTenantRepository) FindByID(_ context.Context, id string) (*structs.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenant, exists := r.tenants[id]
	if !exists {
		return nil, ErrNotFound
	}

	tenantCopy := *tenant
	return &tenantCopy, nil
}

func (r *MemoryTenantRepository) List(_ context.Context, limit, offset int) ([]*structs.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenants := make([]*structs.Tenant, 0, len(r.tenants))
	for _, tenant := range r.tenants {
		tenantCopy := *tenant
		tenants = append(tenants, &tenantCopy)
	}

	if offset >= len(tenants) {
		return []*structs.Tenant{}, nil
	}

	end := offset + limit
	if end > len(tenants) {
		end = len(tenants)
	}

	return tenants[offset:end], nil
}
