// Package repository provides label data access.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ncobase/todox/biz/label/structs"
)

var (
	ErrNotFound  = errors.New("label not found")
	ErrSlugTaken = errors.New("label slug already exists")
)

// LabelRepository defines label data access operations.
type LabelRepository interface {
	Create(ctx context.Context, label *structs.Label) error
	FindByIDInTenant(ctx context.Context, id, tenantID string) (*structs.Label, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*structs.Label, error)
	// CountByIDsInTenant reports how many of the given ids exist in the
	// tenant. Callers compare against len(ids) to validate a batch in a
	// single query.
	CountByIDsInTenant(ctx context.Context, tenantID string, ids []string) (int, error)
}

// labelRepository is the SQL implementation of LabelRepository.
type labelRepository struct {
	db *sql.DB
}

// NewLabelRepository creates a SQL-backed label repository.
func NewLabelRepository(db *sql.DB) (LabelRepository, error) {
	r := &labelRepository{db: db}
	if err := r.initSchema(); err != nil {
		return nil, fmt.Errorf("init label schema: %w", err)
	}
	return r, nil
}

func (r *labelRepository) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS labels (
		id VARCHAR(36) PRIMARY KEY,
		tenant_id VARCHAR(36) NOT NULL,
		name VARCHAR(50) NOT NULL,
		slug VARCHAR(64) NOT NULL,
		color VARCHAR(16) NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_labels_tenant_id ON labels(tenant_id);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_labels_tenant_slug ON labels(tenant_id, slug);
	`
	_, err := r.db.Exec(schema)
	return err
}

func (r *labelRepository) Create(ctx context.Context, label *structs.Label) error {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM labels WHERE tenant_id = $1 AND slug = $2`,
		label.TenantID, label.Slug,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("check label slug: %w", err)
	}
	if count > 0 {
		return ErrSlugTaken
	}

	query := `
		INSERT INTO labels (id, tenant_id, name, slug, color, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.ExecContext(ctx, query,
		label.ID, label.TenantID, label.Name, label.Slug, label.Color, label.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert label: %w", err)
	}
	return nil
}

func (r *labelRepository) FindByIDInTenant(ctx context.Context, id, tenantID string) (*structs.Label, error) {
	query := `
		SELECT id, tenant_id, name, slug, color, created_at
		FROM labels WHERE id = $1 AND tenant_id = $2
	`
	return r.scanLabel(r.db.QueryRowContext(ctx, query, id, tenantID))
}

func (r *labelRepository) ListByTenant(ctx context.Context, tenantID string) ([]*structs.Label, error) {
	query := `
		SELECT id, tenant_id, name, slug, color, created_at
		FROM labels WHERE tenant_id = $1 ORDER BY name ASC
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	defer rows.Close()

	var labels []*structs.Label
	for rows.Next() {
		label, err := r.scanLabel(rows)
		if err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

func (r *labelRepository) CountByIDsInTenant(ctx context.Context, tenantID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+1)
	args = append(args, tenantID)
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}
	query := fmt.Sprintf(
		`SELECT COUNT(1) FROM labels WHERE tenant_id = $1 AND id IN (%s)`,
		strings.Join(placeholders, ", "),
	)
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count labels: %w", err)
	}
	return count, nil
}

func (r *labelRepository) scanLabel(scanner interface{ Scan(dest ...any) error }) (*structs.Label, error) {
	var label structs.Label
	err := scanner.Scan(
		&label.ID, &label.TenantID, &label.Name, &label.Slug, &label.Color, &label.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan label: %w", err)
	}
	return &label, nil
}

// MemoryLabelRepository is an in-memory implementation for tests.
type MemoryLabelRepository struct {
	mu     sync.RWMutex
	labels map[string]*structs.Label
}

// NewMemoryLabelRepository creates an in-memory label repository.
func NewMemoryLabelRepository() *MemoryLabelRepository {
	return &MemoryLabelRepository{labels: make(map[string]*structs.Label)}
}

func (r *MemoryLabelRepository) Create(_ context.Context, label *structs.Label) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.labels {
		if existing.TenantID == label.TenantID && existing.Slug == label.Slug {
			return ErrSlugTaken
		}
	}
	cp := *label
	r.labels[label.ID] = &cp
	return nil
}

func (r *MemoryLabelRepository) FindByIDInTenant(_ context.Context, id, tenantID string) (*structs.Label, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	label, ok := r.labels[id]
	if !ok || label.TenantID != tenantID {
		return nil, ErrNotFound
	}
	cp := *label
	return &cp, nil
}

func (r *MemoryLabelRepository) ListByTenant(_ context.Context, tenantID string) ([]*structs.Label, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var labels []*structs.Label
	for _, label := range r.labels {
		if label.TenantID == tenantID {
			cp := *label
			labels = append(labels, &cp)
		}
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].Name < labels[j].Name })
	return labels, nil
}

func (r *MemoryLabelRepository) CountByIDsInTenant(_ context.Context, tenantID string, ids []string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, id := range ids {
		if label, ok := r.labels[id]; ok && label.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}
