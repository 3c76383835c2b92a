// Package service implements label business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"

	"github.com/ncobase/todox/biz/label/data/repository"
	"github.com/ncobase/todox/biz/label/structs"
	"github.com/ncobase/todox/ctxutil"
	"github.com/ncobase/todox/logging/logger"
	"github.com/ncobase/todox/nanoid"
	"github.com/ncobase/todox/net/resp"
)

var (
	ErrLabelNotFound = errors.New("label not found")
	ErrSlugTaken     = errors.New("label with this name already exists")
	// ErrInvalidLabels indicates at least one label id in a batch does not
	// exist in the tenant.
	ErrInvalidLabels = errors.New("one or more labels not found")
)

var primaryKey = nanoid.PrimaryKey()

// Service provides label operations.
type Service struct {
	repo   repository.LabelRepository
	logger *logger.Logger
}

// NewService creates a label service.
func NewService(repo repository.LabelRepository, log *logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// Create creates a label in the tenant. The slug is derived from the name
// and must be unique within the tenant.
func (s *Service) Create(ctx context.Context, tenantID string, req *structs.CreateLabelRequest) (*structs.Label, error) {
	label := &structs.Label{
		ID:        primaryKey(),
		TenantID:  tenantID,
		Name:      req.Name,
		Slug:      slug.Make(req.Name),
		Color:     req.Color,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, label); err != nil {
		if errors.Is(err, repository.ErrSlugTaken) {
			return nil, ErrSlugTaken
		}
		s.logger.Error(ctx, "Failed to create label", "error", err, "tenant_id", tenantID)
		return nil, fmt.Errorf("create label: %w", err)
	}
	s.logger.Info(ctx, "Label created", "label_id", label.ID, "slug", label.Slug)
	return label, nil
}

// GetByID returns a label scoped to the tenant.
func (s *Service) GetByID(ctx context.Context, tenantID, id string) (*structs.Label, error) {
	label, err := s.repo.FindByIDInTenant(ctx, id, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLabelNotFound
		}
		return nil, fmt.Errorf("get label: %w", err)
	}
	return label, nil
}

// List returns all labels in the tenant ordered by name.
func (s *Service) List(ctx context.Context, tenantID string) ([]*structs.Label, error) {
	labels, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	return labels, nil
}

// ValidateIDs checks that every id belongs to the tenant using a single
// existence query. Any unknown id fails the whole batch.
func (s *Service) ValidateIDs(ctx context.Context, tenantID string, ids []string) error {
	unique := dedupe(ids)
	if len(unique) == 0 {
		return nil
	}
	count, err := s.repo.CountByIDsInTenant(ctx, tenantID, unique)
	if err != nil {
		return fmt.Errorf("validate labels: %w", err)
	}
	if count != len(unique) {
		return ErrInvalidLabels
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// HandleCreate handles POST /labels
func (s *Service) HandleCreate(c *gin.Context) {
	var req structs.CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	ctx := c.Request.Context()
	label, err := s.Create(ctx, ctxutil.GetTenantID(ctx), &req)
	if err != nil {
		if errors.Is(err, ErrSlugTaken) {
			resp.Fail(c.Writer, resp.Conflict(err.Error()))
			return
		}
		resp.Fail(c.Writer, resp.InternalServer("failed to create label"))
		return
	}
	resp.WithStatusCode(c.Writer, 201, label)
}

// HandleList handles GET /labels
func (s *Service) HandleList(c *gin.Context) {
	ctx := c.Request.Context()
	labels, err := s.List(ctx, ctxutil.GetTenantID(ctx))
	if err != nil {
		resp.Fail(c.Writer, resp.InternalServer("failed to list labels"))
		return
	}
	resp.Success(c.Writer, map[string]any{
		"labels": labels,
		"count":  len(labels),
	})
}
