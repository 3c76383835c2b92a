// Package service contains tenant business logic.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/todox/core/tenant/data/repository"
	"github.com/ncobase/todox/core/tenant/structs"
	"github.com/ncobase/todox/logging/logger"
	"github.com/ncobase/todox/nanoid"
	"github.com/ncobase/todox/net/resp"
)

var ErrTenantNotFound = errors.New("tenant not found")

var primaryKey = nanoid.PrimaryKey()

type Service struct {
	repo   repository.TenantRepository
	logger *logger.Logger
}

func New(log *logger.Logger, repo repository.TenantRepository) *Service {
	return &Service{logger: log, repo: repo}
}

func (s *Service) Create(ctx context.Context, req *structs.CreateTenantRequest) (*structs.Tenant, error) {
	tenant := &structs.Tenant{
		ID:        primaryKey(),
		Name:      req.Name,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, tenant); err != nil {
		s.logger.Error(ctx, "Failed to create tenant", "error", err)
		return nil, err
	}

	s.logger.Info(ctx, "Tenant created", "tenant_id", tenant.ID, "name", tenant.Name)
	return tenant, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*structs.Tenant, error) {
	tenant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTenantNotFound
		}
		s.logger.Error(ctx, "Failed to get tenant", "error", err, "tenant_id", id)
		return nil, err
	}
	return tenant, nil
}

// Exists reports whether a tenant id resolves to a live tenant.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Service) HandleCreate(c *gin.Context) {
	var req structs.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	tenant, err := s.Create(c.Request.Context(), &req)
	if err != nil {
		resp.Fail(c.Writer, resp.InternalServer("failed to create tenant"))
		return
	}

	resp.WithStatusCode(c.Writer, 201, tenant)
}

func (s *Service) HandleGetByID(c *gin.Context) {
	tenantID := c.Param("tenant_id")

	tenant, err := s.GetByID(c.Request.Context(), tenantID)
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			resp.Fail(c.Writer, resp.NotFound("tenant not found"))
			return
		}
		resp.Fail(c.Writer, resp.InternalServer("failed to get tenant"))
		return
	}

	resp.Success(c.Writer, tenant)
}
