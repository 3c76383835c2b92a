// Package tenant defines tenant module wiring and routes.
package tenant

import (
	"github.com/gin-gonic/gin"
	"github.com/ncobase/todox/core/tenant/data/repository"
	"github.com/ncobase/todox/core/tenant/service"
	"github.com/ncobase/todox/core/tenant/structs"
	"github.com/ncobase/todox/data"
	"github.com/ncobase/todox/logging/logger"
)

type Tenant = structs.Tenant

type TenantRepository = repository.TenantRepository

type Module struct {
	service *service.Service
	repo    TenantRepository
}

// New wires the tenant module against the shared data layer.
func New(log *logger.Logger, d *data.Data) (*Module, error) {
	repo, err := repository.NewTenantRepository(d.GetMasterDB())
	if err != nil {
		return nil, err
	}

	return &Module{
		service: service.New(log, repo),
		repo:    repo,
	}, nil
}

func (m *Module) Name() string {
	return "tenant"
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	tenants := r.Group("/tenants")
	{
		tenants.POST("", m.service.HandleCreate)
		tenants.GET("/:tenant_id", m.service.HandleGetByID)
	}
}

func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) Repository() TenantRepository {
	return m.repo
}
