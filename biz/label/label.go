// Package label provides tenant-scoped labels attached to todos.
package label

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/ncobase/todox/biz/label/data/repository"
	"github.com/ncobase/todox/biz/label/service"
	"github.com/ncobase/todox/data"
	"github.com/ncobase/todox/logging/logger"
)

// Label types re-exported for other modules.
type (
	Service         = service.Service
	LabelRepository = repository.LabelRepository
)

// Module bundles label routes and services.
type Module struct {
	service *service.Service
	repo    repository.LabelRepository
}

// New creates the label module backed by the master database.
func New(log *logger.Logger, d *data.Data) (*Module, error) {
	repo, err := repository.NewLabelRepository(d.GetMasterDB())
	if err != nil {
		return nil, fmt.Errorf("label module: %w", err)
	}
	return &Module{
		service: service.NewService(repo, log),
		repo:    repo,
	}, nil
}

// Name returns the module name.
func (m *Module) Name() string { return "label" }

// RegisterRoutes registers label endpoints on the given group.
func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/labels", m.service.HandleCreate)
	r.GET("/labels", m.service.HandleList)
}

// Service returns the label service for inter-module wiring.
func (m *Module) Service() *service.Service { return m.service }

// Repository returns the label repository.
func (m *Module) Repository() repository.LabelRepository { return m.repo }
