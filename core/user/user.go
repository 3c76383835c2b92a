// Package user defines user module wiring and routes.
package user

import (
	"github.com/gin-gonic/gin"
	"github.com/ncobase/todox/core/user/data/repository"
	"github.com/ncobase/todox/core/user/service"
	"github.com/ncobase/todox/core/user/structs"
	"github.com/ncobase/todox/data"
	"github.com/ncobase/todox/logging/logger"
)

type User = structs.User

type UserRepository = repository.UserRepository

type Module struct {
	service *service.Service
	repo    UserRepository
}

// New wires the user module. tenants may be nil, which skips tenant
// existence checks on create (useful in tests).
func New(log *logger.Logger, d *data.Data, tenants service.TenantChecker) (*Module, error) {
	repo, err := repository.NewUserRepository(d.GetMasterDB(), log, d.GetRedis())
	if err != nil {
		return nil, err
	}

	return &Module{
		service: service.New(log, repo, tenants),
		repo:    repo,
	}, nil
}

func (m *Module) Name() string {
	return "user"
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.POST("", m.service.HandleCreate)
		users.GET("", m.service.HandleList)
	}
}

func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) Repository() UserRepository {
	return m.repo
}
