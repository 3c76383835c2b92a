// Package service contains user directory business logic.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/todox/core/user/data/repository"
	"github.com/ncobase/todox/core/user/structs"
	"github.com/ncobase/todox/ctxutil"
	"github.com/ncobase/todox/logging/logger"
	"github.com/ncobase/todox/nanoid"
	"github.com/ncobase/todox/net/resp"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrTenantNotFound = errors.New("tenant not found")
	ErrEmailTaken     = errors.New("email already in use")
)

var primaryKey = nanoid.PrimaryKey()

// TenantChecker verifies that a tenant id resolves to a live tenant.
type TenantChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Service struct {
	repo    repository.UserRepository
	tenants TenantChecker
	logger  *logger.Logger
}

func New(log *logger.Logger, repo repository.UserRepository, tenants TenantChecker) *Service {
	return &Service{logger: log, repo: repo, tenants: tenants}
}

func (s *Service) Create(ctx context.Context, tenantID string, req *structs.CreateUserRequest) (*structs.User, error) {
	if s.tenants != nil {
		ok, err := s.tenants.Exists(ctx, tenantID)
		if err != nil {
			s.logger.Error(ctx, "Failed to check tenant", "error", err, "tenant_id", tenantID)
			return nil, err
		}
		if !ok {
			return nil, ErrTenantNotFound
		}
	}

	user := &structs.User{
		ID:        primaryKey(),
		TenantID:  tenantID,
		Name:      req.Name,
		Email:     req.Email,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		s.logger.Error(ctx, "Failed to create user", "error", err, "tenant_id", tenantID)
		return nil, err
	}

	s.logger.Info(ctx, "User created", "user_id", user.ID, "tenant_id", tenantID)
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*structs.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error(ctx, "Failed to get user", "error", err, "user_id", id)
		return nil, err
	}
	return user, nil
}

// ResolveEmail returns the email for a user id, used when composing
// notification messages. Callers degrade the message when it fails.
func (s *Service) ResolveEmail(ctx context.Context, userID string) (string, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}

// InTenant reports whether userID resolves inside tenantID.
func (s *Service) InTenant(ctx context.Context, userID, tenantID string) (bool, error) {
	_, err := s.repo.FindByIDInTenant(ctx, userID, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Service) List(ctx context.Context, tenantID string, limit, offset int) ([]*structs.User, error) {
	users, err := s.repo.ListByTenant(ctx, tenantID, limit, offset)
	if err != nil {
		s.logger.Error(ctx, "Failed to list users", "error", err, "tenant_id", tenantID)
		return nil, err
	}
	return users, nil
}

func (s *Service) HandleCreate(c *gin.Context) {
	tenantID := ctxutil.GetTenantID(c.Request.Context())

	var req structs.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	user, err := s.Create(c.Request.Context(), tenantID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrTenantNotFound):
			resp.Fail(c.Writer, resp.NotFound("tenant not found"))
		case errors.Is(err, ErrEmailTaken):
			resp.Fail(c.Writer, resp.Conflict("email already in use"))
		default:
			resp.Fail(c.Writer, resp.InternalServer("failed to create user"))
		}
		return
	}

	resp.WithStatusCode(c.Writer, 201, user)
}

func (s *Service) HandleList(c *gin.Context) {
	tenantID := ctxutil.GetTenantID(c.Request.Context())

	users, err := s.List(c.Request.Context(), tenantID, 100, 0)
	if err != nil {
		resp.Fail(c.Writer, resp.InternalServer("failed to list users"))
		return
	}

	resp.Success(c.Writer, map[string]any{
		"users": users,
		"count": len(users),
	})
}
