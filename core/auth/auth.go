// Package auth wires token validation for the HTTP surface.
package auth

import (
	"errors"

	"github.com/ncobase/todox/config"
	"github.com/ncobase/todox/core/auth/middleware"
	"github.com/ncobase/todox/logging/logger"
	securityjwt "github.com/ncobase/todox/security/jwt"
)

type Module struct {
	tokenManager *securityjwt.TokenManager
	middleware   *middleware.Middleware
}

func New(log *logger.Logger, cfg *config.Config) (*Module, error) {
	if cfg.Auth == nil || cfg.Auth.JWT == nil || cfg.Auth.JWT.Secret == "" {
		return nil, errors.New("auth.jwt.secret is not configured")
	}

	tm := securityjwt.NewTokenManager(cfg.Auth.JWT.Secret)

	return &Module{
		tokenManager: tm,
		middleware:   middleware.NewMiddleware(tm, cfg.Auth.Whitelist, log),
	}, nil
}

func (m *Module) Name() string {
	return "auth"
}

func (m *Module) Middleware() *middleware.Middleware {
	return m.middleware
}

func (m *Module) TokenManager() *securityjwt.TokenManager {
	return m.tokenManager
}
