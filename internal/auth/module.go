// Package auth provides the staff authentication bounded context module.
package auth

import (
	"visadesk_backend/internal/auth/handler"
	"visadesk_backend/internal/auth/repository"
	"visadesk_backend/internal/auth/service"
	apphttp "visadesk_backend/internal/http"
	"visadesk_backend/platform/config"
	"visadesk_backend/platform/logger"
	"visadesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the auth module.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, log)

	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "auth" }

// RegisterRoutes mounts login on the public group behind the stricter auth
// rate limiter and /me on the authenticated group.
func (m *Module) RegisterRoutes(rc *apphttp.RouterContext) {
	public := rc.V1.Group("/auth")
	public.Use(rc.AuthRateLimiter.RateLimit())
	m.handler.RegisterPublicRoutes(public)

	m.handler.RegisterProtectedRoutes(rc.Protected.Group("/auth"))
}
