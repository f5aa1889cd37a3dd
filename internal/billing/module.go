// Package billing provides the invoicing bounded context module.
package billing

import (
	"visadesk_backend/internal/billing/handler"
	"visadesk_backend/internal/billing/repository"
	"visadesk_backend/internal/billing/service"
	"visadesk_backend/internal/events"
	apphttp "visadesk_backend/internal/http"
	"visadesk_backend/platform/config"
	"visadesk_backend/platform/logger"
	"visadesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the billing bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the billing module.
func NewModule(pool *pgxpool.Pool, cfg config.AppConfig, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, eventBus, log)

	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "billing" }

// RegisterRoutes mounts all invoice routes on the authenticated group.
func (m *Module) RegisterRoutes(rc *apphttp.RouterContext) {
	m.handler.RegisterRoutes(rc.Protected.Group("/invoices"))
}
