// Package leads provides the lead management bounded context module: the
// inquiry funnel, notes, and conversion into clients.
package leads

import (
	clientsvc "visadesk_backend/internal/clients/service"
	"visadesk_backend/internal/events"
	apphttp "visadesk_backend/internal/http"
	"visadesk_backend/internal/leads/handler"
	"visadesk_backend/internal/leads/repository"
	"visadesk_backend/internal/leads/service"
	"visadesk_backend/platform/logger"
	"visadesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
}

// NewModule creates and initializes the leads module. Conversion creates
// clients through the clients service.
func NewModule(pool *pgxpool.Pool, clients *clientsvc.Service, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, clients, eventBus, log)

	return &Module{
		handler: handler.New(svc, val),
		svc:     svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "leads" }

// RegisterRoutes mounts all lead routes on the authenticated group.
func (m *Module) RegisterRoutes(rc *apphttp.RouterContext) {
	m.handler.RegisterRoutes(rc.Protected.Group("/leads"))
}
