// Package clients provides the client management bounded context module.
package clients

import (
	"context"

	"visadesk_backend/internal/clients/handler"
	"visadesk_backend/internal/clients/repository"
	"visadesk_backend/internal/clients/service"
	apphttp "visadesk_backend/internal/http"
	"visadesk_backend/platform/logger"
	"visadesk_backend/platform/validator"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the clients bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
}

// NewModule creates and initializes the clients module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)

	return &Module{
		handler: handler.New(svc, val),
		svc:     svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "clients" }

// RegisterRoutes mounts all client routes on the authenticated group.
func (m *Module) RegisterRoutes(rc *apphttp.RouterContext) {
	m.handler.RegisterRoutes(rc.Protected.Group("/clients"))
}

// Service exposes client operations to sibling modules (case creation
// snapshots client data, lead conversion creates clients).
func (m *Module) Service() *service.Service {
	return m.svc
}

// GetSummary lets the module itself satisfy snapshot lookups without the
// caller reaching into the service package.
func (m *Module) GetSummary(ctx context.Context, id uuid.UUID) (service.Summary, error) {
	return m.svc.GetSummary(ctx, id)
}
