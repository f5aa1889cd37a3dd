// Package cases provides the visa case bounded context module: case CRUD,
// alerts, CSV export, and the intelligence scoring merged into every read.
package cases

import (
	"visadesk_backend/internal/cases/handler"
	"visadesk_backend/internal/cases/intelligence"
	"visadesk_backend/internal/cases/repository"
	"visadesk_backend/internal/cases/service"
	"visadesk_backend/internal/events"
	apphttp "visadesk_backend/internal/http"
	"visadesk_backend/platform/logger"
	"visadesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the cases bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
	svc     *service.Service
}

// NewModule wires the cases repository, intelligence engine, and service.
// The clients dependency supplies the client snapshot taken at case creation.
func NewModule(pool *pgxpool.Pool, clients service.ClientDirectory, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	engine := intelligence.New(repo, log)
	svc := service.New(repo, clients, engine, eventBus, log)

	return &Module{
		handler: handler.New(svc, val),
		repo:    repo,
		svc:     svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "cases" }

// RegisterRoutes mounts all case routes on the authenticated group.
func (m *Module) RegisterRoutes(rc *apphttp.RouterContext) {
	m.handler.RegisterRoutes(rc.Protected.Group("/cases"))
}

// Repository exposes the case store to sibling modules; the documents module
// uses it to flip checklist entries when a file upload lands.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}
