// Package documents provides the document storage bounded context module:
// uploads into object storage with metadata in Postgres, wired to the case
// checklist.
package documents

import (
	"visadesk_backend/internal/adapters/storage"
	casesrepo "visadesk_backend/internal/cases/repository"
	"visadesk_backend/internal/documents/handler"
	"visadesk_backend/internal/documents/repository"
	"visadesk_backend/internal/documents/service"
	apphttp "visadesk_backend/internal/http"
	"visadesk_backend/platform/logger"
	"visadesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the documents bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the documents module. The storage
// service may be nil when MinIO is not configured; uploads then fail with a
// clear error instead of at startup.
func NewModule(pool *pgxpool.Pool, cases *casesrepo.Repository, store storage.Service, bucket string, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cases, store, bucket, log)

	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "documents" }

// RegisterRoutes mounts all document routes on the authenticated group.
func (m *Module) RegisterRoutes(rc *apphttp.RouterContext) {
	m.handler.RegisterRoutes(rc.Protected.Group("/documents"))
}
