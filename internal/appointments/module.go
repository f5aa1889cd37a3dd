// Package appointments provides the appointment booking bounded context
// module, including reminder scheduling through the asynq queue.
package appointments

import (
	"visadesk_backend/internal/appointments/handler"
	"visadesk_backend/internal/appointments/repository"
	"visadesk_backend/internal/appointments/service"
	"visadesk_backend/internal/events"
	apphttp "visadesk_backend/internal/http"
	"visadesk_backend/internal/scheduler"
	"visadesk_backend/platform/logger"
	"visadesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the appointments bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the appointments module.
func NewModule(pool *pgxpool.Pool, reminders scheduler.ReminderScheduler, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, reminders, eventBus, log)

	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "appointments" }

// RegisterRoutes mounts all appointment routes on the authenticated group.
func (m *Module) RegisterRoutes(rc *apphttp.RouterContext) {
	m.handler.RegisterRoutes(rc.Protected.Group("/appointments"))
}
