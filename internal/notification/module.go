// Package notification provides the notification bounded context module:
// in-app notifications fanned out to staff, and a Postgres outbox feeding
// email delivery through the scheduler.
package notification

import (
	"context"
	"fmt"

	"visadesk_backend/internal/email"
	"visadesk_backend/internal/events"
	apphttp "visadesk_backend/internal/http"
	"visadesk_backend/internal/notification/handler"
	"visadesk_backend/internal/notification/inapp"
	"visadesk_backend/internal/notification/outbox"
	"visadesk_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the notification bounded context module implementing http.Module.
type Module struct {
	handler  *handler.Handler
	inapp    *inapp.Repository
	outbox   *outbox.Repository
	delivery *DeliveryService
	log      *logger.Logger
}

// NewModule wires the notification stores and subscribes to the domain
// events that produce notifications.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, sender email.Sender, log *logger.Logger) *Module {
	inappRepo := inapp.NewRepository(pool)
	outboxRepo := outbox.New(pool)

	m := &Module{
		handler:  handler.New(inappRepo),
		inapp:    inappRepo,
		outbox:   outboxRepo,
		delivery: NewDeliveryService(pool, outboxRepo, sender, log),
		log:      log,
	}
	m.subscribe(eventBus)
	return m
}

// Name returns the module identifier.
func (m *Module) Name() string { return "notification" }

// RegisterRoutes mounts the in-app notification routes.
func (m *Module) RegisterRoutes(rc *apphttp.RouterContext) {
	m.handler.RegisterRoutes(rc.Protected.Group("/notifications"))
}

// Outbox exposes the outbox store to the scheduler dispatcher.
func (m *Module) Outbox() *outbox.Repository { return m.outbox }

// Delivery exposes the delivery service to the scheduler worker.
func (m *Module) Delivery() *DeliveryService { return m.delivery }

func (m *Module) subscribe(bus events.Bus) {
	bus.Subscribe(events.CaseStatusChanged{}.EventName(), events.HandlerFunc(m.onCaseStatusChanged))
	bus.Subscribe(events.InvoiceIssued{}.EventName(), events.HandlerFunc(m.onInvoiceIssued))
	bus.Subscribe(events.LeadConverted{}.EventName(), events.HandlerFunc(m.onLeadConverted))
	bus.Subscribe(events.AppointmentReminderDue{}.EventName(), events.HandlerFunc(m.onAppointmentReminderDue))
	bus.Subscribe(events.NotificationOutboxDue{}.EventName(), events.HandlerFunc(m.onOutboxDue))
}

func (m *Module) onCaseStatusChanged(ctx context.Context, event events.Event) error {
	e, ok := event.(events.CaseStatusChanged)
	if !ok {
		return nil
	}

	resourceType := "case"
	if err := m.inapp.CreateForAllUsers(ctx, inapp.CreateParams{
		Title:        fmt.Sprintf("Case %s is now %s", e.CaseNumber, e.NewStatus),
		Content:      fmt.Sprintf("Case %s moved from %s to %s.", e.CaseNumber, e.OldStatus, e.NewStatus),
		ResourceID:   &e.CaseID,
		ResourceType: &resourceType,
		Category:     "case",
	}); err != nil {
		m.log.Error("failed to fan out case status notification", "error", err, "case_id", e.CaseID)
	}

	_, err := m.outbox.Insert(ctx, outbox.InsertParams{
		Kind:     "email",
		Template: templateCaseStatus,
		Payload: caseStatusPayload{
			ClientID:   e.ClientID,
			CaseNumber: e.CaseNumber,
			NewStatus:  e.NewStatus,
		},
	})
	if err != nil {
		m.log.Error("failed to enqueue case status email", "error", err, "case_id", e.CaseID)
	}
	return nil
}

func (m *Module) onInvoiceIssued(ctx context.Context, event events.Event) error {
	e, ok := event.(events.InvoiceIssued)
	if !ok {
		return nil
	}

	resourceType := "invoice"
	if err := m.inapp.CreateForAllUsers(ctx, inapp.CreateParams{
		Title:        fmt.Sprintf("Invoice %s issued", e.InvoiceNumber),
		Content:      fmt.Sprintf("Invoice %s was issued for %.2f.", e.InvoiceNumber, float64(e.TotalCents)/100),
		ResourceID:   &e.InvoiceID,
		ResourceType: &resourceType,
		Category:     "billing",
	}); err != nil {
		m.log.Error("failed to fan out invoice notification", "error", err, "invoice_id", e.InvoiceID)
	}

	_, err := m.outbox.Insert(ctx, outbox.InsertParams{
		Kind:     "email",
		Template: templateInvoiceIssued,
		Payload: invoiceIssuedPayload{
			InvoiceID: e.InvoiceID,
			ClientID:  e.ClientID,
		},
	})
	if err != nil {
		m.log.Error("failed to enqueue invoice email", "error", err, "invoice_id", e.InvoiceID)
	}
	return nil
}

func (m *Module) onLeadConverted(ctx context.Context, event events.Event) error {
	e, ok := event.(events.LeadConverted)
	if !ok {
		return nil
	}

	resourceType := "client"
	if err := m.inapp.CreateForAllUsers(ctx, inapp.CreateParams{
		Title:        "Lead converted to client",
		Content:      "A lead was converted; a new client record is ready for casework.",
		ResourceID:   &e.ClientID,
		ResourceType: &resourceType,
		Category:     "leads",
	}); err != nil {
		m.log.Error("failed to fan out lead conversion notification", "error", err, "lead_id", e.LeadID)
	}
	return nil
}

func (m *Module) onAppointmentReminderDue(ctx context.Context, event events.Event) error {
	e, ok := event.(events.AppointmentReminderDue)
	if !ok {
		return nil
	}

	_, err := m.outbox.Insert(ctx, outbox.InsertParams{
		Kind:     "email",
		Template: templateAppointmentReminder,
		Payload: appointmentReminderPayload{
			ClientName:  e.ClientName,
			ClientEmail: e.ClientEmail,
			Title:       e.Title,
			StartTime:   e.StartTime,
			Location:    e.Location,
		},
	})
	if err != nil {
		m.log.Error("failed to enqueue appointment reminder email", "error", err, "appointment_id", e.AppointmentID)
	}
	return nil
}

func (m *Module) onOutboxDue(ctx context.Context, event events.Event) error {
	e, ok := event.(events.NotificationOutboxDue)
	if !ok {
		return nil
	}
	return m.delivery.Deliver(ctx, e.OutboxID)
}
