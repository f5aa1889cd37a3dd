// Package events defines domain events for decoupled communication between
// modules. Infrastructure (Bus, Handler) lives in platform/events.
package events

import (
	"visadesk_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience.
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// NewBaseEvent re-exports the platform constructor.
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Case Domain Events
// =============================================================================

// CaseCreated is published when a new visa case is registered.
type CaseCreated struct {
	BaseEvent
	CaseID     uuid.UUID `json:"caseId"`
	CaseNumber string    `json:"caseNumber"`
	ClientID   uuid.UUID `json:"clientId"`
	VisaType   string    `json:"visaType"`
}

func (e CaseCreated) EventName() string { return "cases.case.created" }

// CaseStatusChanged is published when a case's workflow status changes.
type CaseStatusChanged struct {
	BaseEvent
	CaseID     uuid.UUID `json:"caseId"`
	CaseNumber string    `json:"caseNumber"`
	ClientID   uuid.UUID `json:"clientId"`
	OldStatus  string    `json:"oldStatus"`
	NewStatus  string    `json:"newStatus"`
}

func (e CaseStatusChanged) EventName() string { return "cases.case.status_changed" }

// =============================================================================
// Billing Domain Events
// =============================================================================

// InvoiceIssued is published when a draft invoice is issued to a client.
type InvoiceIssued struct {
	BaseEvent
	InvoiceID     uuid.UUID `json:"invoiceId"`
	InvoiceNumber string    `json:"invoiceNumber"`
	ClientID      uuid.UUID `json:"clientId"`
	TotalCents    int64     `json:"totalCents"`
}

func (e InvoiceIssued) EventName() string { return "billing.invoice.issued" }

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadConverted is published when a qualified lead becomes a client.
type LeadConverted struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	ClientID uuid.UUID `json:"clientId"`
}

func (e LeadConverted) EventName() string { return "leads.lead.converted" }

// =============================================================================
// Appointment Domain Events
// =============================================================================

// AppointmentScheduled is published when an appointment is created or moved.
type AppointmentScheduled struct {
	BaseEvent
	AppointmentID uuid.UUID `json:"appointmentId"`
	ClientID      uuid.UUID `json:"clientId"`
	StartTime     string    `json:"startTime"`
}

func (e AppointmentScheduled) EventName() string { return "appointments.appointment.scheduled" }

// AppointmentReminderDue fires from the scheduler worker when a reminder
// task comes due for a still-scheduled appointment.
type AppointmentReminderDue struct {
	BaseEvent
	AppointmentID uuid.UUID `json:"appointmentId"`
	ClientID      uuid.UUID `json:"clientId"`
	ClientName    string    `json:"clientName"`
	ClientEmail   string    `json:"clientEmail"`
	Title         string    `json:"title"`
	StartTime     string    `json:"startTime"`
	Location      string    `json:"location,omitempty"`
}

func (e AppointmentReminderDue) EventName() string { return "appointments.reminder.due" }

// =============================================================================
// Notification Domain Events
// =============================================================================

// NotificationOutboxDue fires from the scheduler worker when an outbox record
// is claimed for delivery.
type NotificationOutboxDue struct {
	BaseEvent
	OutboxID uuid.UUID `json:"outboxId"`
}

func (e NotificationOutboxDue) EventName() string { return "notification.outbox.due" }
