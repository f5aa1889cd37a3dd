package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"visadesk_backend/internal/email"
	"visadesk_backend/internal/notification/outbox"
	"visadesk_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	templateCaseStatus          = "case_status"
	templateInvoiceIssued       = "invoice_issued"
	templateAppointmentReminder = "appointment_reminder"

	maxDeliveryAttempts = 5
)

type caseStatusPayload struct {
	ClientID   uuid.UUID `json:"clientId"`
	CaseNumber string    `json:"caseNumber"`
	NewStatus  string    `json:"newStatus"`
}

type invoiceIssuedPayload struct {
	InvoiceID uuid.UUID `json:"invoiceId"`
	ClientID  uuid.UUID `json:"clientId"`
}

type appointmentReminderPayload struct {
	ClientName  string `json:"clientName"`
	ClientEmail string `json:"clientEmail"`
	Title       string `json:"title"`
	StartTime   string `json:"startTime"`
	Location    string `json:"location,omitempty"`
}

// DeliveryService turns claimed outbox records into outgoing email.
type DeliveryService struct {
	pool   *pgxpool.Pool
	repo   *outbox.Repository
	sender email.Sender
	log    *logger.Logger
}

// NewDeliveryService creates a delivery service.
func NewDeliveryService(pool *pgxpool.Pool, repo *outbox.Repository, sender email.Sender, log *logger.Logger) *DeliveryService {
	return &DeliveryService{pool: pool, repo: repo, sender: sender, log: log}
}

// Deliver processes one claimed outbox record. Transient failures requeue
// the record until the attempt cap is reached.
func (s *DeliveryService) Deliver(ctx context.Context, outboxID uuid.UUID) error {
	rec, err := s.repo.GetByID(ctx, outboxID)
	if err != nil {
		return err
	}
	switch rec.Status {
	case outbox.StatusSucceeded, outbox.StatusFailed:
		return nil
	}

	if err := s.repo.MarkProcessing(ctx, rec.ID); err != nil {
		return err
	}

	if err := s.dispatch(ctx, rec); err != nil {
		s.log.Warn("outbox delivery attempt failed",
			"error", err, "outbox_id", rec.ID, "template", rec.Template, "attempts", rec.Attempts+1)
		if rec.Attempts+1 >= maxDeliveryAttempts {
			return s.repo.MarkFailed(ctx, rec.ID, err.Error())
		}
		msg := err.Error()
		return s.repo.MarkPending(ctx, rec.ID, &msg)
	}

	return s.repo.MarkSucceeded(ctx, rec.ID)
}

func (s *DeliveryService) dispatch(ctx context.Context, rec outbox.Record) error {
	switch rec.Template {
	case templateCaseStatus:
		return s.deliverCaseStatus(ctx, rec.Payload)
	case templateInvoiceIssued:
		return s.deliverInvoiceIssued(ctx, rec.Payload)
	case templateAppointmentReminder:
		return s.deliverAppointmentReminder(ctx, rec.Payload)
	default:
		return fmt.Errorf("unknown outbox template %q", rec.Template)
	}
}

func (s *DeliveryService) deliverCaseStatus(ctx context.Context, raw json.RawMessage) error {
	var p caseStatusPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}

	name, addr, err := s.clientContact(ctx, p.ClientID)
	if err != nil {
		return err
	}
	return s.sender.SendCaseStatusEmail(ctx, addr, name, p.CaseNumber, p.NewStatus)
}

func (s *DeliveryService) deliverInvoiceIssued(ctx context.Context, raw json.RawMessage) error {
	var p invoiceIssuedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}

	name, addr, err := s.clientContact(ctx, p.ClientID)
	if err != nil {
		return err
	}

	var (
		number   string
		currency string
		total    int64
		dueDate  *time.Time
	)
	err = s.pool.QueryRow(ctx, `
		SELECT invoice_number, currency, total_cents, due_date
		FROM invoices WHERE id = $1`, p.InvoiceID,
	).Scan(&number, &currency, &total, &dueDate)
	if err != nil {
		return err
	}

	formatted := fmt.Sprintf("%s %.2f", currency, float64(total)/100)
	due := ""
	if dueDate != nil {
		due = dueDate.Format("2 January 2006")
	}
	return s.sender.SendInvoiceIssuedEmail(ctx, addr, name, number, formatted, due)
}

func (s *DeliveryService) deliverAppointmentReminder(ctx context.Context, raw json.RawMessage) error {
	var p appointmentReminderPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	if p.ClientEmail == "" {
		return nil
	}
	return s.sender.SendAppointmentReminderEmail(ctx, p.ClientEmail, p.ClientName, p.Title, p.StartTime, p.Location)
}

func (s *DeliveryService) clientContact(ctx context.Context, clientID uuid.UUID) (name, addr string, err error) {
	err = s.pool.QueryRow(ctx,
		`SELECT full_name, email FROM clients WHERE id = $1`, clientID,
	).Scan(&name, &addr)
	return name, addr, err
}
