// Package email renders and delivers transactional email.
package email

import "context"

// Sender delivers the transactional emails the back office produces.
type Sender interface {
	SendAppointmentReminderEmail(ctx context.Context, toEmail, clientName, title, startTime, location string) error
	SendCaseStatusEmail(ctx context.Context, toEmail, clientName, caseNumber, newStatus string) error
	SendInvoiceIssuedEmail(ctx context.Context, toEmail, clientName, invoiceNumber, totalFormatted, dueDate string) error
}

// NoopSender drops all mail. Used when EMAIL_ENABLED is false so callers
// never have to nil-check.
type NoopSender struct{}

func (NoopSender) SendAppointmentReminderEmail(context.Context, string, string, string, string, string) error {
	return nil
}

func (NoopSender) SendCaseStatusEmail(context.Context, string, string, string, string) error {
	return nil
}

func (NoopSender) SendInvoiceIssuedEmail(context.Context, string, string, string, string, string) error {
	return nil
}
