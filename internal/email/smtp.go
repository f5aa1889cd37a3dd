package email

import (
	"context"
	"fmt"
	"time"

	"visadesk_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements Sender using a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a sender from the SMTP settings in config.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) SendAppointmentReminderEmail(ctx context.Context, toEmail, clientName, title, startTime, location string) error {
	content, err := renderEmailTemplate("appointment_reminder.html", appointmentReminderEmailData{
		baseEmailData: baseEmailData{
			Title:   title,
			Heading: title,
		},
		ClientName: clientName,
		StartTime:  startTime,
		Location:   location,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectAppointmentReminderFmt, title), content)
}

func (s *SMTPSender) SendCaseStatusEmail(ctx context.Context, toEmail, clientName, caseNumber, newStatus string) error {
	content, err := renderEmailTemplate("case_status.html", caseStatusEmailData{
		baseEmailData: baseEmailData{
			Title:   "Case status update",
			Heading: "Case status update",
		},
		ClientName: clientName,
		CaseNumber: caseNumber,
		NewStatus:  newStatus,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectCaseStatusFmt, caseNumber), content)
}

func (s *SMTPSender) SendInvoiceIssuedEmail(ctx context.Context, toEmail, clientName, invoiceNumber, totalFormatted, dueDate string) error {
	content, err := renderEmailTemplate("invoice_issued.html", invoiceIssuedEmailData{
		baseEmailData: baseEmailData{
			Title:   "New invoice",
			Heading: "New invoice",
		},
		ClientName:     clientName,
		InvoiceNumber:  invoiceNumber,
		TotalFormatted: totalFormatted,
		DueDate:        dueDate,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectInvoiceIssuedFmt, invoiceNumber), content)
}
