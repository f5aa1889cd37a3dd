package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title   string
	Heading string
}

type appointmentReminderEmailData struct {
	baseEmailData
	ClientName string
	StartTime  string
	Location   string
}

type caseStatusEmailData struct {
	baseEmailData
	ClientName string
	CaseNumber string
	NewStatus  string
}

type invoiceIssuedEmailData struct {
	baseEmailData
	ClientName     string
	InvoiceNumber  string
	TotalFormatted string
	DueDate        string
}

func renderEmailTemplate(name string, data any) (string, error) {
	tpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("render email template %s: %w", name, err)
	}
	return buf.String(), nil
}
