package email

const (
	subjectAppointmentReminderFmt = "Reminder: %s"
	subjectCaseStatusFmt          = "Update on your visa case %s"
	subjectInvoiceIssuedFmt       = "Invoice %s from your visa agency"
)
