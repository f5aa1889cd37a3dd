// Package transport defines request and response DTOs for the billing API.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceItemRequest is one line item on a draft invoice.
type InvoiceItemRequest struct {
	Description    string `json:"description" validate:"required,min=1,max=300"`
	Quantity       int    `json:"quantity" validate:"required,min=1,max=1000"`
	UnitPriceCents int64  `json:"unitPriceCents" validate:"required,min=0"`
}

// CreateInvoiceRequest creates a draft invoice. Amounts are integer cents;
// the tax rate is in basis points (2000 = 20%).
type CreateInvoiceRequest struct {
	ClientID  uuid.UUID            `json:"clientId" validate:"required"`
	CaseID    *uuid.UUID           `json:"caseId"`
	Currency  string               `json:"currency" validate:"omitempty,len=3,uppercase"`
	TaxRateBP int                  `json:"taxRateBp" validate:"min=0,max=10000"`
	Items     []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes     *string              `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateInvoiceRequest replaces a draft invoice's items and terms. Payment
// terms are set when the invoice is issued, not on the draft.
type UpdateInvoiceRequest struct {
	TaxRateBP *int                 `json:"taxRateBp" validate:"omitempty,min=0,max=10000"`
	Items     []InvoiceItemRequest `json:"items" validate:"omitempty,min=1,dive"`
	Notes     *string              `json:"notes" validate:"omitempty,max=2000"`
}

// ListInvoicesRequest narrows and pages the invoice listing.
type ListInvoicesRequest struct {
	ClientID string `form:"clientId"`
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// InvoiceItemResponse is one line item in API responses.
type InvoiceItemResponse struct {
	ID             uuid.UUID `json:"id"`
	Description    string    `json:"description"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	LineTotalCents int64     `json:"lineTotalCents"`
}

// InvoiceResponse is one invoice in API responses.
type InvoiceResponse struct {
	ID            uuid.UUID             `json:"id"`
	InvoiceNumber string                `json:"invoiceNumber,omitempty"`
	ClientID      uuid.UUID             `json:"clientId"`
	CaseID        *uuid.UUID            `json:"caseId,omitempty"`
	Status        string                `json:"status"`
	Currency      string                `json:"currency"`
	TaxRateBP     int                   `json:"taxRateBp"`
	SubtotalCents int64                 `json:"subtotalCents"`
	TaxCents      int64                 `json:"taxCents"`
	TotalCents    int64                 `json:"totalCents"`
	Items         []InvoiceItemResponse `json:"items"`
	Notes         *string               `json:"notes,omitempty"`
	IssuedAt      *time.Time            `json:"issuedAt,omitempty"`
	DueDate       *time.Time            `json:"dueDate,omitempty"`
	PaidAt        *time.Time            `json:"paidAt,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// InvoiceQRResponse carries the payment QR code as a base64 PNG.
type InvoiceQRResponse struct {
	InvoiceNumber string `json:"invoiceNumber"`
	PaymentURL    string `json:"paymentUrl"`
	QRCodePNG     string `json:"qrCodePng"`
}

// ListInvoicesResponse is the paginated invoice listing.
type ListInvoicesResponse struct {
	Items    []InvoiceResponse `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}
