// Package service implements invoicing: drafts, totals, issuing, payment.
package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"visadesk_backend/internal/billing/repository"
	"visadesk_backend/internal/billing/transport"
	"visadesk_backend/internal/events"
	"visadesk_backend/platform/apperr"
	"visadesk_backend/platform/config"
	"visadesk_backend/platform/logger"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	defaultPageSize = 25
	maxPageSize     = 100

	defaultCurrency  = "GBP"
	defaultDueInDays = 14

	StatusDraft  = "draft"
	StatusIssued = "issued"
	StatusPaid   = "paid"
	StatusVoid   = "void"
)

// Totals is the server-computed money summary of an invoice.
type Totals struct {
	SubtotalCents int64
	TaxCents      int64
	TotalCents    int64
}

// ComputeTotals sums line items and applies the tax rate in basis points.
// Tax rounds half away from zero on the subtotal, not per line.
func ComputeTotals(items []repository.Item, taxRateBP int) Totals {
	var subtotal int64
	for _, it := range items {
		subtotal += int64(it.Quantity) * it.UnitPriceCents
	}
	tax := (subtotal*int64(taxRateBP) + 5000) / 10000
	return Totals{
		SubtotalCents: subtotal,
		TaxCents:      tax,
		TotalCents:    subtotal + tax,
	}
}

// Service implements invoice operations.
type Service struct {
	repo *repository.Repository
	cfg  config.AppConfig
	bus  events.Bus
	log  *logger.Logger
}

// New creates a new billing service.
func New(repo *repository.Repository, cfg config.AppConfig, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, bus: bus, log: log}
}

// Create stores a draft invoice. Numbers are assigned at issue time so voided
// drafts never burn a slot in the sequence.
func (s *Service) Create(ctx context.Context, req transport.CreateInvoiceRequest) (*transport.InvoiceResponse, error) {
	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	items := itemsFromRequest(req.Items)
	totals := ComputeTotals(items, req.TaxRateBP)

	now := time.Now().UTC()
	inv := &repository.Invoice{
		ID:            uuid.New(),
		ClientID:      req.ClientID,
		CaseID:        req.CaseID,
		Status:        StatusDraft,
		Currency:      currency,
		TaxRateBP:     req.TaxRateBP,
		SubtotalCents: totals.SubtotalCents,
		TaxCents:      totals.TaxCents,
		TotalCents:    totals.TotalCents,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, inv, items); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, inv)
}

// GetByID returns one invoice with its items.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.InvoiceResponse, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, inv)
}

// List returns a page of invoices.
func (s *Service) List(ctx context.Context, req transport.ListInvoicesRequest) (*transport.ListInvoicesResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	filter := repository.ListFilter{
		Status: req.Status,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}
	if req.ClientID != "" {
		clientID, err := uuid.Parse(req.ClientID)
		if err != nil {
			return nil, apperr.Validation("invalid clientId filter")
		}
		filter.ClientID = &clientID
	}

	invoices, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]transport.InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		resp, err := s.toResponse(ctx, &invoices[i])
		if err != nil {
			return nil, err
		}
		items = append(items, *resp)
	}
	return &transport.ListInvoicesResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Update replaces a draft's items and terms; totals are recomputed here and
// never taken from the request.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateInvoiceRequest) (*transport.InvoiceResponse, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != StatusDraft {
		return nil, apperr.Validation("only draft invoices can be edited")
	}

	if req.TaxRateBP != nil {
		inv.TaxRateBP = *req.TaxRateBP
	}
	if req.Notes != nil {
		inv.Notes = req.Notes
	}

	var items []repository.Item
	if req.Items != nil {
		items = itemsFromRequest(req.Items)
	} else {
		items, err = s.repo.ListItems(ctx, inv.ID)
		if err != nil {
			return nil, err
		}
	}

	totals := ComputeTotals(items, inv.TaxRateBP)
	inv.SubtotalCents = totals.SubtotalCents
	inv.TaxCents = totals.TaxCents
	inv.TotalCents = totals.TotalCents
	inv.UpdatedAt = time.Now().UTC()

	toStore := items
	if req.Items == nil {
		toStore = nil
	}
	if err := s.repo.Update(ctx, inv, toStore); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, inv)
}

// Issue finalizes a draft: assigns the sequential number, stamps the issue
// date and due date, and notifies subscribers.
func (s *Service) Issue(ctx context.Context, id uuid.UUID, dueInDays int) (*transport.InvoiceResponse, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != StatusDraft {
		return nil, apperr.Validation("only draft invoices can be issued")
	}
	if inv.TotalCents <= 0 {
		return nil, apperr.Validation("invoice total must be positive")
	}

	number, err := s.repo.NextInvoiceNumber(ctx)
	if err != nil {
		return nil, err
	}

	if dueInDays < 1 {
		dueInDays = defaultDueInDays
	}
	now := time.Now().UTC()
	due := now.AddDate(0, 0, dueInDays)

	inv.InvoiceNumber = &number
	inv.Status = StatusIssued
	inv.IssuedAt = &now
	inv.DueDate = &due
	inv.UpdatedAt = now
	if err := s.repo.Update(ctx, inv, nil); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.InvoiceIssued{
		BaseEvent:     events.NewBaseEvent(),
		InvoiceID:     inv.ID,
		InvoiceNumber: number,
		ClientID:      inv.ClientID,
		TotalCents:    inv.TotalCents,
	})
	s.log.Info("invoice issued", "invoice_number", number, "total_cents", inv.TotalCents)

	return s.toResponse(ctx, inv)
}

// MarkPaid records payment of an issued invoice.
func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID) (*transport.InvoiceResponse, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != StatusIssued {
		return nil, apperr.Validation("only issued invoices can be marked paid")
	}

	now := time.Now().UTC()
	inv.Status = StatusPaid
	inv.PaidAt = &now
	inv.UpdatedAt = now
	if err := s.repo.Update(ctx, inv, nil); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, inv)
}

// Void cancels a draft or issued invoice. Paid invoices stay paid.
func (s *Service) Void(ctx context.Context, id uuid.UUID) (*transport.InvoiceResponse, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == StatusPaid {
		return nil, apperr.Validation("a paid invoice cannot be voided")
	}
	if inv.Status == StatusVoid {
		return nil, apperr.Conflict("invoice is already void")
	}

	inv.Status = StatusVoid
	inv.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, inv, nil); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, inv)
}

// Delete removes a draft invoice.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if inv.Status != StatusDraft {
		return apperr.Validation("only draft invoices can be deleted; void it instead")
	}
	return s.repo.Delete(ctx, id)
}

// PaymentQR renders the payment link for an issued invoice as a PNG QR code.
func (s *Service) PaymentQR(ctx context.Context, id uuid.UUID) (*transport.InvoiceQRResponse, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != StatusIssued {
		return nil, apperr.Validation("payment QR is only available for issued invoices")
	}

	paymentURL := fmt.Sprintf("%s/pay/%s", s.cfg.GetAppBaseURL(), *inv.InvoiceNumber)
	png, err := qrcode.Encode(paymentURL, qrcode.Medium, 256)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to render payment QR", err)
	}

	return &transport.InvoiceQRResponse{
		InvoiceNumber: *inv.InvoiceNumber,
		PaymentURL:    paymentURL,
		QRCodePNG:     base64.StdEncoding.EncodeToString(png),
	}, nil
}

func (s *Service) toResponse(ctx context.Context, inv *repository.Invoice) (*transport.InvoiceResponse, error) {
	items, err := s.repo.ListItems(ctx, inv.ID)
	if err != nil {
		return nil, err
	}

	itemResponses := make([]transport.InvoiceItemResponse, 0, len(items))
	for _, it := range items {
		itemResponses = append(itemResponses, transport.InvoiceItemResponse{
			ID:             it.ID,
			Description:    it.Description,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			LineTotalCents: int64(it.Quantity) * it.UnitPriceCents,
		})
	}

	resp := &transport.InvoiceResponse{
		ID:            inv.ID,
		ClientID:      inv.ClientID,
		CaseID:        inv.CaseID,
		Status:        inv.Status,
		Currency:      inv.Currency,
		TaxRateBP:     inv.TaxRateBP,
		SubtotalCents: inv.SubtotalCents,
		TaxCents:      inv.TaxCents,
		TotalCents:    inv.TotalCents,
		Items:         itemResponses,
		Notes:         inv.Notes,
		IssuedAt:      inv.IssuedAt,
		DueDate:       inv.DueDate,
		PaidAt:        inv.PaidAt,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
	if inv.InvoiceNumber != nil {
		resp.InvoiceNumber = *inv.InvoiceNumber
	}
	return resp, nil
}

func itemsFromRequest(items []transport.InvoiceItemRequest) []repository.Item {
	out := make([]repository.Item, 0, len(items))
	for i, it := range items {
		out = append(out, repository.Item{
			ID:             uuid.New(),
			Description:    it.Description,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			Position:       i,
		})
	}
	return out
}
