// Package repository provides Postgres persistence for invoices.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"visadesk_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Invoice is the stored invoice record. All amounts are integer cents.
type Invoice struct {
	ID            uuid.UUID  `db:"id"`
	InvoiceNumber *string    `db:"invoice_number"`
	ClientID      uuid.UUID  `db:"client_id"`
	CaseID        *uuid.UUID `db:"case_id"`
	Status        string     `db:"status"`
	Currency      string     `db:"currency"`
	TaxRateBP     int        `db:"tax_rate_bp"`
	SubtotalCents int64      `db:"subtotal_cents"`
	TaxCents      int64      `db:"tax_cents"`
	TotalCents    int64      `db:"total_cents"`
	Notes         *string    `db:"notes"`
	IssuedAt      *time.Time `db:"issued_at"`
	DueDate       *time.Time `db:"due_date"`
	PaidAt        *time.Time `db:"paid_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// Item is one line on an invoice.
type Item struct {
	ID             uuid.UUID `db:"id"`
	InvoiceID      uuid.UUID `db:"invoice_id"`
	Description    string    `db:"description"`
	Quantity       int       `db:"quantity"`
	UnitPriceCents int64     `db:"unit_price_cents"`
	Position       int       `db:"position"`
}

// ListFilter narrows the invoice listing.
type ListFilter struct {
	ClientID *uuid.UUID
	Status   string
	Limit    int
	Offset   int
}

// Repository provides database operations for invoices.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new billing repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const invoiceColumns = `id, invoice_number, client_id, case_id, status, currency,
	tax_rate_bp, subtotal_cents, tax_cents, total_cents, notes,
	issued_at, due_date, paid_at, created_at, updated_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.ClientID, &inv.CaseID, &inv.Status, &inv.Currency,
		&inv.TaxRateBP, &inv.SubtotalCents, &inv.TaxCents, &inv.TotalCents, &inv.Notes,
		&inv.IssuedAt, &inv.DueDate, &inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create inserts an invoice with its items in one transaction.
func (r *Repository) Create(ctx context.Context, inv *Invoice, items []Item) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO invoices (id, invoice_number, client_id, case_id, status, currency,
			tax_rate_bp, subtotal_cents, tax_cents, total_cents, notes,
			issued_at, due_date, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		inv.ID, inv.InvoiceNumber, inv.ClientID, inv.CaseID, inv.Status, inv.Currency,
		inv.TaxRateBP, inv.SubtotalCents, inv.TaxCents, inv.TotalCents, inv.Notes,
		inv.IssuedAt, inv.DueDate, inv.PaidAt, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if err := insertItems(ctx, tx, inv.ID, items); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetByID returns one invoice by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	inv, err := scanInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("invoice not found")
	}
	return inv, err
}

// ListItems returns an invoice's line items in order.
func (r *Repository) ListItems(ctx context.Context, invoiceID uuid.UUID) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, invoice_id, description, quantity, unit_price_cents, position
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY position ASC`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.Description, &it.Quantity, &it.UnitPriceCents, &it.Position); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// List returns a filtered page of invoices plus the total match count.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Invoice, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		where += fmt.Sprintf(" AND client_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM invoices`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := `SELECT ` + invoiceColumns + ` FROM invoices` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, total, rows.Err()
}

// Update persists an invoice and, when items is non-nil, replaces its lines.
func (r *Repository) Update(ctx context.Context, inv *Invoice, items []Item) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE invoices
		SET invoice_number = $2, status = $3, tax_rate_bp = $4, subtotal_cents = $5,
			tax_cents = $6, total_cents = $7, notes = $8, issued_at = $9,
			due_date = $10, paid_at = $11, updated_at = $12
		WHERE id = $1`,
		inv.ID, inv.InvoiceNumber, inv.Status, inv.TaxRateBP, inv.SubtotalCents,
		inv.TaxCents, inv.TotalCents, inv.Notes, inv.IssuedAt,
		inv.DueDate, inv.PaidAt, inv.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("invoice not found")
	}

	if items != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, inv.ID); err != nil {
			return err
		}
		if err := insertItems(ctx, tx, inv.ID, items); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Delete removes a draft invoice and its items.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("invoice not found")
	}
	return nil
}

// NextInvoiceNumber reserves the next sequential invoice number.
func (r *Repository) NextInvoiceNumber(ctx context.Context) (string, error) {
	var seq int64
	if err := r.pool.QueryRow(ctx, `SELECT nextval('invoice_number_seq')`).Scan(&seq); err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%06d", seq), nil
}

func insertItems(ctx context.Context, tx pgx.Tx, invoiceID uuid.UUID, items []Item) error {
	for i, it := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO invoice_items (id, invoice_id, description, quantity, unit_price_cents, position)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			it.ID, invoiceID, it.Description, it.Quantity, it.UnitPriceCents, i,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
