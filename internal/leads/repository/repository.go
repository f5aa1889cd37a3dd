// Package repository provides Postgres persistence for leads and lead notes.
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

// Lead is the stored inquiry record.
type Lead struct {
	ID        uuid.UUID  `db:"id"`
	FullName  string     `db:"full_name"`
	Email     string     `db:"email"`
	Phone     string     `db:"phone"`
	VisaType  string     `db:"visa_type"`
	Country   string     `db:"country"`
	Source    string     `db:"source"`
	Status    string     `db:"status"`
	ClientID  *uuid.UUID `db:"client_id"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// Note is one note attached to a lead.
type Note struct {
	ID        uuid.UUID `db:"id"`
	LeadID    uuid.UUID `db:"lead_id"`
	AuthorID  uuid.UUID `db:"author_id"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}

// ListFilter narrows the lead listing.
type ListFilter struct {
	Status string
	Source string
	Search string
	Limit  int
	Offset int
}

// Repository provides database operations for leads.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `id, full_name, email, phone, visa_type, country, source,
	status, client_id, created_at, updated_at`

func scanLead(row pgx.Row) (*Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.FullName, &l.Email, &l.Phone, &l.VisaType, &l.Country, &l.Source,
		&l.Status, &l.ClientID, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts a lead.
func (r *Repository) Create(ctx context.Context, l *Lead) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO leads (id, full_name, email, phone, visa_type, country, source,
			status, client_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		l.ID, l.FullName, l.Email, l.Phone, l.VisaType, l.Country, l.Source,
		l.Status, l.ClientID, l.CreatedAt, l.UpdatedAt,
	)
	return err
}

// GetByID returns one lead by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	l, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("lead not found")
	}
	return l, err
}

// List returns a filtered page of leads plus the total match count.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Lead, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	add := func(clause, value string) {
		args = append(args, value)
		where += fmt.Sprintf(" AND "+clause, len(args))
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.Source != "" {
		add("source = $%d", filter.Source)
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND (full_name ILIKE $%d OR email ILIKE $%d)", len(args), len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM leads`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := `SELECT ` + leadColumns + ` FROM leads` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, *l)
	}
	return leads, total, rows.Err()
}

// Update persists a lead's mutable fields.
func (r *Repository) Update(ctx context.Context, l *Lead) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET full_name = $2, email = $3, phone = $4, visa_type = $5, country = $6,
			source = $7, status = $8, client_id = $9, updated_at = $10
		WHERE id = $1`,
		l.ID, l.FullName, l.Email, l.Phone, l.VisaType, l.Country,
		l.Source, l.Status, l.ClientID, l.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lead not found")
	}
	return nil
}

// Delete removes a lead and its notes.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lead not found")
	}
	return nil
}

// CreateNote attaches a note to a lead.
func (r *Repository) CreateNote(ctx context.Context, n *Note) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_notes (id, lead_id, author_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		n.ID, n.LeadID, n.AuthorID, n.Body, n.CreatedAt,
	)
	return err
}

// ListNotes returns a lead's notes, newest first.
func (r *Repository) ListNotes(ctx context.Context, leadID uuid.UUID) ([]Note, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, author_id, body, created_at
		FROM lead_notes
		WHERE lead_id = $1
		ORDER BY created_at DESC`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.LeadID, &n.AuthorID, &n.Body, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
