// Package repository provides Postgres persistence for appointments.
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

// Appointment is the stored booking record.
type Appointment struct {
	ID        uuid.UUID  `db:"id"`
	ClientID  uuid.UUID  `db:"client_id"`
	CaseID    *uuid.UUID `db:"case_id"`
	Title     string     `db:"title"`
	Type      string     `db:"type"`
	Location  *string    `db:"location"`
	StartTime time.Time  `db:"start_time"`
	EndTime   time.Time  `db:"end_time"`
	Status    string     `db:"status"`
	Notes     *string    `db:"notes"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// ClientContact is the minimal client projection the reminder worker needs.
type ClientContact struct {
	FullName string
	Email    string
}

// ListFilter narrows the appointment listing.
type ListFilter struct {
	ClientID *uuid.UUID
	Status   string
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// Repository provides database operations for appointments.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new appointments repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const appointmentColumns = `id, client_id, case_id, title, type, location,
	start_time, end_time, status, notes, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.ClientID, &a.CaseID, &a.Title, &a.Type, &a.Location,
		&a.StartTime, &a.EndTime, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts an appointment.
func (r *Repository) Create(ctx context.Context, a *Appointment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (id, client_id, case_id, title, type, location,
			start_time, end_time, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID, a.ClientID, a.CaseID, a.Title, a.Type, a.Location,
		a.StartTime, a.EndTime, a.Status, a.Notes, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

// GetByID returns one appointment by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	a, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("appointment not found")
	}
	return a, err
}

// GetClientContact returns the contact details the reminder worker needs.
func (r *Repository) GetClientContact(ctx context.Context, clientID uuid.UUID) (*ClientContact, error) {
	var c ClientContact
	err := r.pool.QueryRow(ctx,
		`SELECT full_name, email FROM clients WHERE id = $1`, clientID,
	).Scan(&c.FullName, &c.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("client not found")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns a filtered page of appointments plus the total match count.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Appointment, int, error) {
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
	if filter.From != nil {
		args = append(args, *filter.From)
		where += fmt.Sprintf(" AND start_time >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where += fmt.Sprintf(" AND start_time < $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM appointments`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := `SELECT ` + appointmentColumns + ` FROM appointments` + where +
		fmt.Sprintf(" ORDER BY start_time ASC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var appts []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		appts = append(appts, *a)
	}
	return appts, total, rows.Err()
}

// Update persists an appointment's mutable fields.
func (r *Repository) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET title = $2, type = $3, location = $4, start_time = $5, end_time = $6,
			status = $7, notes = $8, updated_at = $9
		WHERE id = $1`,
		a.ID, a.Title, a.Type, a.Location, a.StartTime, a.EndTime,
		a.Status, a.Notes, a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("appointment not found")
	}
	return nil
}

// Delete removes an appointment.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("appointment not found")
	}
	return nil
}
