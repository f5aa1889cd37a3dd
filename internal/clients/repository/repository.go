// Package repository provides Postgres persistence for clients.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"visadesk_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Client is the stored client record.
type Client struct {
	ID             uuid.UUID  `db:"id"`
	FullName       string     `db:"full_name"`
	Email          string     `db:"email"`
	Phone          string     `db:"phone"`
	PassportNumber string     `db:"passport_number"`
	Nationality    string     `db:"nationality"`
	DateOfBirth    *time.Time `db:"date_of_birth"`
	Address        *string    `db:"address"`
	Notes          *string    `db:"notes"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// ListFilter narrows the client listing.
type ListFilter struct {
	Search string
	Limit  int
	Offset int
}

// Repository provides database operations for clients.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new clients repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const clientColumns = `id, full_name, email, phone, passport_number, nationality,
	date_of_birth, address, notes, created_at, updated_at`

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(
		&c.ID, &c.FullName, &c.Email, &c.Phone, &c.PassportNumber, &c.Nationality,
		&c.DateOfBirth, &c.Address, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a client. A unique violation on email maps to a conflict.
func (r *Repository) Create(ctx context.Context, c *Client) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO clients (id, full_name, email, phone, passport_number, nationality,
			date_of_birth, address, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID, c.FullName, c.Email, c.Phone, c.PassportNumber, c.Nationality,
		c.DateOfBirth, c.Address, c.Notes, c.CreatedAt, c.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return apperr.Conflict("a client with this email already exists")
	}
	return err
}

// GetByID returns one client by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	c, err := scanClient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("client not found")
	}
	return c, err
}

// List returns a filtered page of clients plus the unfiltered-by-page total.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Client, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND (full_name ILIKE $%d OR email ILIKE $%d)", len(args), len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM clients`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := `SELECT ` + clientColumns + ` FROM clients` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		clients = append(clients, *c)
	}
	return clients, total, rows.Err()
}

// Update persists a client's mutable fields.
func (r *Repository) Update(ctx context.Context, c *Client) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE clients
		SET full_name = $2, email = $3, phone = $4, passport_number = $5,
			nationality = $6, date_of_birth = $7, address = $8, notes = $9, updated_at = $10
		WHERE id = $1`,
		c.ID, c.FullName, c.Email, c.Phone, c.PassportNumber,
		c.Nationality, c.DateOfBirth, c.Address, c.Notes, c.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return apperr.Conflict("a client with this email already exists")
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("client not found")
	}
	return nil
}

// Delete removes a client. Cases referencing the client block deletion at
// the database level; surface that as a conflict the caller can act on.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperr.Conflict("client has cases and cannot be deleted")
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("client not found")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
