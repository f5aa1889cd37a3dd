// Package repository provides database access for visa cases.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"visadesk_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const caseNotFoundMsg = "case not found"

// VisaCase is the visa case database model. Client name, email, and passport
// number are snapshotted onto the case at creation so scoring and duplicate
// detection see the values the application was filed with.
type VisaCase struct {
	ID                   uuid.UUID  `db:"id"`
	CaseNumber           string     `db:"case_number"`
	ClientID             uuid.UUID  `db:"client_id"`
	ClientName           string     `db:"client_name"`
	ClientEmail          string     `db:"client_email"`
	PassportNumber       string     `db:"passport_number"`
	VisaType             string     `db:"visa_type"`
	Country              string     `db:"country"`
	Status               string     `db:"status"`
	Priority             string     `db:"priority"`
	ExpectedDecisionDate *time.Time `db:"expected_decision_date"`
	Notes                *string    `db:"notes"`
	CreatedAt            time.Time  `db:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at"`
}

// CaseDocument is one checklist entry for a case.
type CaseDocument struct {
	ID       uuid.UUID `db:"id"`
	CaseID   uuid.UUID `db:"case_id"`
	Type     string    `db:"type"`
	Uploaded bool      `db:"uploaded"`
	Required bool      `db:"required"`
}

// TravelEntry is one prior trip recorded for a case.
type TravelEntry struct {
	ID         uuid.UUID  `db:"id"`
	CaseID     uuid.UUID  `db:"case_id"`
	Country    string     `db:"country"`
	TraveledAt *time.Time `db:"traveled_at"`
}

// CaseAlert is an advisory attached to a case.
type CaseAlert struct {
	ID        uuid.UUID `db:"id"`
	CaseID    uuid.UUID `db:"case_id"`
	Message   string    `db:"message"`
	Severity  string    `db:"severity"`
	Type      string    `db:"type"`
	CreatedAt time.Time `db:"created_at"`
}

// ListFilter narrows the case listing.
type ListFilter struct {
	Status   string
	VisaType string
	Country  string
	ClientID *uuid.UUID
	Search   string
	Limit    int
	Offset   int
}

// Repository provides database operations for visa cases.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new cases repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const caseColumns = `id, case_number, client_id, client_name, client_email, passport_number,
	visa_type, country, status, priority, expected_decision_date, notes, created_at, updated_at`

func scanCase(row pgx.Row) (*VisaCase, error) {
	var vc VisaCase
	err := row.Scan(
		&vc.ID, &vc.CaseNumber, &vc.ClientID, &vc.ClientName, &vc.ClientEmail, &vc.PassportNumber,
		&vc.VisaType, &vc.Country, &vc.Status, &vc.Priority, &vc.ExpectedDecisionDate, &vc.Notes,
		&vc.CreatedAt, &vc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &vc, nil
}

// Create inserts a new case together with its checklist and travel history.
func (r *Repository) Create(ctx context.Context, vc *VisaCase, docs []CaseDocument, travel []TravelEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin case create: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO visa_cases (
			id, case_number, client_id, client_name, client_email, passport_number,
			visa_type, country, status, priority, expected_decision_date, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = tx.Exec(ctx, query,
		vc.ID, vc.CaseNumber, vc.ClientID, vc.ClientName, vc.ClientEmail, vc.PassportNumber,
		vc.VisaType, vc.Country, vc.Status, vc.Priority, vc.ExpectedDecisionDate, vc.Notes,
		vc.CreatedAt, vc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create case: %w", err)
	}

	if err := insertDocuments(ctx, tx, vc.ID, docs); err != nil {
		return err
	}
	if err := insertTravel(ctx, tx, vc.ID, travel); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a case by its ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*VisaCase, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+caseColumns+` FROM visa_cases WHERE id = $1`, id)
	vc, err := scanCase(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(caseNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get case: %w", err)
	}
	return vc, nil
}

// List returns cases matching the filter plus the unpaginated total.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]VisaCase, int, error) {
	where := []string{"TRUE"}
	args := []any{}

	add := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.VisaType != "" {
		add("visa_type ILIKE $%d", "%"+filter.VisaType+"%")
	}
	if filter.Country != "" {
		add("lower(country) = lower($%d)", filter.Country)
	}
	if filter.ClientID != nil {
		add("client_id = $%d", *filter.ClientID)
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(client_name ILIKE $%d OR case_number ILIKE $%d)", len(args), len(args)))
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM visa_cases WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count cases: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT `+caseColumns+` FROM visa_cases WHERE %s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, cond, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list cases: %w", err)
	}
	defer rows.Close()

	var out []VisaCase
	for rows.Next() {
		vc, err := scanCase(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan case: %w", err)
		}
		out = append(out, *vc)
	}
	return out, total, rows.Err()
}

// Update rewrites a case's mutable columns and, when provided, replaces its
// checklist and travel history.
func (r *Repository) Update(ctx context.Context, vc *VisaCase, docs []CaseDocument, travel []TravelEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin case update: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE visa_cases SET
			visa_type = $2,
			country = $3,
			priority = $4,
			expected_decision_date = $5,
			notes = $6,
			updated_at = $7
		WHERE id = $1`

	result, err := tx.Exec(ctx, query,
		vc.ID, vc.VisaType, vc.Country, vc.Priority, vc.ExpectedDecisionDate, vc.Notes, vc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update case: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(caseNotFoundMsg)
	}

	if docs != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM case_documents WHERE case_id = $1`, vc.ID); err != nil {
			return fmt.Errorf("failed to clear case documents: %w", err)
		}
		if err := insertDocuments(ctx, tx, vc.ID, docs); err != nil {
			return err
		}
	}
	if travel != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM case_travel_history WHERE case_id = $1`, vc.ID); err != nil {
			return fmt.Errorf("failed to clear travel history: %w", err)
		}
		if err := insertTravel(ctx, tx, vc.ID, travel); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// UpdateStatus moves a case to a new workflow status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE visa_cases SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update case status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(caseNotFoundMsg)
	}
	return nil
}

// Delete removes a case; child rows cascade in the schema.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM visa_cases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete case: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(caseNotFoundMsg)
	}
	return nil
}

// NextCaseNumber reserves the next sequential case number (VC-000123).
func (r *Repository) NextCaseNumber(ctx context.Context) (string, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT nextval('case_number_seq')`).Scan(&n); err != nil {
		return "", fmt.Errorf("failed to reserve case number: %w", err)
	}
	return fmt.Sprintf("VC-%06d", n), nil
}

// ListDocuments returns a case's checklist in insertion order.
func (r *Repository) ListDocuments(ctx context.Context, caseID uuid.UUID) ([]CaseDocument, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, case_id, type, uploaded, required FROM case_documents WHERE case_id = $1 ORDER BY position`,
		caseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list case documents: %w", err)
	}
	defer rows.Close()

	var out []CaseDocument
	for rows.Next() {
		var d CaseDocument
		if err := rows.Scan(&d.ID, &d.CaseID, &d.Type, &d.Uploaded, &d.Required); err != nil {
			return nil, fmt.Errorf("failed to scan case document: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// MarkDocumentUploaded flips the uploaded flag for checklist entries whose
// type matches (case-insensitive). Used by the documents module after a file
// upload lands.
func (r *Repository) MarkDocumentUploaded(ctx context.Context, caseID uuid.UUID, docType string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE case_documents SET uploaded = TRUE WHERE case_id = $1 AND lower(type) = lower($2)`,
		caseID, docType,
	)
	if err != nil {
		return fmt.Errorf("failed to mark document uploaded: %w", err)
	}
	return nil
}

// ListTravelHistory returns a case's recorded prior trips.
func (r *Repository) ListTravelHistory(ctx context.Context, caseID uuid.UUID) ([]TravelEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, case_id, country, traveled_at FROM case_travel_history WHERE case_id = $1 ORDER BY traveled_at NULLS LAST`,
		caseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list travel history: %w", err)
	}
	defer rows.Close()

	var out []TravelEntry
	for rows.Next() {
		var t TravelEntry
		if err := rows.Scan(&t.ID, &t.CaseID, &t.Country, &t.TraveledAt); err != nil {
			return nil, fmt.Errorf("failed to scan travel entry: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListAlerts returns a case's alerts oldest first.
func (r *Repository) ListAlerts(ctx context.Context, caseID uuid.UUID) ([]CaseAlert, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, case_id, message, severity, type, created_at FROM case_alerts WHERE case_id = $1 ORDER BY created_at`,
		caseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list case alerts: %w", err)
	}
	defer rows.Close()

	var out []CaseAlert
	for rows.Next() {
		var a CaseAlert
		if err := rows.Scan(&a.ID, &a.CaseID, &a.Message, &a.Severity, &a.Type, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan case alert: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateAlert attaches an alert to a case.
func (r *Repository) CreateAlert(ctx context.Context, alert *CaseAlert) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO case_alerts (id, case_id, message, severity, type, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		alert.ID, alert.CaseID, alert.Message, alert.Severity, alert.Type, alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create case alert: %w", err)
	}
	return nil
}

// Duplicate lookups. Normalization here mirrors the engine's: passports are
// uppercased with spaces removed, emails lowercased, names lowercased with
// collapsed whitespace.

// CountByPassportNumber counts other cases sharing the normalized passport.
func (r *Repository) CountByPassportNumber(ctx context.Context, normalized string, exclude uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM visa_cases
		 WHERE upper(replace(passport_number, ' ', '')) = $1 AND id != $2`,
		normalized, exclude,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count by passport: %w", err)
	}
	return n, nil
}

// CountByClientEmail counts other cases sharing the normalized email.
func (r *Repository) CountByClientEmail(ctx context.Context, normalized string, exclude uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM visa_cases
		 WHERE lower(trim(client_email)) = $1 AND id != $2`,
		normalized, exclude,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count by email: %w", err)
	}
	return n, nil
}

// CountByClientName counts other cases sharing the normalized client name.
func (r *Repository) CountByClientName(ctx context.Context, normalized string, exclude uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM visa_cases
		 WHERE lower(regexp_replace(trim(client_name), '\s+', ' ', 'g')) = $1 AND id != $2`,
		normalized, exclude,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count by name: %w", err)
	}
	return n, nil
}

func insertDocuments(ctx context.Context, tx pgx.Tx, caseID uuid.UUID, docs []CaseDocument) error {
	for i, d := range docs {
		_, err := tx.Exec(ctx,
			`INSERT INTO case_documents (id, case_id, type, uploaded, required, position) VALUES ($1, $2, $3, $4, $5, $6)`,
			d.ID, caseID, d.Type, d.Uploaded, d.Required, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert case document: %w", err)
		}
	}
	return nil
}

func insertTravel(ctx context.Context, tx pgx.Tx, caseID uuid.UUID, travel []TravelEntry) error {
	for _, t := range travel {
		_, err := tx.Exec(ctx,
			`INSERT INTO case_travel_history (id, case_id, country, traveled_at) VALUES ($1, $2, $3, $4)`,
			t.ID, caseID, t.Country, t.TraveledAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert travel entry: %w", err)
		}
	}
	return nil
}
