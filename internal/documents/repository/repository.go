// Package repository provides Postgres persistence for document metadata.
// File bytes live in object storage; only the pointer and context are here.
package repository

import (
	"context"
	"errors"
	"time"

	"visadesk_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Document is the stored file metadata record.
type Document struct {
	ID          uuid.UUID  `db:"id"`
	CaseID      uuid.UUID  `db:"case_id"`
	Type        string     `db:"type"`
	FileName    string     `db:"file_name"`
	FileKey     string     `db:"file_key"`
	ContentType string     `db:"content_type"`
	SizeBytes   int64      `db:"size_bytes"`
	CapturedAt  *time.Time `db:"captured_at"`
	UploadedBy  uuid.UUID  `db:"uploaded_by"`
	CreatedAt   time.Time  `db:"created_at"`
}

// Repository provides database operations for documents.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new documents repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a document record.
func (r *Repository) Create(ctx context.Context, d *Document) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO documents (id, case_id, type, file_name, file_key, content_type,
			size_bytes, captured_at, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		d.ID, d.CaseID, d.Type, d.FileName, d.FileKey, d.ContentType,
		d.SizeBytes, d.CapturedAt, d.UploadedBy, d.CreatedAt,
	)
	return err
}

// GetByID returns one document's metadata.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	var d Document
	err := r.pool.QueryRow(ctx, `
		SELECT id, case_id, type, file_name, file_key, content_type,
			size_bytes, captured_at, uploaded_by, created_at
		FROM documents WHERE id = $1`, id,
	).Scan(
		&d.ID, &d.CaseID, &d.Type, &d.FileName, &d.FileKey, &d.ContentType,
		&d.SizeBytes, &d.CapturedAt, &d.UploadedBy, &d.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("document not found")
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListByCase returns a case's documents, newest first.
func (r *Repository) ListByCase(ctx context.Context, caseID uuid.UUID) ([]Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, case_id, type, file_name, file_key, content_type,
			size_bytes, captured_at, uploaded_by, created_at
		FROM documents
		WHERE case_id = $1
		ORDER BY created_at DESC`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(
			&d.ID, &d.CaseID, &d.Type, &d.FileName, &d.FileKey, &d.ContentType,
			&d.SizeBytes, &d.CapturedAt, &d.UploadedBy, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Delete removes a document record.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("document not found")
	}
	return nil
}
