// Package service implements document upload and retrieval. Files land in
// object storage; metadata lands in Postgres; the case checklist entry for
// the document type is flipped to uploaded.
package service

import (
	"bytes"
	"context"
	"io"
	"time"

	"visadesk_backend/internal/adapters/storage"
	casesrepo "visadesk_backend/internal/cases/repository"
	"visadesk_backend/internal/documents/repository"
	"visadesk_backend/internal/documents/transport"
	"visadesk_backend/platform/apperr"
	"visadesk_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
)

// UploadInput carries one incoming file.
type UploadInput struct {
	CaseID      uuid.UUID
	Type        string
	FileName    string
	ContentType string
	SizeBytes   int64
	Reader      io.Reader
	UploadedBy  uuid.UUID
}

// Service implements document operations.
type Service struct {
	repo   *repository.Repository
	cases  *casesrepo.Repository
	store  storage.Service
	bucket string
	log    *logger.Logger
}

// New creates a new documents service.
func New(repo *repository.Repository, cases *casesrepo.Repository, store storage.Service, bucket string, log *logger.Logger) *Service {
	return &Service{repo: repo, cases: cases, store: store, bucket: bucket, log: log}
}

// Upload validates and stores a file, records its metadata, and marks the
// matching checklist entry on the case as uploaded.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*transport.DocumentResponse, error) {
	if s.store == nil {
		return nil, apperr.New(apperr.KindInternal, "object storage is not configured")
	}
	if err := s.store.ValidateContentType(in.ContentType); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	if err := s.store.ValidateFileSize(in.SizeBytes); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	if _, err := s.cases.GetByID(ctx, in.CaseID); err != nil {
		return nil, err
	}

	reader := in.Reader
	var capturedAt *time.Time
	if storage.IsImageContentType(in.ContentType) {
		// EXIF needs a seekable read, so buffer images. At the configured
		// size cap this stays well within reason for scans and photos.
		data, err := io.ReadAll(in.Reader)
		if err != nil {
			return nil, err
		}
		capturedAt = extractCaptureTime(data)
		reader = bytes.NewReader(data)
	}

	fileKey, err := s.store.UploadFile(ctx, s.bucket, in.CaseID.String(), in.FileName, in.ContentType, reader, in.SizeBytes)
	if err != nil {
		return nil, err
	}

	d := &repository.Document{
		ID:          uuid.New(),
		CaseID:      in.CaseID,
		Type:        in.Type,
		FileName:    in.FileName,
		FileKey:     fileKey,
		ContentType: in.ContentType,
		SizeBytes:   in.SizeBytes,
		CapturedAt:  capturedAt,
		UploadedBy:  in.UploadedBy,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, d); err != nil {
		// The object is already stored; remove it rather than leak it.
		if delErr := s.store.DeleteObject(ctx, s.bucket, fileKey); delErr != nil {
			s.log.Error("failed to clean up orphaned object", "error", delErr, "file_key", fileKey)
		}
		return nil, err
	}

	if err := s.cases.MarkDocumentUploaded(ctx, in.CaseID, in.Type); err != nil {
		s.log.Warn("failed to mark checklist entry uploaded", "error", err, "case_id", in.CaseID, "type", in.Type)
	}

	return toResponse(d), nil
}

// ListByCase returns a case's stored documents, newest first.
func (s *Service) ListByCase(ctx context.Context, caseID uuid.UUID) ([]transport.DocumentResponse, error) {
	docs, err := s.repo.ListByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	out := make([]transport.DocumentResponse, 0, len(docs))
	for i := range docs {
		out = append(out, *toResponse(&docs[i]))
	}
	return out, nil
}

// DownloadURL returns a presigned link for one document.
func (s *Service) DownloadURL(ctx context.Context, id uuid.UUID) (*transport.DownloadURLResponse, error) {
	if s.store == nil {
		return nil, apperr.New(apperr.KindInternal, "object storage is not configured")
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	presigned, err := s.store.GenerateDownloadURL(ctx, s.bucket, d.FileKey)
	if err != nil {
		return nil, err
	}
	return &transport.DownloadURLResponse{
		URL:       presigned.URL,
		ExpiresAt: presigned.ExpiresAt,
	}, nil
}

// Delete removes a document's metadata and its stored object.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.store != nil {
		if err := s.store.DeleteObject(ctx, s.bucket, d.FileKey); err != nil {
			s.log.Error("failed to delete stored object", "error", err, "file_key", d.FileKey)
		}
	}
	return nil
}

// extractCaptureTime pulls the EXIF capture timestamp from an image, best
// effort. Scans and screenshots routinely have no EXIF block at all.
func extractCaptureTime(data []byte) *time.Time {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	taken, err := x.DateTime()
	if err != nil {
		return nil
	}
	return &taken
}

func toResponse(d *repository.Document) *transport.DocumentResponse {
	return &transport.DocumentResponse{
		ID:          d.ID,
		CaseID:      d.CaseID,
		Type:        d.Type,
		FileName:    d.FileName,
		ContentType: d.ContentType,
		SizeBytes:   d.SizeBytes,
		CapturedAt:  d.CapturedAt,
		UploadedBy:  d.UploadedBy,
		CreatedAt:   d.CreatedAt,
	}
}
