// Package transport defines request and response DTOs for the documents API.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// ListDocumentsRequest narrows the document listing.
type ListDocumentsRequest struct {
	CaseID string `form:"caseId" validate:"required,uuid"`
}

// DocumentResponse is one stored document in API responses.
type DocumentResponse struct {
	ID          uuid.UUID  `json:"id"`
	CaseID      uuid.UUID  `json:"caseId"`
	Type        string     `json:"type"`
	FileName    string     `json:"fileName"`
	ContentType string     `json:"contentType"`
	SizeBytes   int64      `json:"sizeBytes"`
	CapturedAt  *time.Time `json:"capturedAt,omitempty"`
	UploadedBy  uuid.UUID  `json:"uploadedBy"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// DownloadURLResponse carries a short-lived presigned download link.
type DownloadURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
