// Package transport defines request and response DTOs for the appointments API.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateAppointmentRequest books a new appointment for a client.
type CreateAppointmentRequest struct {
	ClientID  uuid.UUID  `json:"clientId" validate:"required"`
	CaseID    *uuid.UUID `json:"caseId"`
	Title     string     `json:"title" validate:"required,min=2,max=200"`
	Type      string     `json:"type" validate:"required,oneof=consultation biometrics embassy_interview document_review other"`
	Location  *string    `json:"location" validate:"omitempty,max=300"`
	StartTime time.Time  `json:"startTime" validate:"required"`
	EndTime   time.Time  `json:"endTime" validate:"required"`
	Notes     *string    `json:"notes" validate:"omitempty,max=2000"`
}

// RescheduleAppointmentRequest moves an appointment to a new slot.
type RescheduleAppointmentRequest struct {
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" validate:"required"`
}

// UpdateAppointmentStatusRequest completes or cancels an appointment.
type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled completed cancelled no_show"`
}

// ListAppointmentsRequest narrows and pages the appointment listing.
type ListAppointmentsRequest struct {
	ClientID string `form:"clientId"`
	Status   string `form:"status"`
	From     string `form:"from"`
	To       string `form:"to"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// AppointmentResponse is one appointment in API responses.
type AppointmentResponse struct {
	ID        uuid.UUID  `json:"id"`
	ClientID  uuid.UUID  `json:"clientId"`
	CaseID    *uuid.UUID `json:"caseId,omitempty"`
	Title     string     `json:"title"`
	Type      string     `json:"type"`
	Location  *string    `json:"location,omitempty"`
	StartTime time.Time  `json:"startTime"`
	EndTime   time.Time  `json:"endTime"`
	Status    string     `json:"status"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ListAppointmentsResponse is the paginated appointment listing.
type ListAppointmentsResponse struct {
	Items    []AppointmentResponse `json:"items"`
	Total    int                   `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"pageSize"`
}
