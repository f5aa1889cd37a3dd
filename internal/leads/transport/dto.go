// Package transport defines request and response DTOs for the leads API.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateLeadRequest registers a new inquiry.
type CreateLeadRequest struct {
	FullName string  `json:"fullName" validate:"required,min=2,max=200"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    string  `json:"phone" validate:"omitempty,max=32"`
	VisaType string  `json:"visaType" validate:"omitempty,max=100"`
	Country  string  `json:"country" validate:"omitempty,max=100"`
	Source   string  `json:"source" validate:"omitempty,oneof=website referral walk_in phone other"`
	Notes    *string `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateLeadRequest modifies a lead's mutable fields.
type UpdateLeadRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,min=2,max=200"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	VisaType *string `json:"visaType" validate:"omitempty,max=100"`
	Country  *string `json:"country" validate:"omitempty,max=100"`
	Source   *string `json:"source" validate:"omitempty,oneof=website referral walk_in phone other"`
}

// UpdateLeadStatusRequest moves a lead through the funnel.
type UpdateLeadStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new contacted qualified converted lost"`
}

// AddLeadNoteRequest attaches a note to a lead.
type AddLeadNoteRequest struct {
	Body string `json:"body" validate:"required,min=1,max=2000"`
}

// ConvertLeadRequest converts a qualified lead into a client. The passport
// number is collected at conversion time since inquiries rarely carry it.
type ConvertLeadRequest struct {
	PassportNumber string `json:"passportNumber" validate:"omitempty,min=5,max=20"`
	Nationality    string `json:"nationality" validate:"omitempty,max=100"`
}

// ListLeadsRequest narrows and pages the lead listing.
type ListLeadsRequest struct {
	Status   string `form:"status"`
	Source   string `form:"source"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// LeadNoteResponse is one note in API responses.
type LeadNoteResponse struct {
	ID        uuid.UUID `json:"id"`
	AuthorID  uuid.UUID `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// LeadResponse is one lead in API responses.
type LeadResponse struct {
	ID        uuid.UUID  `json:"id"`
	FullName  string     `json:"fullName"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	VisaType  string     `json:"visaType,omitempty"`
	Country   string     `json:"country,omitempty"`
	Source    string     `json:"source"`
	Status    string     `json:"status"`
	ClientID  *uuid.UUID `json:"clientId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ConvertLeadResponse reports the outcome of a conversion.
type ConvertLeadResponse struct {
	Lead     LeadResponse `json:"lead"`
	ClientID uuid.UUID    `json:"clientId"`
}

// ListLeadsResponse is the paginated lead listing.
type ListLeadsResponse struct {
	Items    []LeadResponse `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}
