// Package transport defines request and response DTOs for the clients API.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateClientRequest registers a new client.
type CreateClientRequest struct {
	FullName       string  `json:"fullName" validate:"required,min=2,max=200"`
	Email          string  `json:"email" validate:"required,email"`
	Phone          string  `json:"phone" validate:"omitempty,max=32"`
	PassportNumber string  `json:"passportNumber" validate:"omitempty,min=5,max=20"`
	Nationality    string  `json:"nationality" validate:"omitempty,max=100"`
	DateOfBirth    *string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Address        *string `json:"address" validate:"omitempty,max=500"`
	Notes          *string `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateClientRequest modifies a client's mutable fields.
type UpdateClientRequest struct {
	FullName       *string `json:"fullName" validate:"omitempty,min=2,max=200"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Phone          *string `json:"phone" validate:"omitempty,max=32"`
	PassportNumber *string `json:"passportNumber" validate:"omitempty,min=5,max=20"`
	Nationality    *string `json:"nationality" validate:"omitempty,max=100"`
	DateOfBirth    *string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Address        *string `json:"address" validate:"omitempty,max=500"`
	Notes          *string `json:"notes" validate:"omitempty,max=2000"`
}

// ListClientsRequest narrows and pages the client listing.
type ListClientsRequest struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// ClientResponse is one client in API responses.
type ClientResponse struct {
	ID             uuid.UUID `json:"id"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	PassportNumber string    `json:"passportNumber,omitempty"`
	Nationality    string    `json:"nationality,omitempty"`
	DateOfBirth    *string   `json:"dateOfBirth,omitempty"`
	Address        *string   `json:"address,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ListClientsResponse is the paginated client listing.
type ListClientsResponse struct {
	Items    []ClientResponse `json:"items"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}
