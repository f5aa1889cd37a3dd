// Package transport defines the request/response DTOs for the cases module.
package transport

import (
	"time"

	"visadesk_backend/internal/cases/intelligence"

	"github.com/google/uuid"
)

// CreateCaseRequest registers a new visa case for a client.
type CreateCaseRequest struct {
	ClientID             uuid.UUID             `json:"clientId" validate:"required"`
	VisaType             string                `json:"visaType" validate:"required,min=2,max=100"`
	Country              string                `json:"country" validate:"required,min=2,max=100"`
	Priority             string                `json:"priority" validate:"omitempty,oneof=normal urgent express"`
	ExpectedDecisionDate *time.Time            `json:"expectedDecisionDate"`
	Documents            []DocumentItemRequest `json:"documents" validate:"dive"`
	TravelHistory        []TravelEntryRequest  `json:"travelHistory" validate:"dive"`
	Notes                *string               `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateCaseRequest modifies a case's mutable fields.
type UpdateCaseRequest struct {
	VisaType             *string               `json:"visaType" validate:"omitempty,min=2,max=100"`
	Country              *string               `json:"country" validate:"omitempty,min=2,max=100"`
	Priority             *string               `json:"priority" validate:"omitempty,oneof=normal urgent express"`
	ExpectedDecisionDate *time.Time            `json:"expectedDecisionDate"`
	Documents            []DocumentItemRequest `json:"documents" validate:"dive"`
	TravelHistory        []TravelEntryRequest  `json:"travelHistory" validate:"dive"`
	Notes                *string               `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateCaseStatusRequest moves a case through its workflow.
type UpdateCaseStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=intake in_review submitted awaiting_decision approved rejected closed"`
}

// CreateAlertRequest attaches an alert to a case.
type CreateAlertRequest struct {
	Message  string `json:"message" validate:"required,min=1,max=500"`
	Severity string `json:"severity" validate:"required,oneof=info warning error"`
	Type     string `json:"type" validate:"required,oneof=general urgent-action deadline-warning"`
}

// DocumentItemRequest is one checklist entry supplied by the caller.
type DocumentItemRequest struct {
	Type     string `json:"type" validate:"required,min=1,max=100"`
	Uploaded bool   `json:"uploaded"`
	Required bool   `json:"required"`
}

// TravelEntryRequest is one prior trip supplied by the caller.
type TravelEntryRequest struct {
	Country    string     `json:"country" validate:"required,min=2,max=100"`
	TraveledAt *time.Time `json:"traveledAt"`
}

// ListCasesRequest holds list filters bound from the query string.
type ListCasesRequest struct {
	Status   string `form:"status"`
	VisaType string `form:"visaType"`
	Country  string `form:"country"`
	ClientID string `form:"clientId"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// AlertResponse is one alert in API responses.
type AlertResponse struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// DocumentItemResponse is one checklist entry in API responses.
type DocumentItemResponse struct {
	Type     string `json:"type"`
	Uploaded bool   `json:"uploaded"`
	Required bool   `json:"required"`
}

// TravelEntryResponse is one prior trip in API responses.
type TravelEntryResponse struct {
	Country    string     `json:"country"`
	TraveledAt *time.Time `json:"traveledAt,omitempty"`
}

// CaseResponse merges the stored case with its computed score.
type CaseResponse struct {
	ID                   uuid.UUID                     `json:"id"`
	CaseID               string                        `json:"caseId"`
	ClientID             uuid.UUID                     `json:"clientId"`
	ClientName           string                        `json:"clientName"`
	VisaType             string                        `json:"visaType"`
	Country              string                        `json:"country"`
	Status               string                        `json:"status"`
	ExpectedDecisionDate *time.Time                    `json:"expectedDecisionDate,omitempty"`
	Documents            []DocumentItemResponse        `json:"documents"`
	TravelHistory        []TravelEntryResponse         `json:"travelHistory"`
	Alerts               []AlertResponse               `json:"alerts"`
	Notes                *string                       `json:"notes,omitempty"`
	SuccessProbability   int                           `json:"successProbability"`
	RiskLevel            intelligence.RiskLevel        `json:"riskLevel"`
	DuplicateDetected    bool                          `json:"duplicateDetected"`
	Priority             intelligence.Priority         `json:"priority"`
	RiskFlags            []string                      `json:"riskFlags"`
	Recommendations      *intelligence.Recommendations `json:"recommendations,omitempty"`
	CreatedAt            time.Time                     `json:"createdAt"`
	UpdatedAt            time.Time                     `json:"updatedAt"`
}

// ListCasesResponse is the paginated case listing.
type ListCasesResponse struct {
	Items    []CaseResponse `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}
