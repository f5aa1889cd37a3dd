// Package service implements client management.
package service

import (
	"context"
	"strings"
	"time"

	"visadesk_backend/internal/clients/repository"
	"visadesk_backend/internal/clients/transport"
	"visadesk_backend/platform/apperr"
	"visadesk_backend/platform/logger"
	"visadesk_backend/platform/phone"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 25
	maxPageSize     = 100

	dateOnly = "2006-01-02"
)

// Summary is the slice of a client that other modules snapshot.
type Summary struct {
	ID             uuid.UUID
	FullName       string
	Email          string
	PassportNumber string
}

// Service implements client operations.
type Service struct {
	repo *repository.Repository
	log  *logger.Logger
}

// New creates a new clients service.
func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create registers a new client. Phone numbers are normalized to E.164 where
// possible; emails are stored lowercased so the uniqueness constraint bites.
func (s *Service) Create(ctx context.Context, req transport.CreateClientRequest) (*transport.ClientResponse, error) {
	dob, err := parseDateOfBirth(req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c := &repository.Client{
		ID:             uuid.New(),
		FullName:       strings.TrimSpace(req.FullName),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:          phone.NormalizeE164(req.Phone),
		PassportNumber: strings.ToUpper(strings.TrimSpace(req.PassportNumber)),
		Nationality:    strings.TrimSpace(req.Nationality),
		DateOfBirth:    dob,
		Address:        req.Address,
		Notes:          req.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toResponse(c), nil
}

// GetByID returns one client.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.ClientResponse, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(c), nil
}

// GetSummary returns the snapshot slice of a client used by case creation.
func (s *Service) GetSummary(ctx context.Context, id uuid.UUID) (Summary, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		ID:             c.ID,
		FullName:       c.FullName,
		Email:          c.Email,
		PassportNumber: c.PassportNumber,
	}, nil
}

// List returns a page of clients.
func (s *Service) List(ctx context.Context, req transport.ListClientsRequest) (*transport.ListClientsResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	clients, total, err := s.repo.List(ctx, repository.ListFilter{
		Search: req.Search,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return nil, err
	}

	items := make([]transport.ClientResponse, 0, len(clients))
	for i := range clients {
		items = append(items, *toResponse(&clients[i]))
	}
	return &transport.ListClientsResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Update modifies a client.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateClientRequest) (*transport.ClientResponse, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		c.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		c.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		c.Phone = phone.NormalizeE164(*req.Phone)
	}
	if req.PassportNumber != nil {
		c.PassportNumber = strings.ToUpper(strings.TrimSpace(*req.PassportNumber))
	}
	if req.Nationality != nil {
		c.Nationality = strings.TrimSpace(*req.Nationality)
	}
	if req.DateOfBirth != nil {
		dob, err := parseDateOfBirth(req.DateOfBirth)
		if err != nil {
			return nil, err
		}
		c.DateOfBirth = dob
	}
	if req.Address != nil {
		c.Address = req.Address
	}
	if req.Notes != nil {
		c.Notes = req.Notes
	}
	c.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return toResponse(c), nil
}

// Delete removes a client.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func parseDateOfBirth(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateOnly, *raw)
	if err != nil {
		return nil, apperr.Validation("dateOfBirth must be YYYY-MM-DD")
	}
	return &t, nil
}

func toResponse(c *repository.Client) *transport.ClientResponse {
	resp := &transport.ClientResponse{
		ID:             c.ID,
		FullName:       c.FullName,
		Email:          c.Email,
		Phone:          c.Phone,
		PassportNumber: c.PassportNumber,
		Nationality:    c.Nationality,
		Address:        c.Address,
		Notes:          c.Notes,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
	if c.DateOfBirth != nil {
		d := c.DateOfBirth.Format(dateOnly)
		resp.DateOfBirth = &d
	}
	return resp
}
