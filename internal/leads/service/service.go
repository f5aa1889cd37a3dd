// Package service implements lead funnel management and conversion.
package service

import (
	"context"
	"strings"
	"time"

	clientsvc "visadesk_backend/internal/clients/service"
	clienttransport "visadesk_backend/internal/clients/transport"
	"visadesk_backend/internal/events"
	"visadesk_backend/internal/leads/repository"
	"visadesk_backend/internal/leads/transport"
	"visadesk_backend/platform/apperr"
	"visadesk_backend/platform/logger"
	"visadesk_backend/platform/phone"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 25
	maxPageSize     = 100

	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusQualified = "qualified"
	StatusConverted = "converted"
	StatusLost      = "lost"
)

// validTransitions is the funnel: forward only, with lost reachable from any
// active status. Converted is set exclusively through Convert.
var validTransitions = map[string][]string{
	StatusNew:       {StatusContacted, StatusQualified, StatusLost},
	StatusContacted: {StatusQualified, StatusLost},
	StatusQualified: {StatusLost},
}

// Service implements lead operations.
type Service struct {
	repo    *repository.Repository
	clients *clientsvc.Service
	bus     events.Bus
	log     *logger.Logger
}

// New creates a new leads service.
func New(repo *repository.Repository, clients *clientsvc.Service, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, clients: clients, bus: bus, log: log}
}

// Create registers a new inquiry in status "new". Free-text notes on the
// intake form become the lead's first note, attributed to the staff member
// who entered them.
func (s *Service) Create(ctx context.Context, authorID uuid.UUID, req transport.CreateLeadRequest) (*transport.LeadResponse, error) {
	source := req.Source
	if source == "" {
		source = "other"
	}

	now := time.Now().UTC()
	l := &repository.Lead{
		ID:        uuid.New(),
		FullName:  strings.TrimSpace(req.FullName),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     phone.NormalizeE164(req.Phone),
		VisaType:  strings.TrimSpace(req.VisaType),
		Country:   strings.TrimSpace(req.Country),
		Source:    source,
		Status:    StatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	if req.Notes != nil && *req.Notes != "" {
		note := intakeNote(l.ID, authorID, *req.Notes, now)
		if err := s.repo.CreateNote(ctx, note); err != nil {
			s.log.Error("failed to store initial lead note", "error", err, "lead_id", l.ID)
		}
	}

	return toResponse(l), nil
}

// GetByID returns one lead.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.LeadResponse, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(l), nil
}

// List returns a page of leads.
func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) (*transport.ListLeadsResponse, error) {
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

	leads, total, err := s.repo.List(ctx, repository.ListFilter{
		Status: req.Status,
		Source: req.Source,
		Search: req.Search,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return nil, err
	}

	items := make([]transport.LeadResponse, 0, len(leads))
	for i := range leads {
		items = append(items, *toResponse(&leads[i]))
	}
	return &transport.ListLeadsResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Update modifies a lead's contact and inquiry fields.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest) (*transport.LeadResponse, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		l.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		l.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		l.Phone = phone.NormalizeE164(*req.Phone)
	}
	if req.VisaType != nil {
		l.VisaType = strings.TrimSpace(*req.VisaType)
	}
	if req.Country != nil {
		l.Country = strings.TrimSpace(*req.Country)
	}
	if req.Source != nil {
		l.Source = *req.Source
	}
	l.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return toResponse(l), nil
}

// UpdateStatus moves a lead through the funnel, enforcing valid transitions.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*transport.LeadResponse, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if status == StatusConverted {
		return nil, apperr.Validation("use the convert operation to mark a lead converted")
	}
	if !transitionAllowed(l.Status, status) {
		return nil, apperr.Validation("cannot move lead from " + l.Status + " to " + status)
	}

	l.Status = status
	l.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return toResponse(l), nil
}

// Convert turns a qualified lead into a client. The client inherits the
// lead's contact details; passport data comes from the request.
func (s *Service) Convert(ctx context.Context, id uuid.UUID, req transport.ConvertLeadRequest) (*transport.ConvertLeadResponse, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := convertGuard(l.Status); err != nil {
		return nil, err
	}

	client, err := s.clients.Create(ctx, clienttransport.CreateClientRequest{
		FullName:       l.FullName,
		Email:          l.Email,
		Phone:          l.Phone,
		PassportNumber: req.PassportNumber,
		Nationality:    req.Nationality,
	})
	if err != nil {
		return nil, err
	}

	l.Status = StatusConverted
	l.ClientID = &client.ID
	l.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.LeadConverted{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    l.ID,
		ClientID:  client.ID,
	})
	s.log.Info("lead converted", "lead_id", l.ID, "client_id", client.ID)

	return &transport.ConvertLeadResponse{Lead: *toResponse(l), ClientID: client.ID}, nil
}

// Delete removes a lead.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// AddNote attaches a note authored by the current user.
func (s *Service) AddNote(ctx context.Context, leadID, authorID uuid.UUID, body string) (*transport.LeadNoteResponse, error) {
	if _, err := s.repo.GetByID(ctx, leadID); err != nil {
		return nil, err
	}

	n := &repository.Note{
		ID:        uuid.New(),
		LeadID:    leadID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateNote(ctx, n); err != nil {
		return nil, err
	}
	return noteToResponse(n), nil
}

// ListNotes returns a lead's notes, newest first.
func (s *Service) ListNotes(ctx context.Context, leadID uuid.UUID) ([]transport.LeadNoteResponse, error) {
	notes, err := s.repo.ListNotes(ctx, leadID)
	if err != nil {
		return nil, err
	}
	out := make([]transport.LeadNoteResponse, 0, len(notes))
	for i := range notes {
		out = append(out, *noteToResponse(&notes[i]))
	}
	return out, nil
}

// convertGuard checks that a lead is eligible for conversion. Only a
// qualified lead becomes a client; the funnel has to be walked first.
func convertGuard(status string) error {
	switch status {
	case StatusConverted:
		return apperr.Conflict("lead is already converted")
	case StatusLost:
		return apperr.Validation("a lost lead cannot be converted")
	case StatusQualified:
		return nil
	default:
		return apperr.Validation("lead must be qualified before conversion")
	}
}

// intakeNote builds the first note on a lead from the intake form's notes
// field. author_id is a hard reference to users, so the note must carry the
// staff member who entered the lead.
func intakeNote(leadID, authorID uuid.UUID, body string, now time.Time) *repository.Note {
	return &repository.Note{
		ID:        uuid.New(),
		LeadID:    leadID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: now,
	}
}

func transitionAllowed(from, to string) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func toResponse(l *repository.Lead) *transport.LeadResponse {
	return &transport.LeadResponse{
		ID:        l.ID,
		FullName:  l.FullName,
		Email:     l.Email,
		Phone:     l.Phone,
		VisaType:  l.VisaType,
		Country:   l.Country,
		Source:    l.Source,
		Status:    l.Status,
		ClientID:  l.ClientID,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func noteToResponse(n *repository.Note) *transport.LeadNoteResponse {
	return &transport.LeadNoteResponse{
		ID:        n.ID,
		AuthorID:  n.AuthorID,
		Body:      n.Body,
		CreatedAt: n.CreatedAt,
	}
}
