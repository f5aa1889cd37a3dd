// Package service implements appointment booking and reminders.
package service

import (
	"context"
	"time"

	"visadesk_backend/internal/appointments/repository"
	"visadesk_backend/internal/appointments/transport"
	"visadesk_backend/internal/events"
	"visadesk_backend/internal/scheduler"
	"visadesk_backend/platform/apperr"
	"visadesk_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 25
	maxPageSize     = 100

	// reminderLead is how far before the start time a reminder fires.
	reminderLead = 24 * time.Hour
)

// Service implements appointment operations.
type Service struct {
	repo      *repository.Repository
	reminders scheduler.ReminderScheduler
	bus       events.Bus
	log       *logger.Logger
}

// New creates a new appointments service. The reminder scheduler may be nil
// when Redis is not configured; reminders are then skipped.
func New(repo *repository.Repository, reminders scheduler.ReminderScheduler, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, reminders: reminders, bus: bus, log: log}
}

// Create books an appointment and schedules its reminder.
func (s *Service) Create(ctx context.Context, req transport.CreateAppointmentRequest) (*transport.AppointmentResponse, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, apperr.Validation("endTime must be after startTime")
	}
	if req.StartTime.Before(time.Now()) {
		return nil, apperr.Validation("appointment cannot start in the past")
	}
	if _, err := s.repo.GetClientContact(ctx, req.ClientID); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Validation("client does not exist")
		}
		return nil, err
	}

	now := time.Now().UTC()
	a := &repository.Appointment{
		ID:        uuid.New(),
		ClientID:  req.ClientID,
		CaseID:    req.CaseID,
		Title:     req.Title,
		Type:      req.Type,
		Location:  req.Location,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    "scheduled",
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.scheduleReminder(ctx, a)
	s.bus.Publish(ctx, events.AppointmentScheduled{
		BaseEvent:     events.NewBaseEvent(),
		AppointmentID: a.ID,
		ClientID:      a.ClientID,
		StartTime:     a.StartTime.Format(time.RFC3339),
	})

	return toResponse(a), nil
}

// GetByID returns one appointment.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.AppointmentResponse, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(a), nil
}

// List returns a page of appointments ordered by start time.
func (s *Service) List(ctx context.Context, req transport.ListAppointmentsRequest) (*transport.ListAppointmentsResponse, error) {
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

	filter := repository.ListFilter{
		Status: req.Status,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}
	if req.ClientID != "" {
		clientID, err := uuid.Parse(req.ClientID)
		if err != nil {
			return nil, apperr.Validation("invalid clientId filter")
		}
		filter.ClientID = &clientID
	}
	if req.From != "" {
		from, err := time.Parse(time.RFC3339, req.From)
		if err != nil {
			return nil, apperr.Validation("from must be RFC 3339")
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := time.Parse(time.RFC3339, req.To)
		if err != nil {
			return nil, apperr.Validation("to must be RFC 3339")
		}
		filter.To = &to
	}

	appts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]transport.AppointmentResponse, 0, len(appts))
	for i := range appts {
		items = append(items, *toResponse(&appts[i]))
	}
	return &transport.ListAppointmentsResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Reschedule moves an appointment and re-arms its reminder. The superseded
// reminder task still fires but the worker sees the new start time and the
// status check keeps stale reminders from going out for cancelled bookings.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, req transport.RescheduleAppointmentRequest) (*transport.AppointmentResponse, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, apperr.Validation("endTime must be after startTime")
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != "scheduled" {
		return nil, apperr.Validation("only scheduled appointments can be rescheduled")
	}

	a.StartTime = req.StartTime
	a.EndTime = req.EndTime
	a.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	s.scheduleReminder(ctx, a)
	s.bus.Publish(ctx, events.AppointmentScheduled{
		BaseEvent:     events.NewBaseEvent(),
		AppointmentID: a.ID,
		ClientID:      a.ClientID,
		StartTime:     a.StartTime.Format(time.RFC3339),
	})

	return toResponse(a), nil
}

// UpdateStatus completes, cancels, or no-shows an appointment.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*transport.AppointmentResponse, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return toResponse(a), nil
}

// Delete removes an appointment.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) scheduleReminder(ctx context.Context, a *repository.Appointment) {
	if s.reminders == nil {
		return
	}
	runAt := a.StartTime.Add(-reminderLead)
	if runAt.Before(time.Now()) {
		return
	}

	err := s.reminders.ScheduleAppointmentReminder(ctx, scheduler.AppointmentReminderPayload{
		AppointmentID: a.ID.String(),
	}, runAt)
	if err != nil {
		// Reminders are best effort; the booking itself already committed.
		s.log.Warn("failed to schedule appointment reminder", "error", err, "appointment_id", a.ID)
	}
}

func toResponse(a *repository.Appointment) *transport.AppointmentResponse {
	return &transport.AppointmentResponse{
		ID:        a.ID,
		ClientID:  a.ClientID,
		CaseID:    a.CaseID,
		Title:     a.Title,
		Type:      a.Type,
		Location:  a.Location,
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
		Status:    a.Status,
		Notes:     a.Notes,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
