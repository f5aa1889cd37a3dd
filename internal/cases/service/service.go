// Package service implements the cases business logic: CRUD orchestration
// plus merging the intelligence score into every read.
package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"visadesk_backend/internal/cases/intelligence"
	"visadesk_backend/internal/cases/repository"
	"visadesk_backend/internal/cases/transport"
	"visadesk_backend/internal/events"
	"visadesk_backend/platform/apperr"
	"visadesk_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPageSize = 25
	maxPageSize     = 100

	// scoreConcurrency bounds parallel scoring of listed cases. Each case's
	// score is independent of every other's, so order does not matter.
	scoreConcurrency = 8
)

// ClientSummary is the client data snapshotted onto a case at creation.
type ClientSummary struct {
	ID             uuid.UUID
	FullName       string
	Email          string
	PassportNumber string
}

// ClientDirectory is the cases module's view of the clients module.
type ClientDirectory interface {
	GetClientSummary(ctx context.Context, id uuid.UUID) (ClientSummary, error)
}

// Service implements case operations.
type Service struct {
	repo    *repository.Repository
	clients ClientDirectory
	engine  *intelligence.Engine
	bus     events.Bus
	log     *logger.Logger
}

// New creates a new cases service.
func New(repo *repository.Repository, clients ClientDirectory, engine *intelligence.Engine, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, clients: clients, engine: engine, bus: bus, log: log}
}

// Create registers a new case for an existing client and returns it scored.
func (s *Service) Create(ctx context.Context, req transport.CreateCaseRequest) (*transport.CaseResponse, error) {
	client, err := s.clients.GetClientSummary(ctx, req.ClientID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Validation("client does not exist")
		}
		return nil, err
	}

	caseNumber, err := s.repo.NextCaseNumber(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	priority := req.Priority
	if priority == "" {
		priority = string(intelligence.PriorityNormal)
	}

	vc := &repository.VisaCase{
		ID:                   uuid.New(),
		CaseNumber:           caseNumber,
		ClientID:             client.ID,
		ClientName:           client.FullName,
		ClientEmail:          client.Email,
		PassportNumber:       client.PassportNumber,
		VisaType:             req.VisaType,
		Country:              req.Country,
		Status:               "intake",
		Priority:             priority,
		ExpectedDecisionDate: req.ExpectedDecisionDate,
		Notes:                req.Notes,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.repo.Create(ctx, vc, docsFromRequest(req.Documents), travelFromRequest(req.TravelHistory)); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.CaseCreated{
		BaseEvent:  events.NewBaseEvent(),
		CaseID:     vc.ID,
		CaseNumber: vc.CaseNumber,
		ClientID:   vc.ClientID,
		VisaType:   vc.VisaType,
	})
	s.log.CaseEvent("created", vc.ID.String())

	return s.loadAndScore(ctx, vc, true)
}

// GetByID returns one case with its full score and recommendations.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.CaseResponse, error) {
	vc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.loadAndScore(ctx, vc, true)
}

// List returns a page of cases, each scored. Scoring runs concurrently with
// a bounded limit; no ordering guarantee is needed between records so each
// goroutine writes only its own slot.
func (s *Service) List(ctx context.Context, req transport.ListCasesRequest) (*transport.ListCasesResponse, error) {
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
		Status:   req.Status,
		VisaType: req.VisaType,
		Country:  req.Country,
		Search:   req.Search,
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	}
	if req.ClientID != "" {
		clientID, err := uuid.Parse(req.ClientID)
		if err != nil {
			return nil, apperr.Validation("invalid clientId filter")
		}
		filter.ClientID = &clientID
	}

	cases, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]transport.CaseResponse, len(cases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scoreConcurrency)
	for i := range cases {
		g.Go(func() error {
			resp, err := s.loadAndScore(gctx, &cases[i], false)
			if err != nil {
				return err
			}
			items[i] = *resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &transport.ListCasesResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Update modifies a case and returns it rescored.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateCaseRequest) (*transport.CaseResponse, error) {
	vc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.VisaType != nil {
		vc.VisaType = *req.VisaType
	}
	if req.Country != nil {
		vc.Country = *req.Country
	}
	if req.Priority != nil {
		vc.Priority = *req.Priority
	}
	if req.ExpectedDecisionDate != nil {
		vc.ExpectedDecisionDate = req.ExpectedDecisionDate
	}
	if req.Notes != nil {
		vc.Notes = req.Notes
	}
	vc.UpdatedAt = time.Now().UTC()

	var docs []repository.CaseDocument
	if req.Documents != nil {
		docs = docsFromRequest(req.Documents)
	}
	var travel []repository.TravelEntry
	if req.TravelHistory != nil {
		travel = travelFromRequest(req.TravelHistory)
	}

	if err := s.repo.Update(ctx, vc, docs, travel); err != nil {
		return nil, err
	}

	return s.loadAndScore(ctx, vc, true)
}

// UpdateStatus moves a case through its workflow and notifies subscribers.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*transport.CaseResponse, error) {
	vc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldStatus := vc.Status

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	vc.Status = status
	vc.UpdatedAt = time.Now().UTC()

	if oldStatus != status {
		s.bus.Publish(ctx, events.CaseStatusChanged{
			BaseEvent:  events.NewBaseEvent(),
			CaseID:     vc.ID,
			CaseNumber: vc.CaseNumber,
			ClientID:   vc.ClientID,
			OldStatus:  oldStatus,
			NewStatus:  status,
		})
		s.log.CaseEvent("status_changed", vc.ID.String())
	}

	return s.loadAndScore(ctx, vc, true)
}

// Delete removes a case and its child rows.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// AddAlert attaches an alert and returns the rescored case; alerts feed both
// the risk level and the priority classification.
func (s *Service) AddAlert(ctx context.Context, id uuid.UUID, req transport.CreateAlertRequest) (*transport.CaseResponse, error) {
	vc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	alert := &repository.CaseAlert{
		ID:        uuid.New(),
		CaseID:    vc.ID,
		Message:   req.Message,
		Severity:  req.Severity,
		Type:      req.Type,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateAlert(ctx, alert); err != nil {
		return nil, err
	}

	return s.loadAndScore(ctx, vc, true)
}

// ExportCSV streams all cases with their computed scores as CSV.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	cases, _, err := s.repo.List(ctx, repository.ListFilter{Limit: maxExportRows, Offset: 0})
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{
		"case_number", "client_name", "visa_type", "country", "status",
		"priority", "success_probability", "risk_level", "duplicate_detected", "created_at",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	type scored struct {
		vc    repository.VisaCase
		score intelligence.Score
	}
	rows := make([]scored, len(cases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scoreConcurrency)
	for i := range cases {
		g.Go(func() error {
			rec, err := s.buildRecord(gctx, &cases[i])
			if err != nil {
				return err
			}
			rows[i] = scored{vc: cases[i], score: s.engine.Evaluate(gctx, cases[i].ID, rec)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			row.vc.CaseNumber,
			row.vc.ClientName,
			row.vc.VisaType,
			row.vc.Country,
			row.vc.Status,
			string(row.score.Priority),
			strconv.Itoa(row.score.SuccessProbability),
			string(row.score.RiskLevel),
			strconv.FormatBool(row.score.DuplicateDetected),
			row.vc.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

const maxExportRows = 10000

// loadAndScore fetches a case's children, evaluates the engine, and maps
// everything into the response shape. Recommendations are included only on
// detail reads.
func (s *Service) loadAndScore(ctx context.Context, vc *repository.VisaCase, withRecommendations bool) (*transport.CaseResponse, error) {
	docs, err := s.repo.ListDocuments(ctx, vc.ID)
	if err != nil {
		return nil, err
	}
	travel, err := s.repo.ListTravelHistory(ctx, vc.ID)
	if err != nil {
		return nil, err
	}
	alerts, err := s.repo.ListAlerts(ctx, vc.ID)
	if err != nil {
		return nil, err
	}

	rec := recordFromModels(vc, docs, travel, alerts)
	score := s.engine.Evaluate(ctx, vc.ID, rec)

	resp := &transport.CaseResponse{
		ID:                   vc.ID,
		CaseID:               vc.CaseNumber,
		ClientID:             vc.ClientID,
		ClientName:           vc.ClientName,
		VisaType:             vc.VisaType,
		Country:              vc.Country,
		Status:               vc.Status,
		ExpectedDecisionDate: vc.ExpectedDecisionDate,
		Documents:            docsToResponse(docs),
		TravelHistory:        travelToResponse(travel),
		Alerts:               alertsToResponse(alerts),
		Notes:                vc.Notes,
		SuccessProbability:   score.SuccessProbability,
		RiskLevel:            score.RiskLevel,
		DuplicateDetected:    score.DuplicateDetected,
		Priority:             score.Priority,
		RiskFlags:            score.RiskFlags,
		CreatedAt:            vc.CreatedAt,
		UpdatedAt:            vc.UpdatedAt,
	}
	if withRecommendations {
		recs := score.Recommendations
		resp.Recommendations = &recs
	}
	return resp, nil
}

// buildRecord assembles the engine input for one case.
func (s *Service) buildRecord(ctx context.Context, vc *repository.VisaCase) (intelligence.CaseRecord, error) {
	docs, err := s.repo.ListDocuments(ctx, vc.ID)
	if err != nil {
		return intelligence.CaseRecord{}, err
	}
	travel, err := s.repo.ListTravelHistory(ctx, vc.ID)
	if err != nil {
		return intelligence.CaseRecord{}, err
	}
	alerts, err := s.repo.ListAlerts(ctx, vc.ID)
	if err != nil {
		return intelligence.CaseRecord{}, err
	}
	return recordFromModels(vc, docs, travel, alerts), nil
}

func recordFromModels(vc *repository.VisaCase, docs []repository.CaseDocument, travel []repository.TravelEntry, alerts []repository.CaseAlert) intelligence.CaseRecord {
	rec := intelligence.CaseRecord{
		VisaType:             vc.VisaType,
		Country:              vc.Country,
		Priority:             vc.Priority,
		ExpectedDecisionDate: vc.ExpectedDecisionDate,
		PassportNumber:       vc.PassportNumber,
		ClientName:           vc.ClientName,
		ClientEmail:          vc.ClientEmail,
	}
	for _, d := range docs {
		rec.Documents = append(rec.Documents, intelligence.Document{
			Type:     d.Type,
			Uploaded: d.Uploaded,
			Required: d.Required,
		})
	}
	for _, t := range travel {
		entry := intelligence.TravelEntry{Country: t.Country}
		if t.TraveledAt != nil {
			entry.TraveledAt = *t.TraveledAt
		}
		rec.TravelHistory = append(rec.TravelHistory, entry)
	}
	for _, a := range alerts {
		rec.Alerts = append(rec.Alerts, intelligence.Alert{
			Message:  a.Message,
			Severity: a.Severity,
			Type:     a.Type,
		})
	}
	return rec
}

func docsFromRequest(items []transport.DocumentItemRequest) []repository.CaseDocument {
	out := make([]repository.CaseDocument, 0, len(items))
	for _, item := range items {
		out = append(out, repository.CaseDocument{
			ID:       uuid.New(),
			Type:     item.Type,
			Uploaded: item.Uploaded,
			Required: item.Required,
		})
	}
	return out
}

func travelFromRequest(items []transport.TravelEntryRequest) []repository.TravelEntry {
	out := make([]repository.TravelEntry, 0, len(items))
	for _, item := range items {
		out = append(out, repository.TravelEntry{
			ID:         uuid.New(),
			Country:    item.Country,
			TraveledAt: item.TraveledAt,
		})
	}
	return out
}

func docsToResponse(docs []repository.CaseDocument) []transport.DocumentItemResponse {
	out := make([]transport.DocumentItemResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, transport.DocumentItemResponse{Type: d.Type, Uploaded: d.Uploaded, Required: d.Required})
	}
	return out
}

func travelToResponse(travel []repository.TravelEntry) []transport.TravelEntryResponse {
	out := make([]transport.TravelEntryResponse, 0, len(travel))
	for _, t := range travel {
		out = append(out, transport.TravelEntryResponse{Country: t.Country, TraveledAt: t.TraveledAt})
	}
	return out
}

func alertsToResponse(alerts []repository.CaseAlert) []transport.AlertResponse {
	out := make([]transport.AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, transport.AlertResponse{
			ID:        a.ID,
			Message:   a.Message,
			Severity:  a.Severity,
			Type:      a.Type,
			CreatedAt: a.CreatedAt,
		})
	}
	return out
}
