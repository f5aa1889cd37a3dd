// Package adapters contains anti-corruption adapters that let modules talk
// to each other through their own interfaces instead of importing siblings.
package adapters

import (
	"context"

	casesvc "visadesk_backend/internal/cases/service"
	clientsvc "visadesk_backend/internal/clients/service"

	"github.com/google/uuid"
)

// ClientDirectory adapts the clients service to the directory interface the
// cases module snapshots client data through.
type ClientDirectory struct {
	clients *clientsvc.Service
}

func NewClientDirectory(clients *clientsvc.Service) *ClientDirectory {
	return &ClientDirectory{clients: clients}
}

func (a *ClientDirectory) GetClientSummary(ctx context.Context, id uuid.UUID) (casesvc.ClientSummary, error) {
	summary, err := a.clients.GetSummary(ctx, id)
	if err != nil {
		return casesvc.ClientSummary{}, err
	}

	return casesvc.ClientSummary{
		ID:             summary.ID,
		FullName:       summary.FullName,
		Email:          summary.Email,
		PassportNumber: summary.PassportNumber,
	}, nil
}
