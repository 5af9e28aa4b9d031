// Package handler contains the HTTP handlers that expose the schedule
// registry over echo. Handlers hand accepted mutations to the persistence
// and notification collaborators after the registry commits them; the
// collaborators never run inside the registry's or a screening's lock.
package handler

import (
	"context"

	"github.com/cartelera/screenings/internal/model"
	"github.com/cartelera/screenings/internal/queue"
	"github.com/cartelera/screenings/internal/schedule"
)

// WorkStore persists catalog intake accepted by the registry.
type WorkStore interface {
	SaveWork(ctx context.Context, w *model.ScreenableWork) error
}

// ScreeningStore appends screening snapshot rows accepted by the registry.
type ScreeningStore interface {
	SaveScreening(ctx context.Context, rec schedule.ScreeningRecord) error
}

// TicketStore appends tickets issued by a successful booking.
type TicketStore interface {
	SaveTickets(ctx context.Context, screeningID string, tickets []*model.Ticket) error
}

// EventPublisher hands booking results to the notification collaborator.
type EventPublisher interface {
	PublishTicketsIssued(ctx context.Context, event queue.TicketsIssuedEvent) error
}
