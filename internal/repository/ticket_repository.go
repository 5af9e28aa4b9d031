package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cartelera/screenings/internal/model"
)

// TicketRepo appends issued tickets for the receipt and reporting
// collaborators. Tickets are written after the booking already committed in
// memory; a write failure is a collaborator failure, not a booking rollback.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo constructs a TicketRepo with the given DB handle.
func NewTicketRepo(db *sql.DB) *TicketRepo {
	return &TicketRepo{db: db}
}

// SaveTickets inserts every ticket of one booking in a single statement.
func (r *TicketRepo) SaveTickets(ctx context.Context, screeningID string, tickets []*model.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`INSERT INTO tickets (ticket_key, screening_id, seat, price, patron_category) VALUES `)
	for i, t := range tickets {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, t.Key, screeningID, t.Seat, t.Price, t.PatronCategory)
	}
	_, err := r.db.ExecContext(ctx, sb.String(), args...)
	return err
}
