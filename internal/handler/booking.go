package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cartelera/screenings/internal/model"
	"github.com/cartelera/screenings/internal/queue"
	"github.com/cartelera/screenings/internal/schedule"
)

// BookingHandler exposes seat availability and the atomic multi-seat booking
// operation. The screening's own lock provides the all-or-nothing guarantee;
// the handler only translates outcomes and feeds the collaborators.
type BookingHandler struct {
	Registry  *schedule.Registry
	Tickets   TicketStore
	Publisher EventPublisher
}

// NewBookingHandler constructs a BookingHandler. The registry is required;
// nil collaborators are skipped (used by tests).
func NewBookingHandler(reg *schedule.Registry, tickets TicketStore, publisher EventPublisher) *BookingHandler {
	if reg == nil {
		panic("nil registry passed to NewBookingHandler")
	}
	return &BookingHandler{Registry: reg, Tickets: tickets, Publisher: publisher}
}

// GetSeats handles GET /v1/screenings/:id/seats and returns the occupancy
// map for the screening: one row of display tokens per physical row, sold
// seats marked, plus the free seat count.
func (h *BookingHandler) GetSeats(c echo.Context) error {
	screening := h.Registry.FindScreening(c.Param("id"))
	if screening == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "screening not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"screening_id": screening.ID(),
		"rows":         screening.RenderOccupancy(),
		"available":    screening.AvailableSeatCount(),
		"capacity":     screening.Room().Capacity(),
	})
}

// BookSeats handles POST /v1/screenings/:id/tickets. The whole request either
// books every requested seat or books none: any unknown or already-sold label
// fails the batch with 409 and the grid untouched.
func (h *BookingHandler) BookSeats(c echo.Context) error {
	screening := h.Registry.FindScreening(c.Param("id"))
	if screening == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "screening not found"})
	}
	var body struct {
		Seats          []string `json:"seats"`
		PatronCategory string   `json:"patron_category"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	seats := make([]string, 0, len(body.Seats))
	for _, s := range body.Seats {
		if s = strings.TrimSpace(s); s != "" {
			seats = append(seats, s)
		}
	}
	if len(seats) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats is required"})
	}
	category := strings.TrimSpace(body.PatronCategory)
	if category == "" {
		category = "standard"
	}

	tickets, err := screening.BookSeats(seats, category)
	if err != nil {
		var unavailable *model.SeatUnavailableError
		if errors.As(err, &unavailable) {
			return c.JSON(http.StatusConflict, echo.Map{
				"error":       "one or more requested seats are unavailable",
				"unavailable": unavailable.Labels,
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}

	// The booking is committed in memory; collaborator failures are logged,
	// never turned into a rollback.
	ctx := c.Request().Context()
	if h.Tickets != nil {
		if err := h.Tickets.SaveTickets(ctx, screening.ID(), tickets); err != nil {
			log.Printf("ticket persistence failed for %s: %v", screening.ID(), err)
		}
	}
	if h.Publisher != nil {
		if err := h.Publisher.PublishTicketsIssued(ctx, ticketsIssuedEvent(screening, tickets, category)); err != nil {
			log.Printf("tickets.issued publish failed for %s: %v", screening.ID(), err)
		}
	}

	total := 0.0
	items := make([]echo.Map, 0, len(tickets))
	for _, t := range tickets {
		total += t.Price
		items = append(items, echo.Map{
			"seat":            t.Seat,
			"price":           t.Price,
			"patron_category": t.PatronCategory,
			"key":             t.Key,
		})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"screening_id": screening.ID(),
		"tickets":      items,
		"total":        total,
		"available":    screening.AvailableSeatCount(),
	})
}

func ticketsIssuedEvent(s *model.Screening, tickets []*model.Ticket, category string) queue.TicketsIssuedEvent {
	seats := make([]string, 0, len(tickets))
	keys := make([]string, 0, len(tickets))
	total := 0.0
	for _, t := range tickets {
		seats = append(seats, t.Seat)
		keys = append(keys, t.Key)
		total += t.Price
	}
	return queue.TicketsIssuedEvent{
		ScreeningID:    s.ID(),
		RoomID:         s.Room().ID(),
		WorkTitle:      s.Work().Title,
		StartsAt:       s.StartsAt().Format(time.RFC3339),
		PatronCategory: category,
		Seats:          seats,
		TicketKeys:     keys,
		Total:          total,
		IssuedAt:       time.Now().UTC().Format(time.RFC3339),
	}
}
