package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// TurnoverBuffer is the mandatory gap between the end of one screening and the
// start of the next in the same room. It is folded into OccupiedInterval, so
// overlap checks need no special casing.
const TurnoverBuffer = 30 * time.Minute

// BaseTicketPrice is the default flat rate charged per seat when no pricing
// collaborator overrides it.
const BaseTicketPrice = 70.0

// OccupiedMarker is the display token used for a sold seat in RenderOccupancy.
const OccupiedMarker = "XX"

// AisleGap is the display token inserted between seat pairs when rendering a
// Premium room. Purely cosmetic.
const AisleGap = " "

// ErrInvalidScreening is returned when a screening is constructed without a
// work, a room or a start time.
var ErrInvalidScreening = errors.New("screening requires a work, a room and a start time")

// PriceFunc computes the price of a single seat for a booking. Implementations
// must be pure: booking semantics do not change with the pricing policy.
type PriceFunc func(work *ScreenableWork, seatLabel, patronCategory string) float64

// FlatPrice returns a PriceFunc that charges the same rate for every seat.
func FlatPrice(rate float64) PriceFunc {
	return func(*ScreenableWork, string, string) float64 { return rate }
}

// SeatUnavailableError reports the seat labels that blocked an atomic booking:
// unknown labels, already-sold seats and duplicates within the same request.
// When it is returned the grid is guaranteed to be unmodified.
type SeatUnavailableError struct {
	ScreeningID string
	Labels      []string
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seats unavailable for screening %s: %s",
		e.ScreeningID, strings.Join(e.Labels, ", "))
}

// Screening binds a work, a room layout and a start time, and owns the seat
// occupancy grid for that single showing. The grid mirrors the room's shape at
// construction and never changes shape; a cell transitions from free to sold
// exactly once. All grid access is serialized by one mutex per screening
// because the multi-seat booking contract needs a consistent snapshot across
// every requested seat.
type Screening struct {
	work  *ScreenableWork
	room  *RoomLayout
	start time.Time
	id    string
	price PriceFunc

	mu   sync.Mutex
	grid [][]*Ticket // same shape as room.Rows(); nil cell = free
}

// NewScreening allocates the seat grid and derives the screening identifier.
// A nil price falls back to FlatPrice(BaseTicketPrice).
func NewScreening(work *ScreenableWork, room *RoomLayout, start time.Time, price PriceFunc) (*Screening, error) {
	if work == nil || room == nil || start.IsZero() {
		return nil, ErrInvalidScreening
	}
	if price == nil {
		price = FlatPrice(BaseTicketPrice)
	}
	grid := make([][]*Ticket, room.RowCount())
	for i := range grid {
		grid[i] = make([]*Ticket, room.RowLength(i))
	}
	s := &Screening{work: work, room: room, start: start, price: price, grid: grid}
	s.id = fmt.Sprintf("%s:%s:%s:%s",
		TitleInitials(work.Title),
		start.Format("20060102"),
		start.Format("1504"),
		stripSpaces(room.ID()))
	return s, nil
}

// ID returns the identifier in the form `III:YYYYMMDD:HHmm:ROOMID`.
func (s *Screening) ID() string { return s.id }

// Work returns the screened work.
func (s *Screening) Work() *ScreenableWork { return s.work }

// Room returns the room layout this screening was scheduled into.
func (s *Screening) Room() *RoomLayout { return s.room }

// StartsAt returns the start timestamp.
func (s *Screening) StartsAt() time.Time { return s.start }

// OccupiedInterval returns the half-open interval [start, end) during which
// the room is blocked: runtime plus the turnover buffer.
func (s *Screening) OccupiedInterval() (start, end time.Time) {
	return s.start, s.start.Add(s.work.Runtime + TurnoverBuffer)
}

// Overlaps reports whether two screenings block the same room at the same
// time. Room identifiers are compared case-insensitively; different rooms
// never overlap regardless of timestamps. Interval comparison is strict
// (`<`, not `<=`): a screening starting exactly when another's occupied
// interval ends does not conflict, because the buffer is already inside the
// interval.
func (s *Screening) Overlaps(other *Screening) bool {
	if other == nil {
		return false
	}
	if !strings.EqualFold(s.room.ID(), other.room.ID()) {
		return false
	}
	aStart, aEnd := s.OccupiedInterval()
	bStart, bEnd := other.OccupiedInterval()
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// IsSeatAvailable reports whether the labelled seat exists and is still free.
// Malformed or out-of-range labels degrade to false; this never panics.
func (s *Screening) IsSeatAvailable(label string) bool {
	row, col, err := s.room.LabelToIndices(label)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid[row][col] == nil
}

type gridCell struct{ row, col int }

// BookSeats atomically sells the requested seats and returns one ticket per
// label, in the order the labels were supplied. Validation is two-phase under
// a single critical section: every label is resolved and checked before any
// cell is touched, so a failure leaves the grid exactly as it was. A label
// fails when it does not resolve, when the seat is already sold, or when it
// duplicates an earlier label in the same request (a cell may only be sold
// once). All failing labels are reported together in SeatUnavailableError.
func (s *Screening) BookSeats(labels []string, patronCategory string) ([]*Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cells := make([]gridCell, 0, len(labels))
	claimed := make(map[gridCell]bool, len(labels))
	var unavailable []string
	for _, label := range labels {
		row, col, err := s.room.LabelToIndices(label)
		if err != nil || s.grid[row][col] != nil || claimed[gridCell{row, col}] {
			unavailable = append(unavailable, label)
			continue
		}
		claimed[gridCell{row, col}] = true
		cells = append(cells, gridCell{row, col})
	}
	if len(unavailable) > 0 {
		return nil, &SeatUnavailableError{ScreeningID: s.id, Labels: unavailable}
	}

	tickets := make([]*Ticket, 0, len(labels))
	for _, c := range cells {
		seat := s.room.rows[c.row][c.col]
		t := &Ticket{
			Seat:           seat,
			Price:          s.price(s.work, seat, patronCategory),
			PatronCategory: patronCategory,
			Key:            s.id + ":" + seat,
		}
		s.grid[c.row][c.col] = t
		tickets = append(tickets, t)
	}
	return tickets, nil
}

// AvailableSeatCount counts the free cells, recomputed from the grid's state
// at call time.
func (s *Screening) AvailableSeatCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	free := 0
	for _, row := range s.grid {
		for _, cell := range row {
			if cell == nil {
				free++
			}
		}
	}
	return free
}

// RenderOccupancy returns one slice of display tokens per row: the seat label
// when the seat is free, OccupiedMarker when it is sold. Premium rooms get an
// AisleGap token before the third and fifth seats of each row, reflecting the
// pair grouping.
func (s *Screening) RenderOccupancy() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	premium := s.room.Kind() == RoomPremium
	out := make([][]string, len(s.grid))
	for i, row := range s.grid {
		tokens := make([]string, 0, len(row)+2)
		for j, cell := range row {
			if premium && (j == 2 || j == 4) {
				tokens = append(tokens, AisleGap)
			}
			if cell != nil {
				tokens = append(tokens, OccupiedMarker)
			} else {
				tokens = append(tokens, s.room.rows[i][j])
			}
		}
		out[i] = tokens
	}
	return out
}

func (s *Screening) String() string {
	return fmt.Sprintf("%s - %s in %s (%s)",
		s.id, s.work.Title, s.room.ID(), s.start.Format("2006-01-02 15:04"))
}
