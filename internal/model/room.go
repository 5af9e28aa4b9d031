// Package model holds the core scheduling domain: room layouts, screenable
// works, screenings and their per-screening seat grids. Nothing in this
// package performs I/O or logging; every failure is returned as a typed error
// so that the transport layer can decide how to present it.
package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// RoomKind enumerates the supported seating layouts. Layout geometry is data
// attached to the kind, not per-kind code: each kind resolves to an ordered
// sequence of row lengths and the rest of the construction is shared.
type RoomKind string

const (
	// RoomStandard is a rectangular hall: 10 rows of 15 seats (capacity 150).
	RoomStandard RoomKind = "STANDARD"
	// RoomIrregular is a jagged hall: rows A-D hold 7 seats, rows E-J hold 15
	// (capacity 118).
	RoomIrregular RoomKind = "IRREGULAR"
	// RoomPremium is a small hall: 8 rows of 6 seats (capacity 48), displayed
	// in pairs with aisles after seats 2 and 4. The grouping is cosmetic and
	// has no effect on booking.
	RoomPremium RoomKind = "PREMIUM"
)

// ErrInvalidKind is returned when an unknown room kind is requested.
var ErrInvalidKind = errors.New("unknown room kind")

// ErrInvalidSeatLabel is returned when a seat code is malformed or falls
// outside the layout's bounds.
var ErrInvalidSeatLabel = errors.New("invalid seat label")

// ParseRoomKind converts free-form input into a RoomKind. Matching is
// case-insensitive; anything else fails with ErrInvalidKind.
func ParseRoomKind(s string) (RoomKind, error) {
	switch k := RoomKind(strings.ToUpper(strings.TrimSpace(s))); k {
	case RoomStandard, RoomIrregular, RoomPremium:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// RoomLayout describes the fixed seating geometry of a physical auditorium.
// Rows may have uneven lengths. A layout is immutable after construction and
// is shared read-only by every screening scheduled into the room; seat
// occupancy is tracked per screening, never here.
type RoomLayout struct {
	id       string
	kind     RoomKind
	rows     [][]string // seat labels per row, possibly jagged
	capacity int
}

// NewRoomLayout builds the layout for the given kind and fills in seat labels.
// Row letters start at 'A' and columns are 1-based, so the first seat of the
// third row is "C1". An unknown kind fails with ErrInvalidKind.
func NewRoomLayout(id string, kind RoomKind) (*RoomLayout, error) {
	var lengths []int
	switch kind {
	case RoomStandard:
		lengths = repeatRows(10, 15)
	case RoomIrregular:
		lengths = append(repeatRows(4, 7), repeatRows(6, 15)...)
	case RoomPremium:
		lengths = repeatRows(8, 6)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	rows := make([][]string, len(lengths))
	capacity := 0
	for i, n := range lengths {
		row := make([]string, n)
		for j := range row {
			row[j] = fmt.Sprintf("%c%d", rune('A'+i), j+1)
		}
		rows[i] = row
		capacity += n
	}
	return &RoomLayout{id: id, kind: kind, rows: rows, capacity: capacity}, nil
}

func repeatRows(count, length int) []int {
	lengths := make([]int, count)
	for i := range lengths {
		lengths[i] = length
	}
	return lengths
}

// ID returns the room identifier, unique within a deployment.
func (r *RoomLayout) ID() string { return r.id }

// Kind returns the layout kind.
func (r *RoomLayout) Kind() RoomKind { return r.kind }

// Capacity returns the total seat count across all rows.
func (r *RoomLayout) Capacity() int { return r.capacity }

// RowCount returns the number of rows.
func (r *RoomLayout) RowCount() int { return len(r.rows) }

// RowLength returns the number of seats in row i.
func (r *RoomLayout) RowLength(i int) int { return len(r.rows[i]) }

// Rows returns the seat label matrix. Callers must treat it as read-only.
func (r *RoomLayout) Rows() [][]string { return r.rows }

// LabelToIndices resolves a seat code such as "C7" into zero-based row and
// column indices. Input is trimmed and upper-cased first. It fails with
// ErrInvalidSeatLabel when the code is not `<letter><digits>` or when the
// row or column falls outside the layout's bounds for that row.
func (r *RoomLayout) LabelToIndices(label string) (row, col int, err error) {
	code := strings.ToUpper(strings.TrimSpace(label))
	if len(code) < 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSeatLabel, label)
	}
	if code[0] < 'A' || code[0] > 'Z' {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSeatLabel, label)
	}
	for _, ch := range code[1:] {
		if ch < '0' || ch > '9' {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSeatLabel, label)
		}
	}
	n, convErr := strconv.Atoi(code[1:])
	if convErr != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSeatLabel, label)
	}
	row = int(code[0] - 'A')
	col = n - 1
	if row >= len(r.rows) || col < 0 || col >= len(r.rows[row]) {
		return 0, 0, fmt.Errorf("%w: %q is outside room %s", ErrInvalidSeatLabel, label, r.id)
	}
	return row, col, nil
}

// HasSeat reports whether the label resolves to a seat in this layout.
func (r *RoomLayout) HasSeat(label string) bool {
	_, _, err := r.LabelToIndices(label)
	return err == nil
}

func (r *RoomLayout) String() string {
	return fmt.Sprintf("%s (%s, capacity %d)", r.id, r.kind, r.capacity)
}
