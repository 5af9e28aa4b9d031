// Package schedule holds the in-memory schedule registry: the single
// authority over rooms, works and screenings, and the sole enforcer of the
// no-overlap invariant. The registry performs no I/O and never logs;
// persistence collaborators act on its results outside of its lock.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cartelera/screenings/internal/model"
)

// ErrRoomExists is returned when a room identifier is defined twice.
var ErrRoomExists = errors.New("room already defined")

// ScheduleConflictError is returned when a candidate screening overlaps an
// existing one in the same room. It carries the conflicting screening's
// identifier and occupied interval so callers can present a useful message.
type ScheduleConflictError struct {
	RoomID        string
	ConflictingID string
	ConflictStart time.Time
	ConflictEnd   time.Time
}

func (e *ScheduleConflictError) Error() string {
	return fmt.Sprintf("room %s is occupied from %s to %s by screening %s (turnover buffer included)",
		e.RoomID,
		e.ConflictStart.Format("2006-01-02 15:04"),
		e.ConflictEnd.Format("2006-01-02 15:04"),
		e.ConflictingID)
}

// ScreeningRecord is the snapshot row handed to the persistence collaborator
// for every stored screening.
type ScreeningRecord struct {
	RoomID      string
	ScreeningID string
	StartsAt    time.Time
	WorkTitle   string
}

// Registry is the process-wide store of known works, room layouts and
// screenings. A single RWMutex guards all collections; AddScreening runs its
// conflict scan and the append as one critical section so that two concurrent
// adds for the same room and time window can never both succeed.
type Registry struct {
	mu         sync.RWMutex
	works      []*model.ScreenableWork
	rooms      map[string]*model.RoomLayout
	roomOrder  []string
	screenings []*model.Screening
	price      model.PriceFunc
}

// Option customizes a Registry at construction time.
type Option func(*Registry)

// WithPricer installs a pricing collaborator applied to every screening the
// registry creates. Booking semantics are unaffected by the policy.
func WithPricer(p model.PriceFunc) Option {
	return func(r *Registry) {
		if p != nil {
			r.price = p
		}
	}
}

// NewRegistry builds an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{rooms: make(map[string]*model.RoomLayout)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddRoom constructs the layout for the given kind and registers it under its
// identifier. Unknown kinds fail with model.ErrInvalidKind, duplicates with
// ErrRoomExists.
func (r *Registry) AddRoom(id string, kind model.RoomKind) (*model.RoomLayout, error) {
	room, err := model.NewRoomLayout(id, kind)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomExists, id)
	}
	r.rooms[id] = room
	r.roomOrder = append(r.roomOrder, id)
	return room, nil
}

// FindRoom returns the layout registered under id, or nil.
func (r *Registry) FindRoom(id string) *model.RoomLayout {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[id]
}

// Rooms returns all layouts in definition order.
func (r *Registry) Rooms() []*model.RoomLayout {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.RoomLayout, 0, len(r.roomOrder))
	for _, id := range r.roomOrder {
		out = append(out, r.rooms[id])
	}
	return out
}

// AddWork validates the runtime text, creates the work and stores it. A
// malformed runtime fails with model.ErrInvalidRuntimeFormat.
func (r *Registry) AddWork(title, genre, synopsis, runtimeText string) (*model.ScreenableWork, error) {
	work, err := model.NewScreenableWork(title, genre, synopsis, runtimeText)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.works = append(r.works, work)
	return work, nil
}

// FindWork returns the first work whose title matches case-insensitively, or
// nil when the catalog holds no such title.
func (r *Registry) FindWork(title string) *model.ScreenableWork {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.works {
		if strings.EqualFold(w.Title, title) {
			return w
		}
	}
	return nil
}

// Works returns the catalog in intake order.
func (r *Registry) Works() []*model.ScreenableWork {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.ScreenableWork, len(r.works))
	copy(out, r.works)
	return out
}

// AddScreening constructs a candidate screening and admits it only when no
// existing screening in the same room overlaps its occupied interval. The
// scan is linear over all stored screenings and the first conflict wins; on
// conflict nothing is stored. On success the candidate is appended (insertion
// order is the registry's history order) and returned.
func (r *Registry) AddScreening(work *model.ScreenableWork, room *model.RoomLayout, start time.Time) (*model.Screening, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	candidate, err := model.NewScreening(work, room, start, r.price)
	if err != nil {
		return nil, err
	}
	for _, existing := range r.screenings {
		if candidate.Overlaps(existing) {
			conflictStart, conflictEnd := existing.OccupiedInterval()
			return nil, &ScheduleConflictError{
				RoomID:        room.ID(),
				ConflictingID: existing.ID(),
				ConflictStart: conflictStart,
				ConflictEnd:   conflictEnd,
			}
		}
	}
	r.screenings = append(r.screenings, candidate)
	return candidate, nil
}

// ScreeningsFor returns every screening of the given work in registry
// insertion order. Callers needing chronological order must sort themselves;
// insertion order is also the audit order collaborators depend on.
func (r *Registry) ScreeningsFor(work *model.ScreenableWork) []*model.Screening {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Screening
	for _, s := range r.screenings {
		if s.Work() == work {
			out = append(out, s)
		}
	}
	return out
}

// FindScreening returns the screening with the given identifier, or nil.
func (r *Registry) FindScreening(id string) *model.Screening {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.screenings {
		if s.ID() == id {
			return s
		}
	}
	return nil
}

// Screenings returns all stored screenings in insertion order.
func (r *Registry) Screenings() []*model.Screening {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Screening, len(r.screenings))
	copy(out, r.screenings)
	return out
}

// Snapshot reports one record per stored screening, in insertion order, for
// the persistence collaborator to serialize however it chooses.
func (r *Registry) Snapshot() []ScreeningRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ScreeningRecord, 0, len(r.screenings))
	for _, s := range r.screenings {
		out = append(out, ScreeningRecord{
			RoomID:      s.Room().ID(),
			ScreeningID: s.ID(),
			StartsAt:    s.StartsAt(),
			WorkTitle:   s.Work().Title,
		})
	}
	return out
}
