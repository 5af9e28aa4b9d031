package schedule

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cartelera/screenings/internal/model"
)

func seededRegistry(t *testing.T) (*Registry, *model.ScreenableWork, *model.RoomLayout) {
	t.Helper()
	reg := NewRegistry()
	work, err := reg.AddWork("El Viaje Fantastico", "Aventura", "", "03:10")
	if err != nil {
		t.Fatalf("expected no error adding work, got %v", err)
	}
	room, err := reg.AddRoom("Sala A", model.RoomStandard)
	if err != nil {
		t.Fatalf("expected no error adding room, got %v", err)
	}
	return reg, work, room
}

func TestAddWork(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	if _, err := reg.AddWork("Rota", "Drama", "", "95 minutos"); !errors.Is(err, model.ErrInvalidRuntimeFormat) {
		t.Fatalf("expected ErrInvalidRuntimeFormat, got %v", err)
	}
	if got := len(reg.Works()); got != 0 {
		t.Fatalf("expected empty catalog after rejected work, got %d entries", got)
	}

	if _, err := reg.AddWork("Buena", "Drama", "", "01:35"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if found := reg.FindWork("bUeNa"); found == nil || found.Title != "Buena" {
		t.Fatalf("expected case-insensitive lookup to find Buena, got %v", found)
	}
	if reg.FindWork("Desconocida") != nil {
		t.Fatalf("expected nil for unknown title")
	}
}

func TestAddRoom(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	if _, err := reg.AddRoom("Sala X", model.RoomKind("IMAX")); !errors.Is(err, model.ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}

	if _, err := reg.AddRoom("Sala A", model.RoomStandard); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := reg.AddRoom("Sala A", model.RoomPremium); !errors.Is(err, ErrRoomExists) {
		t.Fatalf("expected ErrRoomExists, got %v", err)
	}
	if _, err := reg.AddRoom("Sala B", model.RoomIrregular); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	rooms := reg.Rooms()
	if len(rooms) != 2 || rooms[0].ID() != "Sala A" || rooms[1].ID() != "Sala B" {
		t.Fatalf("expected rooms in definition order, got %v", rooms)
	}
}

func TestAddScreening_Conflict(t *testing.T) {
	t.Parallel()

	reg, work, room := seededRegistry(t)
	day := func(h, m int) time.Time {
		return time.Date(2025, 3, 1, h, m, 0, 0, time.UTC)
	}

	first, err := reg.AddScreening(work, room, day(15, 0))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// The 03:10 runtime plus the turnover buffer occupies the room until 18:40.
	_, err = reg.AddScreening(work, room, day(18, 0))
	var conflict *ScheduleConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ScheduleConflictError, got %v", err)
	}
	if conflict.RoomID != "Sala A" || conflict.ConflictingID != first.ID() {
		t.Fatalf("unexpected conflict details: %+v", conflict)
	}
	wantEnd := day(18, 40)
	if !conflict.ConflictStart.Equal(day(15, 0)) || !conflict.ConflictEnd.Equal(wantEnd) {
		t.Fatalf("unexpected conflict interval: %v to %v", conflict.ConflictStart, conflict.ConflictEnd)
	}
	if got := len(reg.Screenings()); got != 1 {
		t.Fatalf("expected rejected screening to leave nothing behind, got %d stored", got)
	}

	if _, err := reg.AddScreening(work, room, day(19, 0)); err != nil {
		t.Fatalf("expected 19:00 screening to be admitted, got %v", err)
	}
	if got := len(reg.Screenings()); got != 2 {
		t.Fatalf("expected 2 stored screenings, got %d", got)
	}
}

func TestAddScreening_InvalidInput(t *testing.T) {
	t.Parallel()

	reg, work, room := seededRegistry(t)
	start := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)

	if _, err := reg.AddScreening(nil, room, start); !errors.Is(err, model.ErrInvalidScreening) {
		t.Fatalf("expected ErrInvalidScreening for nil work, got %v", err)
	}
	if _, err := reg.AddScreening(work, nil, start); !errors.Is(err, model.ErrInvalidScreening) {
		t.Fatalf("expected ErrInvalidScreening for nil room, got %v", err)
	}
}

func TestScreeningsFor(t *testing.T) {
	t.Parallel()

	reg, work, room := seededRegistry(t)
	other, err := reg.AddWork("Otra Cosa", "Drama", "", "01:30")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	roomB, err := reg.AddRoom("Sala B", model.RoomIrregular)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	day := func(h int) time.Time {
		return time.Date(2025, 3, 1, h, 0, 0, 0, time.UTC)
	}

	s1, _ := reg.AddScreening(work, room, day(10))
	if _, err := reg.AddScreening(other, roomB, day(10)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	s2, _ := reg.AddScreening(work, roomB, day(14))

	got := reg.ScreeningsFor(work)
	if len(got) != 2 || got[0] != s1 || got[1] != s2 {
		t.Fatalf("expected [s1 s2] in insertion order, got %v", got)
	}
	if reg.FindScreening(s2.ID()) != s2 {
		t.Fatalf("expected FindScreening to return s2")
	}
	if reg.FindScreening("NOPE:20250301:0000:SalaA") != nil {
		t.Fatalf("expected nil for unknown screening id")
	}
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	reg, work, room := seededRegistry(t)
	start := time.Date(2025, 3, 1, 16, 30, 0, 0, time.UTC)
	s, err := reg.AddScreening(work, room, start)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	snap := reg.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected 1 record, got %d", len(snap))
	}
	rec := snap[0]
	if rec.RoomID != "Sala A" || rec.ScreeningID != s.ID() || rec.WorkTitle != work.Title || !rec.StartsAt.Equal(start) {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestWithPricer(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(WithPricer(func(_ *model.ScreenableWork, _ string, _ string) float64 {
		return 120.0
	}))
	work, err := reg.AddWork("Cara", "Drama", "", "01:30")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	room, err := reg.AddRoom("VIP 1", model.RoomPremium)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	s, err := reg.AddScreening(work, room, time.Date(2025, 3, 1, 21, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	tickets, err := s.BookSeats([]string{"A1"}, "Adulto")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tickets[0].Price != 120.0 {
		t.Fatalf("expected price 120.0, got %v", tickets[0].Price)
	}
}

func TestAddScreening_ConcurrentSameSlot(t *testing.T) {
	t.Parallel()

	reg, work, room := seededRegistry(t)
	start := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = reg.AddScreening(work, room, start)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		var conflict *ScheduleConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("expected ScheduleConflictError, got %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one admitted screening, got %d", successes)
	}
	if got := len(reg.Screenings()); got != 1 {
		t.Fatalf("expected 1 stored screening, got %d", got)
	}
}
