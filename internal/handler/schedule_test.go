package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cartelera/screenings/internal/model"
	"github.com/cartelera/screenings/internal/queue"
	"github.com/cartelera/screenings/internal/repository"
	"github.com/cartelera/screenings/internal/schedule"
)

type fakeWorkStore struct {
	saved []*model.ScreenableWork
	err   error
}

func (f *fakeWorkStore) SaveWork(_ context.Context, w *model.ScreenableWork) error {
	f.saved = append(f.saved, w)
	return f.err
}

type fakeScreeningStore struct {
	saved []schedule.ScreeningRecord
	err   error
}

func (f *fakeScreeningStore) SaveScreening(_ context.Context, rec schedule.ScreeningRecord) error {
	f.saved = append(f.saved, rec)
	return f.err
}

type fakeTicketStore struct {
	screeningID string
	saved       []*model.Ticket
	err         error
}

func (f *fakeTicketStore) SaveTickets(_ context.Context, screeningID string, tickets []*model.Ticket) error {
	f.screeningID = screeningID
	f.saved = append(f.saved, tickets...)
	return f.err
}

type fakePublisher struct {
	events []queue.TicketsIssuedEvent
	err    error
}

func (f *fakePublisher) PublishTicketsIssued(_ context.Context, event queue.TicketsIssuedEvent) error {
	f.events = append(f.events, event)
	return f.err
}

// jsonRequest builds an echo context around a JSON request body and returns it
// with the recorder capturing the response.
func jsonRequest(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	return got
}

func TestCreateWork(t *testing.T) {
	t.Parallel()

	t.Run("creates and persists", func(t *testing.T) {
		store := &fakeWorkStore{}
		h := NewScheduleHandler(schedule.NewRegistry(), store, nil)
		c, rec := jsonRequest(http.MethodPost, "/v1/works",
			`{"title":"El Viaje Fantastico","genre":"Aventura","runtime":"03:10"}`)

		if err := h.CreateWork(c); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["title"] != "El Viaje Fantastico" || body["runtime"] != "03:10" {
			t.Fatalf("unexpected body: %v", body)
		}
		if len(store.saved) != 1 || store.saved[0].Title != "El Viaje Fantastico" {
			t.Fatalf("expected work handed to the store, got %v", store.saved)
		}
	})

	t.Run("rejects malformed runtime", func(t *testing.T) {
		store := &fakeWorkStore{}
		h := NewScheduleHandler(schedule.NewRegistry(), store, nil)
		c, rec := jsonRequest(http.MethodPost, "/v1/works",
			`{"title":"Rota","runtime":"190 min"}`)

		if err := h.CreateWork(c); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if len(store.saved) != 0 {
			t.Fatalf("expected nothing persisted, got %v", store.saved)
		}
	})

	t.Run("rejects empty title", func(t *testing.T) {
		h := NewScheduleHandler(schedule.NewRegistry(), nil, nil)
		c, rec := jsonRequest(http.MethodPost, "/v1/works", `{"title":"  ","runtime":"01:30"}`)

		if err := h.CreateWork(c); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestCreateRoom(t *testing.T) {
	t.Parallel()

	reg := schedule.NewRegistry()
	h := NewScheduleHandler(reg, nil, nil)

	t.Run("creates a room", func(t *testing.T) {
		c, rec := jsonRequest(http.MethodPost, "/v1/rooms", `{"id":"Sala A","kind":"STANDARD"}`)
		if err := h.CreateRoom(c); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["capacity"] != float64(150) {
			t.Fatalf("expected capacity 150, got %v", body["capacity"])
		}
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		c, rec := jsonRequest(http.MethodPost, "/v1/rooms", `{"id":"Sala X","kind":"IMAX"}`)
		if err := h.CreateRoom(c); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects duplicate id", func(t *testing.T) {
		c, rec := jsonRequest(http.MethodPost, "/v1/rooms", `{"id":"Sala A","kind":"PREMIUM"}`)
		if err := h.CreateRoom(c); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})
}

func TestCreateScreening(t *testing.T) {
	t.Parallel()

	newHandler := func(t *testing.T) (*ScheduleHandler, *fakeScreeningStore) {
		t.Helper()
		reg := schedule.NewRegistry()
		if _, err := reg.AddWork("El Viaje Fantastico", "Aventura", "", "03:10"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := reg.AddRoom("Sala A", model.RoomStandard); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		store := &fakeScreeningStore{}
		return NewScheduleHandler(reg, nil, store), store
	}

	t.Run("creates and persists", func(t *testing.T) {
		h, store := newHandler(t)
		c, rec := jsonRequest(http.MethodPost, "/v1/screenings",
			`{"work_title":"El Viaje Fantastico","room_id":"Sala A","date":"2025-03-01","time":"16:30"}`)

		if err := h.CreateScreening(c); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		if body["id"] != "EVF:20250301:1630:SalaA" {
			t.Fatalf("unexpected screening id %v", body["id"])
		}
		if body["available_seats"] != float64(150) {
			t.Fatalf("expected 150 available seats, got %v", body["available_seats"])
		}
		if len(store.saved) != 1 || store.saved[0].ScreeningID != "EVF:20250301:1630:SalaA" {
			t.Fatalf("expected record handed to the store, got %v", store.saved)
		}
		if !store.saved[0].StartsAt.Equal(time.Date(2025, 3, 1, 16, 30, 0, 0, time.UTC)) {
			t.Fatalf("unexpected persisted start %v", store.saved[0].StartsAt)
		}
	})

	t.Run("conflict returns 409 with details", func(t *testing.T) {
		h, store := newHandler(t)
		c, _ := jsonRequest(http.MethodPost, "/v1/screenings",
			`{"work_title":"El Viaje Fantastico","room_id":"Sala A","date":"2025-03-01","time":"15:00"}`)
		if err := h.CreateScreening(c); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		c, rec := jsonRequest(http.MethodPost, "/v1/screenings",
			`{"work_title":"El Viaje Fantastico","room_id":"Sala A","date":"2025-03-01","time":"18:00"}`)
		if err := h.CreateScreening(c); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["conflicting_screening"] != "EVF:20250301:1500:SalaA" {
			t.Fatalf("unexpected conflicting screening %v", body["conflicting_screening"])
		}
		if body["room_id"] != "Sala A" {
			t.Fatalf("unexpected room %v", body["room_id"])
		}
		if len(store.saved) != 1 {
			t.Fatalf("expected only the first screening persisted, got %d", len(store.saved))
		}
	})

	t.Run("already persisted screening still returns 201", func(t *testing.T) {
		h, store := newHandler(t)
		store.err = fmt.Errorf("%w: EVF:20250301:1630:SalaA", repository.ErrScreeningExists)
		c, rec := jsonRequest(http.MethodPost, "/v1/screenings",
			`{"work_title":"El Viaje Fantastico","room_id":"Sala A","date":"2025-03-01","time":"16:30"}`)

		if err := h.CreateScreening(c); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 despite duplicate persistence, got %d", rec.Code)
		}
		if h.Registry.FindScreening("EVF:20250301:1630:SalaA") == nil {
			t.Fatalf("expected the screening to be scheduled in memory")
		}
	})

	t.Run("unknown work returns 404", func(t *testing.T) {
		h, _ := newHandler(t)
		c, rec := jsonRequest(http.MethodPost, "/v1/screenings",
			`{"work_title":"Nadie","room_id":"Sala A","date":"2025-03-01","time":"16:30"}`)
		if err := h.CreateScreening(c); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("bad time returns 400", func(t *testing.T) {
		h, _ := newHandler(t)
		c, rec := jsonRequest(http.MethodPost, "/v1/screenings",
			`{"work_title":"El Viaje Fantastico","room_id":"Sala A","date":"2025-03-01","time":"7pm"}`)
		if err := h.CreateScreening(c); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestListScreeningsForWork(t *testing.T) {
	t.Parallel()

	reg := schedule.NewRegistry()
	work, err := reg.AddWork("El Viaje Fantastico", "Aventura", "", "02:00")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	room, err := reg.AddRoom("Sala A", model.RoomStandard)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := reg.AddScreening(work, room, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := reg.AddScreening(work, room, time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	h := NewScheduleHandler(reg, nil, nil)

	t.Run("lists in insertion order", func(t *testing.T) {
		c, rec := jsonRequest(http.MethodGet, "/v1/works/:title/screenings", "")
		c.SetParamNames("title")
		c.SetParamValues("el viaje fantastico")
		if err := h.ListScreeningsForWork(c); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := decodeBody(t, rec)
		items, ok := body["items"].([]any)
		if !ok || len(items) != 2 {
			t.Fatalf("expected 2 items, got %v", body["items"])
		}
	})

	t.Run("unknown work returns 404", func(t *testing.T) {
		c, rec := jsonRequest(http.MethodGet, "/v1/works/:title/screenings", "")
		c.SetParamNames("title")
		c.SetParamValues("Nadie")
		if err := h.ListScreeningsForWork(c); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
