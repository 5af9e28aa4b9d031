package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cartelera/screenings/internal/model"
	"github.com/cartelera/screenings/internal/repository"
	"github.com/cartelera/screenings/internal/schedule"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ScheduleHandler exposes catalog intake, room definition and screening
// scheduling. The registry is the authority; the stores only mirror what it
// accepted.
type ScheduleHandler struct {
	Registry   *schedule.Registry
	Works      WorkStore
	Screenings ScreeningStore
}

// NewScheduleHandler constructs a ScheduleHandler. The registry is required;
// nil stores disable persistence (used by tests).
func NewScheduleHandler(reg *schedule.Registry, works WorkStore, screenings ScreeningStore) *ScheduleHandler {
	if reg == nil {
		panic("nil registry passed to NewScheduleHandler")
	}
	return &ScheduleHandler{Registry: reg, Works: works, Screenings: screenings}
}

// CreateWork handles POST /v1/works: catalog intake with a strict HH:mm
// runtime.
func (h *ScheduleHandler) CreateWork(c echo.Context) error {
	var body struct {
		Title    string `json:"title"`
		Genre    string `json:"genre"`
		Synopsis string `json:"synopsis"`
		Runtime  string `json:"runtime"` // strict HH:mm
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	work, err := h.Registry.AddWork(title, body.Genre, body.Synopsis, strings.TrimSpace(body.Runtime))
	if err != nil {
		if errors.Is(err, model.ErrInvalidRuntimeFormat) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "runtime must be HH:mm"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not add work"})
	}
	if h.Works != nil {
		if err := h.Works.SaveWork(c.Request().Context(), work); err != nil {
			log.Printf("work persistence failed for %q: %v", work.Title, err)
		}
	}
	return c.JSON(http.StatusCreated, workJSON(work))
}

// ListWorks handles GET /v1/works.
func (h *ScheduleHandler) ListWorks(c echo.Context) error {
	works := h.Registry.Works()
	items := make([]echo.Map, 0, len(works))
	for _, w := range works {
		items = append(items, workJSON(w))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CreateRoom handles POST /v1/rooms: defines a room layout by kind.
func (h *ScheduleHandler) CreateRoom(c echo.Context) error {
	var body struct {
		ID   string `json:"id"`
		Kind string `json:"kind"` // STANDARD, IRREGULAR or PREMIUM
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	id := strings.TrimSpace(body.ID)
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id is required"})
	}
	kind, err := model.ParseRoomKind(body.Kind)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "kind must be STANDARD, IRREGULAR or PREMIUM"})
	}
	room, err := h.Registry.AddRoom(id, kind)
	if err != nil {
		if errors.Is(err, schedule.ErrRoomExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room already defined"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not add room"})
	}
	return c.JSON(http.StatusCreated, roomJSON(room))
}

// ListRooms handles GET /v1/rooms.
func (h *ScheduleHandler) ListRooms(c echo.Context) error {
	rooms := h.Registry.Rooms()
	items := make([]echo.Map, 0, len(rooms))
	for _, r := range rooms {
		items = append(items, roomJSON(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CreateScreening handles POST /v1/screenings. The registry constructs the
// candidate and runs the conflict scan; a conflict comes back as 409 with the
// conflicting screening's identifier and occupied interval.
func (h *ScheduleHandler) CreateScreening(c echo.Context) error {
	var body struct {
		WorkTitle string `json:"work_title"`
		RoomID    string `json:"room_id"`
		Date      string `json:"date"` // 2006-01-02
		Time      string `json:"time"` // 15:04
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	work := h.Registry.FindWork(strings.TrimSpace(body.WorkTitle))
	if work == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "work not found"})
	}
	room := h.Registry.FindRoom(strings.TrimSpace(body.RoomID))
	if room == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	}
	start, err := parseStart(body.Date, body.Time)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	screening, err := h.Registry.AddScreening(work, room, start)
	if err != nil {
		var conflict *schedule.ScheduleConflictError
		if errors.As(err, &conflict) {
			return c.JSON(http.StatusConflict, echo.Map{
				"error":                 "screening overlaps an existing screening in this room",
				"room_id":               conflict.RoomID,
				"conflicting_screening": conflict.ConflictingID,
				"conflict_start":        conflict.ConflictStart.Format(time.RFC3339),
				"conflict_end":          conflict.ConflictEnd.Format(time.RFC3339),
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not add screening"})
	}
	if h.Screenings != nil {
		rec := schedule.ScreeningRecord{
			RoomID:      room.ID(),
			ScreeningID: screening.ID(),
			StartsAt:    screening.StartsAt(),
			WorkTitle:   work.Title,
		}
		if err := h.Screenings.SaveScreening(c.Request().Context(), rec); err != nil {
			if errors.Is(err, repository.ErrScreeningExists) {
				// Already mirrored, nothing to redo.
				log.Printf("screening %s already persisted", screening.ID())
			} else {
				log.Printf("screening persistence failed for %s: %v", screening.ID(), err)
			}
		}
	}
	return c.JSON(http.StatusCreated, screeningJSON(screening))
}

// ListScreeningsForWork handles GET /v1/works/:title/screenings. Screenings
// come back in registry insertion order, not time order.
func (h *ScheduleHandler) ListScreeningsForWork(c echo.Context) error {
	work := h.Registry.FindWork(c.Param("title"))
	if work == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "work not found"})
	}
	screenings := h.Registry.ScreeningsFor(work)
	items := make([]echo.Map, 0, len(screenings))
	for _, s := range screenings {
		items = append(items, screeningJSON(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func parseStart(dateText, timeText string) (time.Time, error) {
	date, err := time.Parse(dateLayout, strings.TrimSpace(dateText))
	if err != nil {
		return time.Time{}, errors.New("date must be YYYY-MM-DD")
	}
	clock, err := time.Parse(timeLayout, strings.TrimSpace(timeText))
	if err != nil {
		return time.Time{}, errors.New("time must be HH:mm")
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, time.UTC), nil
}

func workJSON(w *model.ScreenableWork) echo.Map {
	return echo.Map{
		"title":    w.Title,
		"genre":    w.Genre,
		"synopsis": w.Synopsis,
		"runtime":  w.RuntimeText(),
	}
}

func roomJSON(r *model.RoomLayout) echo.Map {
	return echo.Map{
		"id":       r.ID(),
		"kind":     string(r.Kind()),
		"capacity": r.Capacity(),
	}
}

func screeningJSON(s *model.Screening) echo.Map {
	start, end := s.OccupiedInterval()
	return echo.Map{
		"id":              s.ID(),
		"work_title":      s.Work().Title,
		"room_id":         s.Room().ID(),
		"starts_at":       start.Format(time.RFC3339),
		"occupied_until":  end.Format(time.RFC3339),
		"available_seats": s.AvailableSeatCount(),
	}
}
