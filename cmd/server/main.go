// Entry point for the screening scheduler service.
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/cartelera/screenings/internal/config"
	"github.com/cartelera/screenings/internal/database"
	"github.com/cartelera/screenings/internal/handler"
	"github.com/cartelera/screenings/internal/middleware"
	"github.com/cartelera/screenings/internal/model"
	"github.com/cartelera/screenings/internal/queue"
	"github.com/cartelera/screenings/internal/repository"
	"github.com/cartelera/screenings/internal/router"
	"github.com/cartelera/screenings/internal/schedule"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("connect to db: %v", err)
	}
	defer db.Close()

	startupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repository.EnsureSchema(startupCtx, db); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	workRepo := repository.NewWorkRepo(db)
	screeningRepo := repository.NewScreeningRepo(db)
	ticketRepo := repository.NewTicketRepo(db)

	reg := schedule.NewRegistry(schedule.WithPricer(model.FlatPrice(cfg.BaseTicketPrice)))
	seedRooms(reg)
	loadCatalog(startupCtx, reg, workRepo)
	replayScreenings(startupCtx, reg, screeningRepo)

	// Receipt consumer runs for the lifetime of the process, reconnecting on
	// broker failures.
	go func() {
		if err := queue.StartReceiptConsumer(); err != nil {
			log.Printf("receipt consumer stopped: %v", err)
		}
	}()

	limiter := middleware.NewFixedWindow(config.LoadRateLimitConfig(), config.NewRedisClient())

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterSchedule(e, handler.NewScheduleHandler(reg, workRepo, screeningRepo))
	router.RegisterBooking(e, handler.NewBookingHandler(reg, ticketRepo, queue.NewPublisher()), limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// seedRooms defines the venue's physical rooms. Layouts are deployment
// configuration, not persisted data; additional rooms can be defined at
// runtime through POST /v1/rooms.
func seedRooms(reg *schedule.Registry) {
	for _, def := range []struct {
		id   string
		kind model.RoomKind
	}{
		{"Sala A", model.RoomStandard},
		{"Sala B", model.RoomIrregular},
		{"VIP 1", model.RoomPremium},
	} {
		if _, err := reg.AddRoom(def.id, def.kind); err != nil {
			log.Printf("seed room %s: %v", def.id, err)
		}
	}
}

// loadCatalog feeds persisted works into the registry at startup.
func loadCatalog(ctx context.Context, reg *schedule.Registry, repo *repository.WorkRepo) {
	rows, err := repo.LoadAll(ctx)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}
	for _, row := range rows {
		if _, err := reg.AddWork(row.Title, row.Genre, row.Synopsis, row.RuntimeText); err != nil {
			log.Printf("skipping persisted work %q: %v", row.Title, err)
		}
	}
	log.Printf("catalog loaded: %d works", len(rows))
}

// replayScreenings rebuilds the in-memory schedule from the persisted
// snapshot, in the order the rows were appended. Rows referencing unknown
// rooms or works are skipped with a warning rather than aborting startup.
func replayScreenings(ctx context.Context, reg *schedule.Registry, repo *repository.ScreeningRepo) {
	recs, err := repo.LoadAll(ctx)
	if err != nil {
		log.Fatalf("load screenings: %v", err)
	}
	restored := 0
	for _, rec := range recs {
		work := reg.FindWork(rec.WorkTitle)
		room := reg.FindRoom(rec.RoomID)
		if work == nil || room == nil {
			log.Printf("skipping persisted screening %s: unknown work or room", rec.ScreeningID)
			continue
		}
		if _, err := reg.AddScreening(work, room, rec.StartsAt); err != nil {
			log.Printf("skipping persisted screening %s: %v", rec.ScreeningID, err)
			continue
		}
		restored++
	}
	log.Printf("schedule restored: %d screenings", restored)
}
