// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/cartelera/screenings/internal/handler"
)

// RegisterRoutes registers routes that need no handler state. Currently it
// exposes only a health check used by load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterSchedule registers the catalog and scheduling endpoints under /v1.
func RegisterSchedule(e *echo.Echo, h *handler.ScheduleHandler) {
	g := e.Group("/v1")
	g.POST("/works", h.CreateWork)
	g.GET("/works", h.ListWorks)
	g.GET("/works/:title/screenings", h.ListScreeningsForWork)
	g.POST("/rooms", h.CreateRoom)
	g.GET("/rooms", h.ListRooms)
	g.POST("/screenings", h.CreateScreening)
}

// RegisterBooking registers the seat availability and booking endpoints.
// The limiter, when non-nil, is applied to this group only: booking is the
// endpoint exposed to bursty clients.
func RegisterBooking(e *echo.Echo, h *handler.BookingHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/screenings/:id")
	if limiter != nil {
		g.Use(limiter)
	}
	g.GET("/seats", h.GetSeats)
	g.POST("/tickets", h.BookSeats)
}
