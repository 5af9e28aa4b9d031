// Package queue defines the message payloads exchanged with the notification
// collaborator and the publisher/consumer pair that moves them over RabbitMQ.
package queue

// TicketsIssuedEvent is published after an atomic booking succeeds. It carries
// enough information for downstream consumers to write receipts or feed
// reporting without consulting the registry.
type TicketsIssuedEvent struct {
	ScreeningID    string   `json:"screening_id"`
	RoomID         string   `json:"room_id"`
	WorkTitle      string   `json:"work_title"`
	StartsAt       string   `json:"starts_at"`
	PatronCategory string   `json:"patron_category"`
	Seats          []string `json:"seats"`
	TicketKeys     []string `json:"ticket_keys"`
	Total          float64  `json:"total"`
	IssuedAt       string   `json:"issued_at"`
}
