// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names. Both queues are durable.
const (
	TicketBookedQueue    = "ticket.booked"
	TicketCancelledQueue = "ticket.cancelled"
)

// TicketBookedEvent is published after a booking has been persisted for
// both the train and the user. It carries enough detail for consumers to
// log or notify without reading the data files.
type TicketBookedEvent struct {
	TicketID    string `json:"ticket_id"`
	UserName    string `json:"user_name"`
	TrainID     string `json:"train_id"`
	Row         int    `json:"row"`
	Seat        int    `json:"seat"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	BookedAt    string `json:"booked_at"`
}

// TicketCancelledEvent is published after a ticket has been removed. The
// two flags report data drift found while cancelling: the train no longer
// existed, or its seat was already free.
type TicketCancelledEvent struct {
	TicketID     string `json:"ticket_id"`
	UserName     string `json:"user_name"`
	TrainID      string `json:"train_id"`
	Row          int    `json:"row"`
	Seat         int    `json:"seat"`
	TrainMissing bool   `json:"train_missing"`
	SeatWasFree  bool   `json:"seat_was_free"`
	CancelledAt  string `json:"cancelled_at"`
}
