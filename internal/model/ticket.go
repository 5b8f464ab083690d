package model

import "time"

// Ticket records one booked seat. It belongs to exactly one user and
// refers to its train by identifier only, so reloading the catalog never
// leaves a ticket pointing at stale data. Cancelling the ticket must
// release the seat it names.
//
// Fields:
//  TicketID    – random UUID, unique across all users.
//  TrainID     – identifier of the booked train.
//  Row, Seat   – coordinate in the train's seat map.
//  Source      – boarding station code.
//  Destination – alighting station code.
//  BookedAt    – when the booking was made (UTC).
type Ticket struct {
	TicketID    string    `json:"ticketId"`
	TrainID     string    `json:"trainId"`
	Row         int       `json:"row"`
	Seat        int       `json:"seat"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	BookedAt    time.Time `json:"bookedAt,omitzero"`
}
