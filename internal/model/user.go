package model

// User is an account as stored in users.json. HashedPassword is a bcrypt
// hash; the reservation code only ever verifies it. Tickets keeps booking
// order.
//
// Fields:
//  UserName       – unique login name.
//  HashedPassword – bcrypt hash of the password.
//  Role           – CUSTOMER or ADMIN; empty means CUSTOMER.
//  Tickets        – tickets owned by this user.
type User struct {
	UserName       string   `json:"userName"`
	HashedPassword string   `json:"hashedPassword"`
	Role           string   `json:"role,omitempty"`
	Tickets        []Ticket `json:"tickets"`
}

const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// EffectiveRole returns the role, defaulting to CUSTOMER.
func (u User) EffectiveRole() string {
	if u.Role == "" {
		return RoleCustomer
	}
	return u.Role
}

// TicketIndex returns the position of ticketID in the user's list or -1.
func (u User) TicketIndex(ticketID string) int {
	for i, t := range u.Tickets {
		if t.TicketID == ticketID {
			return i
		}
	}
	return -1
}

// Clone returns a copy whose ticket slice can be modified independently.
func (u User) Clone() User {
	out := u
	if u.Tickets != nil {
		out.Tickets = make([]Ticket, len(u.Tickets))
		copy(out.Tickets, u.Tickets)
	}
	return out
}
