package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/iliyamo/train-seat-reservation/internal/model"
	"github.com/iliyamo/train-seat-reservation/internal/utils"
)

// UserDirectory owns the user records and their ticket lists. Like the
// train catalog it lives for the whole process, is loaded once from its
// RecordStore and rewrites the whole collection on every change. A failed
// write leaves the in-memory directory untouched.
type UserDirectory struct {
	mu         sync.RWMutex
	users      []model.User
	store      RecordStore[model.User]
	bcryptCost int
}

// NewUserDirectory returns an empty directory bound to store. bcryptCost
// is used when registering users.
func NewUserDirectory(store RecordStore[model.User], bcryptCost int) *UserDirectory {
	if store == nil {
		panic("nil store passed to NewUserDirectory")
	}
	return &UserDirectory{store: store, bcryptCost: bcryptCost}
}

// Load replaces the in-memory directory with the persisted collection.
func (d *UserDirectory) Load(ctx context.Context) error {
	users, err := d.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading users: %w", err)
	}
	for i := range users {
		if users[i].Tickets == nil {
			users[i].Tickets = []model.Ticket{}
		}
	}
	d.mu.Lock()
	d.users = users
	d.mu.Unlock()
	return nil
}

// Register creates a user with a bcrypt-hashed password.
func (d *UserDirectory) Register(ctx context.Context, userName, password, role string) (model.User, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" || password == "" {
		return model.User{}, fmt.Errorf("%w: user name and password are required", ErrInvalidCredentials)
	}
	if role != model.RoleAdmin {
		role = model.RoleCustomer
	}
	hash, err := utils.HashPassword(password, d.bcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}
	u := model.User{UserName: userName, HashedPassword: hash, Role: role, Tickets: []model.Ticket{}}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.indexOf(userName) >= 0 {
		return model.User{}, ErrUserExists
	}
	next := make([]model.User, len(d.users), len(d.users)+1)
	copy(next, d.users)
	next = append(next, u)
	if err := d.store.SaveAll(ctx, next); err != nil {
		return model.User{}, fmt.Errorf("%w: saving users: %w", ErrPersistenceFailed, err)
	}
	d.users = next
	return u.Clone(), nil
}

// Verify checks a user name and password and returns the user id. Unknown
// users and wrong passwords both yield ErrInvalidCredentials.
func (d *UserDirectory) Verify(userName, password string) (string, error) {
	u, ok := d.Find(strings.TrimSpace(userName))
	if !ok {
		return "", ErrInvalidCredentials
	}
	if !utils.VerifyPassword(u.HashedPassword, password) {
		return "", ErrInvalidCredentials
	}
	return u.UserName, nil
}

// Find returns a copy of the user with the given name.
func (d *UserDirectory) Find(userName string) (model.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i := d.indexOf(userName); i >= 0 {
		return d.users[i].Clone(), true
	}
	return model.User{}, false
}

// AddTicket appends a ticket to the user's list and persists.
func (d *UserDirectory) AddTicket(ctx context.Context, userName string, ticket model.Ticket) error {
	return d.update(ctx, userName, func(u *model.User) error {
		u.Tickets = append(u.Tickets, ticket)
		return nil
	})
}

// RemoveTicket detaches a ticket from the user's list, persists, and
// returns the removed ticket.
func (d *UserDirectory) RemoveTicket(ctx context.Context, userName, ticketID string) (model.Ticket, error) {
	var removed model.Ticket
	err := d.update(ctx, userName, func(u *model.User) error {
		i := u.TicketIndex(ticketID)
		if i < 0 {
			return ErrTicketNotFound
		}
		removed = u.Tickets[i]
		u.Tickets = append(u.Tickets[:i], u.Tickets[i+1:]...)
		return nil
	})
	if err != nil {
		return model.Ticket{}, err
	}
	return removed, nil
}

// update applies fn to a copy of the user and commits it only when the
// whole collection was written successfully.
func (d *UserDirectory) update(ctx context.Context, userName string, fn func(u *model.User) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.indexOf(userName)
	if i < 0 {
		return ErrUserNotFound
	}
	u := d.users[i].Clone()
	if err := fn(&u); err != nil {
		return err
	}
	next := make([]model.User, len(d.users))
	copy(next, d.users)
	next[i] = u
	if err := d.store.SaveAll(ctx, next); err != nil {
		return fmt.Errorf("%w: saving users: %w", ErrPersistenceFailed, err)
	}
	d.users = next
	return nil
}

// indexOf must be called with d.mu held.
func (d *UserDirectory) indexOf(userName string) int {
	for i, u := range d.users {
		if u.UserName == userName {
			return i
		}
	}
	return -1
}
