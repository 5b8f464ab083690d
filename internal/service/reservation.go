package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/train-seat-reservation/internal/metrics"
	"github.com/iliyamo/train-seat-reservation/internal/model"
	q "github.com/iliyamo/train-seat-reservation/internal/queue"
	"github.com/iliyamo/train-seat-reservation/internal/repository"
)

// Catalog is the part of repository.TrainCatalog the manager relies on.
type Catalog interface {
	Find(trainID string) (model.Train, bool)
	Search(source, destination string) []model.Train
	Upsert(ctx context.Context, train model.Train) error
}

// Directory is the part of repository.UserDirectory the manager relies on.
type Directory interface {
	Find(userName string) (model.User, bool)
	AddTicket(ctx context.Context, userName string, ticket model.Ticket) error
	RemoveTicket(ctx context.Context, userName, ticketID string) (model.Ticket, error)
}

// CancelResult describes a successful cancellation. TrainMissing and
// SeatWasFree flag data drift: the ticket was still removed, but there
// was no booked seat left to release.
type CancelResult struct {
	Ticket       model.Ticket
	TrainMissing bool
	SeatWasFree  bool
}

// ReservationManager books and cancels seats while keeping every booked
// seat paired with exactly one ticket.
//
// Locking: one mutex per train id and one per user name. Whenever both
// are needed the train lock is taken first, in Book and in Cancel alike,
// so opposite operations on the same (train, user) pair cannot deadlock.
// The catalog and directory locks are always innermost.
type ReservationManager struct {
	catalog    Catalog
	users      Directory
	trainLocks *KeyedLocker
	userLocks  *KeyedLocker
	publisher  EventPublisher
	metrics    *metrics.Metrics
	newID      func() string
	now        func() time.Time
}

// Option configures a ReservationManager.
type Option func(*ReservationManager)

// WithPublisher sets the ticket event publisher.
func WithPublisher(p EventPublisher) Option {
	return func(m *ReservationManager) {
		if p != nil {
			m.publisher = p
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *ReservationManager) { m.metrics = mt }
}

// WithIDGenerator replaces the UUID ticket id generator.
func WithIDGenerator(fn func() string) Option {
	return func(m *ReservationManager) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// WithClock replaces time.Now.
func WithClock(fn func() time.Time) Option {
	return func(m *ReservationManager) {
		if fn != nil {
			m.now = fn
		}
	}
}

// NewReservationManager wires the manager to its catalog and directory.
func NewReservationManager(catalog Catalog, users Directory, opts ...Option) *ReservationManager {
	if catalog == nil || users == nil {
		panic("nil dependency passed to NewReservationManager")
	}
	m := &ReservationManager{
		catalog:    catalog,
		users:      users,
		trainLocks: NewKeyedLocker(),
		userLocks:  NewKeyedLocker(),
		publisher:  NoopPublisher{},
		newID:      uuid.NewString,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Search returns the trains serving source -> destination in catalog order.
func (m *ReservationManager) Search(source, destination string) []model.Train {
	return m.catalog.Search(source, destination)
}

// Train returns a copy of one train, looked up ignoring case.
func (m *ReservationManager) Train(trainID string) (model.Train, bool) {
	return m.catalog.Find(trainID)
}

// UpsertTrain adds or replaces a train under its train lock, so an
// administrative update never interleaves with a booking on that train.
func (m *ReservationManager) UpsertTrain(ctx context.Context, train model.Train) error {
	unlock := m.trainLocks.Lock(trainKey(train.TrainID))
	defer unlock()
	if err := m.catalog.Upsert(ctx, train); err != nil {
		return err
	}
	m.metrics.SetSeatsAvailable(strings.TrimSpace(train.TrainID), train.Seats.AvailableCount())
	return nil
}

// Tickets returns the tickets owned by userID in booking order.
func (m *ReservationManager) Tickets(_ context.Context, userID string) ([]model.Ticket, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	u, ok := m.users.Find(userID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", repository.ErrUserNotFound, userID)
	}
	return u.Tickets, nil
}

// Book reserves the seat at (row, col) on trainID for userID and returns
// the new ticket. Validation failures leave every record untouched. If a
// write fails, the seat is rolled back to available before the error,
// which matches repository.ErrPersistenceFailed, is returned.
func (m *ReservationManager) Book(ctx context.Context, userID, trainID string, row, col int, source, destination string) (model.Ticket, error) {
	start := m.now()
	ticket, available, err := m.book(ctx, userID, trainID, row, col, source, destination)
	m.metrics.ObserveBooking(resultLabel(err), m.now().Sub(start))
	if err != nil {
		return model.Ticket{}, err
	}
	m.metrics.SetSeatsAvailable(ticket.TrainID, available)

	event := q.TicketBookedEvent{
		TicketID:    ticket.TicketID,
		UserName:    userID,
		TrainID:     ticket.TrainID,
		Row:         ticket.Row,
		Seat:        ticket.Seat,
		Source:      ticket.Source,
		Destination: ticket.Destination,
		BookedAt:    ticket.BookedAt.Format(time.RFC3339),
	}
	if err := m.publisher.PublishTicketBooked(ctx, event); err != nil {
		m.metrics.IncEventPublishFailure()
		log.Printf("reservation: publish ticket.booked %s failed: %v", ticket.TicketID, err)
	}
	return ticket, nil
}

func (m *ReservationManager) book(ctx context.Context, userID, trainID string, row, col int, source, destination string) (model.Ticket, int, error) {
	if userID == "" {
		return model.Ticket{}, 0, ErrNotAuthenticated
	}

	unlockTrain := m.trainLocks.Lock(trainKey(trainID))
	defer unlockTrain()
	unlockUser := m.userLocks.Lock(userID)
	defer unlockUser()

	train, ok := m.catalog.Find(trainID)
	if !ok {
		return model.Ticket{}, 0, fmt.Errorf("%w: %s", repository.ErrTrainNotFound, trainID)
	}
	if _, ok := m.users.Find(userID); !ok {
		return model.Ticket{}, 0, fmt.Errorf("%w: %s", repository.ErrUserNotFound, userID)
	}
	if !train.Serves(source, destination) {
		return model.Ticket{}, 0, fmt.Errorf("%w: %s -> %s on train %s", ErrInvalidRoute, source, destination, train.TrainID)
	}

	if err := train.Seats.Book(row, col); err != nil {
		return model.Ticket{}, 0, fmt.Errorf("train %s row %d seat %d: %w", train.TrainID, row, col, err)
	}
	if err := m.catalog.Upsert(ctx, train); err != nil {
		// The catalog kept its previous state; undo the change on our copy too.
		_ = train.Seats.Release(row, col)
		m.metrics.IncRollback("train_save")
		return model.Ticket{}, 0, asPersistenceFailure(err)
	}

	ticket := model.Ticket{
		TicketID:    m.newID(),
		TrainID:     train.TrainID,
		Row:         row,
		Seat:        col,
		Source:      model.NormalizeStation(source),
		Destination: model.NormalizeStation(destination),
		BookedAt:    m.now().UTC(),
	}
	if err := m.users.AddTicket(ctx, userID, ticket); err != nil {
		m.metrics.IncRollback("user_save")
		_ = train.Seats.Release(row, col)
		// The rollback write must run even if the caller's context is done.
		if rerr := m.catalog.Upsert(context.WithoutCancel(ctx), train); rerr != nil {
			log.Printf("reservation: rollback of train %s row %d seat %d failed: %v", train.TrainID, row, col, rerr)
			return model.Ticket{}, 0, errors.Join(asPersistenceFailure(err), rerr)
		}
		return model.Ticket{}, 0, asPersistenceFailure(err)
	}
	return ticket, train.Seats.AvailableCount(), nil
}

// Cancel removes ticketID from userID's tickets and releases its seat.
//
// Drift is tolerated: a ticket whose train has been removed, or whose seat
// is already free, is still removed and reported through the result flags.
// If the train is saved but the user write then fails, the error matches
// repository.ErrPersistenceFailed and the ticket stays with the user while
// the seat stays released. A seat that is briefly bookable twice is
// preferred over a booking that can never be cancelled.
func (m *ReservationManager) Cancel(ctx context.Context, userID, ticketID string) (CancelResult, error) {
	res, err := m.cancel(ctx, userID, ticketID)
	m.metrics.IncCancellation(resultLabel(err))
	if err != nil {
		return CancelResult{}, err
	}

	event := q.TicketCancelledEvent{
		TicketID:     res.Ticket.TicketID,
		UserName:     userID,
		TrainID:      res.Ticket.TrainID,
		Row:          res.Ticket.Row,
		Seat:         res.Ticket.Seat,
		TrainMissing: res.TrainMissing,
		SeatWasFree:  res.SeatWasFree,
		CancelledAt:  m.now().UTC().Format(time.RFC3339),
	}
	if err := m.publisher.PublishTicketCancelled(ctx, event); err != nil {
		m.metrics.IncEventPublishFailure()
		log.Printf("reservation: publish ticket.cancelled %s failed: %v", res.Ticket.TicketID, err)
	}
	return res, nil
}

func (m *ReservationManager) cancel(ctx context.Context, userID, ticketID string) (CancelResult, error) {
	if userID == "" {
		return CancelResult{}, ErrNotAuthenticated
	}

	// Read the ticket first to learn which train lock to take. Tickets are
	// immutable, so the train id cannot change; the ticket itself may be
	// gone by the time the locks are held, which is checked again below.
	user, ok := m.users.Find(userID)
	if !ok {
		return CancelResult{}, fmt.Errorf("%w: %s", repository.ErrUserNotFound, userID)
	}
	i := user.TicketIndex(ticketID)
	if i < 0 {
		return CancelResult{}, fmt.Errorf("%w: %s", repository.ErrTicketNotFound, ticketID)
	}

	unlockTrain := m.trainLocks.Lock(trainKey(user.Tickets[i].TrainID))
	defer unlockTrain()
	unlockUser := m.userLocks.Lock(userID)
	defer unlockUser()

	user, ok = m.users.Find(userID)
	if !ok {
		return CancelResult{}, fmt.Errorf("%w: %s", repository.ErrUserNotFound, userID)
	}
	if i = user.TicketIndex(ticketID); i < 0 {
		return CancelResult{}, fmt.Errorf("%w: %s", repository.ErrTicketNotFound, ticketID)
	}
	res := CancelResult{Ticket: user.Tickets[i]}
	ticket := res.Ticket

	train, ok := m.catalog.Find(ticket.TrainID)
	switch {
	case !ok:
		res.TrainMissing = true
		log.Printf("reservation: ticket %s refers to missing train %s; removing ticket only", ticket.TicketID, ticket.TrainID)
	default:
		err := train.Seats.Release(ticket.Row, ticket.Seat)
		switch {
		case err == nil:
			if err := m.catalog.Upsert(ctx, train); err != nil {
				return CancelResult{}, asPersistenceFailure(err)
			}
		case errors.Is(err, model.ErrNotBooked), errors.Is(err, model.ErrOutOfRange):
			res.SeatWasFree = true
			log.Printf("reservation: ticket %s seat %d/%d on train %s was not booked (%v); removing ticket only",
				ticket.TicketID, ticket.Row, ticket.Seat, ticket.TrainID, err)
		default:
			return CancelResult{}, err
		}
	}

	if _, err := m.users.RemoveTicket(ctx, userID, ticketID); err != nil {
		if !res.TrainMissing && !res.SeatWasFree {
			log.Printf("reservation: seat %d/%d on train %s released but ticket %s could not be removed: %v",
				ticket.Row, ticket.Seat, ticket.TrainID, ticket.TicketID, err)
		}
		return CancelResult{}, asPersistenceFailure(err)
	}
	if !res.TrainMissing {
		m.metrics.SetSeatsAvailable(train.TrainID, train.Seats.AvailableCount())
	}
	return res, nil
}

// asPersistenceFailure makes sure a failed write matches
// repository.ErrPersistenceFailed.
func asPersistenceFailure(err error) error {
	if errors.Is(err, repository.ErrPersistenceFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", repository.ErrPersistenceFailed, err)
}

func trainKey(trainID string) string {
	return model.NormalizeTrainID(trainID)
}

// resultLabel maps an error to a low-cardinality metrics label.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNotAuthenticated):
		return "not_authenticated"
	case errors.Is(err, repository.ErrTrainNotFound):
		return "train_not_found"
	case errors.Is(err, repository.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, repository.ErrTicketNotFound):
		return "ticket_not_found"
	case errors.Is(err, ErrInvalidRoute):
		return "invalid_route"
	case errors.Is(err, model.ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, model.ErrAlreadyBooked):
		return "already_booked"
	case errors.Is(err, repository.ErrPersistenceFailed):
		return "persistence_failed"
	default:
		return "error"
	}
}
