package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// TrainCatalog is the long-lived set of trains. It is loaded once from its
// RecordStore and every mutation rewrites the whole collection before
// returning. Trains handed out by Find, List and Search are deep copies;
// to change a train, fetch it, mutate the copy and pass it back to Upsert.
//
// The catalog lock only guards the slice itself. Callers that run a
// read-modify-write on one train (booking, cancelling) serialise on a
// per-train lock of their own.
type TrainCatalog struct {
	mu     sync.RWMutex
	trains []model.Train
	store  RecordStore[model.Train]
}

// NewTrainCatalog returns an empty catalog bound to store. Call Load to
// read the persisted trains.
func NewTrainCatalog(store RecordStore[model.Train]) *TrainCatalog {
	if store == nil {
		panic("nil store passed to NewTrainCatalog")
	}
	return &TrainCatalog{store: store}
}

// Load replaces the in-memory catalog with the persisted collection. A
// persisted train that fails validation aborts the load and leaves the
// catalog as it was.
func (c *TrainCatalog) Load(ctx context.Context) error {
	trains, err := c.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading trains: %w", err)
	}
	loaded := make([]model.Train, 0, len(trains))
	for _, t := range trains {
		t = t.Normalized()
		if err := t.Validate(); err != nil {
			return fmt.Errorf("loading trains: %w: train %q: %v", ErrInvalidTrain, t.TrainID, err)
		}
		loaded = append(loaded, t)
	}
	c.mu.Lock()
	c.trains = loaded
	c.mu.Unlock()
	return nil
}

// Find looks a train up by identifier, ignoring case.
func (c *TrainCatalog) Find(trainID string) (model.Train, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(trainID); i >= 0 {
		return c.trains[i].Clone(), true
	}
	return model.Train{}, false
}

// List returns every train in insertion order.
func (c *TrainCatalog) List() []model.Train {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Train, 0, len(c.trains))
	for _, t := range c.trains {
		out = append(out, t.Clone())
	}
	return out
}

// Upsert replaces the train with the same identifier, or appends it when
// none exists, then persists the whole catalog. A replacement must keep
// the existing seat layout. If the write fails the catalog is left as it
// was and the error matches ErrPersistenceFailed.
func (c *TrainCatalog) Upsert(ctx context.Context, train model.Train) error {
	if err := train.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTrain, err)
	}
	train = train.Normalized()

	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]model.Train, len(c.trains), len(c.trains)+1)
	copy(next, c.trains)
	if i := c.indexOf(train.TrainID); i >= 0 {
		if !next[i].Seats.SameLayout(train.Seats) {
			return fmt.Errorf("%w: seat layout of train %s cannot change", ErrInvalidTrain, next[i].TrainID)
		}
		next[i] = train
	} else {
		next = append(next, train)
	}

	if err := c.store.SaveAll(ctx, next); err != nil {
		return fmt.Errorf("%w: saving trains: %w", ErrPersistenceFailed, err)
	}
	c.trains = next
	return nil
}

// SeedIfMissing adds every train whose identifier is not in the catalog
// yet and persists once. Existing trains, and their booked seats, are left
// untouched. It returns how many trains were added.
func (c *TrainCatalog) SeedIfMissing(ctx context.Context, trains []model.Train) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]model.Train, len(c.trains), len(c.trains)+len(trains))
	copy(next, c.trains)
	added := 0
	for _, t := range trains {
		if err := t.Validate(); err != nil {
			return 0, fmt.Errorf("%w: seed train %q: %v", ErrInvalidTrain, t.TrainID, err)
		}
		t = t.Normalized()
		if indexOfTrain(next, t.TrainID) >= 0 {
			continue
		}
		next = append(next, t)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	if err := c.store.SaveAll(ctx, next); err != nil {
		return 0, fmt.Errorf("%w: saving trains: %w", ErrPersistenceFailed, err)
	}
	c.trains = next
	return added, nil
}

// indexOf must be called with c.mu held.
func (c *TrainCatalog) indexOf(trainID string) int {
	return indexOfTrain(c.trains, trainID)
}

func indexOfTrain(trains []model.Train, trainID string) int {
	for i, t := range trains {
		if model.SameTrainID(t.TrainID, trainID) {
			return i
		}
	}
	return -1
}
