package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

var errWrite = errors.New("write failed")

type failingStore[T any] struct {
	*MemoryStore[T]
	mu   sync.Mutex
	fail bool
}

func (s *failingStore[T]) setFail(v bool) {
	s.mu.Lock()
	s.fail = v
	s.mu.Unlock()
}

func (s *failingStore[T]) SaveAll(ctx context.Context, records []T) error {
	s.mu.Lock()
	fail := s.fail
	s.mu.Unlock()
	if fail {
		return errWrite
	}
	return s.MemoryStore.SaveAll(ctx, records)
}

func newCatalog(t *testing.T, trains ...model.Train) (*TrainCatalog, *failingStore[model.Train]) {
	t.Helper()
	store := &failingStore[model.Train]{MemoryStore: NewMemoryStore[model.Train]()}
	c := NewTrainCatalog(store)
	for _, tr := range trains {
		if err := c.Upsert(context.Background(), tr); err != nil {
			t.Fatalf("upsert %s: %v", tr.TrainID, err)
		}
	}
	return c, store
}

func ids(trains []model.Train) []string {
	out := make([]string, 0, len(trains))
	for _, t := range trains {
		out = append(out, t.TrainID)
	}
	return out
}

func TestSearchMatchesStationOrder(t *testing.T) {
	network := []model.Train{
		{TrainID: "A", Stations: []string{"delhi", "jaipur", "ajmer"}},
		{TrainID: "B", Stations: []string{"ajmer", "jaipur", "delhi"}},
		{TrainID: "C", Stations: []string{"Jaipur", "Delhi", "Agra", "Ajmer"}},
		{TrainID: "D", Stations: []string{"mumbai", "pune"}},
	}
	c, _ := newCatalog(t, network...)
	stations := []string{"delhi", "jaipur", "ajmer", "agra", "mumbai", "pune", "kota"}

	for _, s := range stations {
		for _, d := range stations {
			var want []string
			for _, tr := range network {
				si, di := -1, -1
				for i, st := range tr.Stations {
					if model.NormalizeStation(st) == s {
						si = i
					}
					if model.NormalizeStation(st) == d {
						di = i
					}
				}
				if si >= 0 && di >= 0 && si < di {
					want = append(want, tr.TrainID)
				}
			}
			got := ids(c.Search(s, d))
			if len(got) != len(want) {
				t.Fatalf("search(%s,%s) = %v, want %v", s, d, got, want)
			}
			for i := range got {
				if got[i] != want[i] {
					t.Fatalf("search(%s,%s) = %v, want %v (insertion order)", s, d, got, want)
				}
			}
		}
	}

	if got := ids(c.Search("DELHI", " Ajmer ")); len(got) != 2 || got[0] != "A" || got[1] != "C" {
		t.Fatalf("case-insensitive search = %v", got)
	}
}

func TestSearchReturnsCopies(t *testing.T) {
	c, _ := newCatalog(t, model.Train{TrainID: "A", Stations: []string{"x", "y"}, Seats: model.NewSeatMap(1, 1)})
	res := c.Search("x", "y")
	if err := res[0].Seats.Book(0, 0); err != nil {
		t.Fatal(err)
	}
	tr, _ := c.Find("a")
	if tr.Seats.AvailableCount() != 1 {
		t.Fatal("search result aliases catalog state")
	}
}

func TestUpsertReplacesOrAppends(t *testing.T) {
	c, store := newCatalog(t,
		model.Train{TrainID: "A", Stations: []string{"x", "y"}, Seats: model.NewSeatMap(1, 2)},
		model.Train{TrainID: "B", Stations: []string{"y", "z"}},
	)
	ctx := context.Background()

	tr, ok := c.Find("a")
	if !ok {
		t.Fatal("find ignoring case failed")
	}
	if err := tr.Seats.Book(0, 1); err != nil {
		t.Fatal(err)
	}
	tr.TrainID = "a"
	if err := c.Upsert(ctx, tr); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got := ids(c.List()); len(got) != 2 || got[0] != "a" || got[1] != "B" {
		t.Fatalf("list after replace = %v", got)
	}

	persisted, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if persisted[0].Seats[0][1] != model.SeatBooked {
		t.Fatal("replacement not persisted")
	}

	tr.Seats = model.NewSeatMap(3, 3)
	if err := c.Upsert(ctx, tr); !errors.Is(err, ErrInvalidTrain) {
		t.Fatalf("layout change err = %v", err)
	}
	if err := c.Upsert(ctx, model.Train{TrainID: "C", Stations: []string{"solo"}}); !errors.Is(err, ErrInvalidTrain) {
		t.Fatalf("one-station train err = %v", err)
	}
}

func TestUpsertFailureLeavesCatalogUnchanged(t *testing.T) {
	c, store := newCatalog(t, model.Train{TrainID: "A", Stations: []string{"x", "y"}, Seats: model.NewSeatMap(1, 1)})
	store.setFail(true)

	tr, _ := c.Find("A")
	_ = tr.Seats.Book(0, 0)
	err := c.Upsert(context.Background(), tr)
	if !errors.Is(err, ErrPersistenceFailed) || !errors.Is(err, errWrite) {
		t.Fatalf("err = %v", err)
	}
	if got, _ := c.Find("A"); got.Seats.AvailableCount() != 1 {
		t.Fatal("catalog changed despite failed write")
	}
	if err := c.Upsert(context.Background(), model.Train{TrainID: "new", Stations: []string{"p", "q"}}); err == nil {
		t.Fatal("append succeeded with failing store")
	}
	if len(c.List()) != 1 {
		t.Fatal("append kept despite failed write")
	}
}

func TestLoadAndSeedIfMissing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore[model.Train]()
	if err := store.SaveAll(ctx, []model.Train{{TrainID: "A", Stations: []string{"X", "Y"}, Seats: model.SeatMap{{1}}}}); err != nil {
		t.Fatal(err)
	}
	c := NewTrainCatalog(store)
	if err := c.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if got := c.Search("x", "y"); len(got) != 1 {
		t.Fatalf("loaded stations not normalized: %v", got)
	}

	added, err := c.SeedIfMissing(ctx, []model.Train{
		{TrainID: "a", Stations: []string{"x", "y"}, Seats: model.NewSeatMap(1, 1)},
		{TrainID: "B", Stations: []string{"y", "z"}, Seats: model.NewSeatMap(1, 1)},
	})
	if err != nil || added != 1 {
		t.Fatalf("seed added %d, err %v", added, err)
	}
	if tr, _ := c.Find("A"); tr.Seats[0][0] != model.SeatBooked {
		t.Fatal("seeding overwrote an existing train")
	}
	if added, _ := c.SeedIfMissing(ctx, []model.Train{{TrainID: "B", Stations: []string{"y", "z"}}}); added != 0 {
		t.Fatalf("re-seed added %d", added)
	}
}

func TestLoadRejectsInvalidPersistedTrains(t *testing.T) {
	ctx := context.Background()
	bad := map[string]model.Train{
		"one station": {TrainID: "A", Stations: []string{"x"}, Seats: model.NewSeatMap(1, 1)},
		"bad seat":    {TrainID: "B", Stations: []string{"x", "y"}, Seats: model.SeatMap{{2}}},
	}
	for name, tr := range bad {
		store := NewMemoryStore[model.Train]()
		if err := store.SaveAll(ctx, []model.Train{tr}); err != nil {
			t.Fatal(err)
		}
		c := NewTrainCatalog(store)
		if err := c.Load(ctx); !errors.Is(err, ErrInvalidTrain) {
			t.Errorf("%s: err = %v, want ErrInvalidTrain", name, err)
		}
		if n := len(c.List()); n != 0 {
			t.Errorf("%s: catalog holds %d trains after failed load", name, n)
		}
	}
}
