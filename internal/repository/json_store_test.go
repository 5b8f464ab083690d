package repository

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

func TestJSONFileStoreMissingAndEmpty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s := NewJSONFileStore[model.Train](filepath.Join(dir, "trains.json"))
	got, err := s.LoadAll(ctx)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("missing file: %v, %v", got, err)
	}

	empty := filepath.Join(dir, "users.json")
	if err := os.WriteFile(empty, []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	users, err := NewJSONFileStore[model.User](empty).LoadAll(ctx)
	if err != nil || len(users) != 0 {
		t.Fatalf("empty file: %v, %v", users, err)
	}
}

func TestJSONFileStoreRoundTripLayout(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "trains.json")
	s := NewJSONFileStore[model.Train](path)

	trains := []model.Train{{TrainID: "12952", Stations: []string{"delhi", "ajmer"}, Seats: model.SeatMap{{1, 0}}}}
	if err := s.SaveAll(ctx, trains); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"trainId": "12952"`, `"stations"`, `"seats"`} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("document missing %s:\n%s", want, raw)
		}
	}

	got, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].Seats[0][0] != model.SeatBooked {
		t.Fatalf("loaded %+v", got)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestJSONFileStoreKeepsOldDocumentOnFailure(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "users.json")
	s := NewJSONFileStore[model.User](path)
	if err := s.SaveAll(ctx, []model.User{{UserName: "alice"}}); err != nil {
		t.Fatal(err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := s.SaveAll(cancelled, []model.User{}); err == nil {
		t.Fatal("save with cancelled context succeeded")
	}
	got, err := s.LoadAll(ctx)
	if err != nil || len(got) != 1 {
		t.Fatalf("document changed: %v, %v", got, err)
	}
}

func TestJSONFileStoreRejectsCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trains.json")
	if err := os.WriteFile(path, []byte(`[{"trainId":`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewJSONFileStore[model.Train](path).LoadAll(context.Background()); err == nil {
		t.Fatal("corrupt document loaded")
	}
}

func TestEncodeNilCollectionAsArray(t *testing.T) {
	data, err := encodeCollection[model.Train](nil)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Fatalf("encoded nil as %q", data)
	}
}
