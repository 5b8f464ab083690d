package repository

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

func newDirectory(t *testing.T) (*UserDirectory, *failingStore[model.User]) {
	t.Helper()
	store := &failingStore[model.User]{MemoryStore: NewMemoryStore[model.User]()}
	d := NewUserDirectory(store, bcrypt.MinCost)
	if _, err := d.Register(context.Background(), " alice ", "pw", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	return d, store
}

func TestRegisterAndVerify(t *testing.T) {
	d, store := newDirectory(t)
	ctx := context.Background()

	u, ok := d.Find("alice")
	if !ok {
		t.Fatal("registered user not found (name should be trimmed)")
	}
	if u.HashedPassword == "" || u.HashedPassword == "pw" {
		t.Fatalf("password not hashed: %q", u.HashedPassword)
	}
	if u.Role != model.RoleCustomer || u.Tickets == nil {
		t.Fatalf("unexpected defaults %+v", u)
	}
	if _, ok := d.Find("Alice"); ok {
		t.Fatal("user names are case-sensitive")
	}

	if _, err := d.Register(ctx, "alice", "other", ""); !errors.Is(err, ErrUserExists) {
		t.Fatalf("duplicate err = %v", err)
	}
	if name, err := d.Verify("alice", "pw"); err != nil || name != "alice" {
		t.Fatalf("verify = %q, %v", name, err)
	}
	for _, tc := range [][2]string{{"alice", "wrong"}, {"nobody", "pw"}} {
		if _, err := d.Verify(tc[0], tc[1]); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("verify(%s) err = %v", tc[0], err)
		}
	}

	persisted, err := store.LoadAll(ctx)
	if err != nil || len(persisted) != 1 {
		t.Fatalf("persisted %v, %v", persisted, err)
	}
}

func TestTicketsAttachAndDetach(t *testing.T) {
	d, _ := newDirectory(t)
	ctx := context.Background()

	for _, id := range []string{"t1", "t2", "t3"} {
		if err := d.AddTicket(ctx, "alice", model.Ticket{TicketID: id, TrainID: "12952"}); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
	removed, err := d.RemoveTicket(ctx, "alice", "t2")
	if err != nil || removed.TicketID != "t2" {
		t.Fatalf("remove = %+v, %v", removed, err)
	}
	u, _ := d.Find("alice")
	if len(u.Tickets) != 2 || u.Tickets[0].TicketID != "t1" || u.Tickets[1].TicketID != "t3" {
		t.Fatalf("tickets = %+v", u.Tickets)
	}
	if _, err := d.RemoveTicket(ctx, "alice", "t2"); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("remove twice err = %v", err)
	}
	if err := d.AddTicket(ctx, "bob", model.Ticket{TicketID: "x"}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown user err = %v", err)
	}
}

func TestDirectoryWriteFailureLeavesUserUnchanged(t *testing.T) {
	d, store := newDirectory(t)
	ctx := context.Background()
	if err := d.AddTicket(ctx, "alice", model.Ticket{TicketID: "keep"}); err != nil {
		t.Fatal(err)
	}
	store.setFail(true)

	if err := d.AddTicket(ctx, "alice", model.Ticket{TicketID: "lost"}); !errors.Is(err, ErrPersistenceFailed) {
		t.Fatalf("add err = %v", err)
	}
	if _, err := d.RemoveTicket(ctx, "alice", "keep"); !errors.Is(err, ErrPersistenceFailed) {
		t.Fatalf("remove err = %v", err)
	}
	if _, err := d.Register(ctx, "bob", "pw", ""); !errors.Is(err, ErrPersistenceFailed) {
		t.Fatalf("register err = %v", err)
	}

	u, _ := d.Find("alice")
	if len(u.Tickets) != 1 || u.Tickets[0].TicketID != "keep" {
		t.Fatalf("tickets = %+v", u.Tickets)
	}
	if _, ok := d.Find("bob"); ok {
		t.Fatal("bob registered despite failed write")
	}
}

func TestRegisterAdminRole(t *testing.T) {
	d, _ := newDirectory(t)
	u, err := d.Register(context.Background(), "root", "pw", model.RoleAdmin)
	if err != nil || u.Role != model.RoleAdmin {
		t.Fatalf("admin = %+v, %v", u, err)
	}
	u, err = d.Register(context.Background(), "eve", "pw", "SUPERUSER")
	if err != nil || u.Role != model.RoleCustomer {
		t.Fatalf("unknown role = %+v, %v", u, err)
	}
}

func TestDirectoryTicketListNeverNil(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore[model.User]()
	if err := store.SaveAll(ctx, []model.User{{UserName: "dave", HashedPassword: "x"}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	d := NewUserDirectory(store, bcrypt.MinCost)
	if err := d.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if u, _ := d.Find("dave"); u.Tickets == nil {
		t.Fatal("loaded user without tickets has nil list")
	}

	if err := d.AddTicket(ctx, "dave", model.Ticket{TicketID: "t1", TrainID: "12952"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := d.RemoveTicket(ctx, "dave", "t1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if u, _ := d.Find("dave"); u.Tickets == nil || len(u.Tickets) != 0 {
		t.Fatalf("tickets after removing the last one = %#v", u.Tickets)
	}
}
