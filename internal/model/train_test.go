package model

import "testing"

func TestTrainServes(t *testing.T) {
	tr := Train{TrainID: "12952", Stations: []string{"delhi", "Jaipur", "ajmer"}}

	cases := []struct {
		src, dst string
		want     bool
	}{
		{"Delhi", "Ajmer", true},
		{"delhi", "jaipur", true},
		{" JAIPUR ", "ajmer", true},
		{"ajmer", "delhi", false},
		{"delhi", "delhi", false},
		{"delhi", "mumbai", false},
		{"", "ajmer", false},
	}
	for _, tc := range cases {
		if got := tr.Serves(tc.src, tc.dst); got != tc.want {
			t.Errorf("Serves(%q, %q) = %v, want %v", tc.src, tc.dst, got, tc.want)
		}
	}
}

func TestTrainValidate(t *testing.T) {
	ok := Train{TrainID: "1", Stations: []string{"a", "b"}, Seats: NewSeatMap(1, 1)}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid train rejected: %v", err)
	}

	bad := map[string]Train{
		"no id":         {TrainID: " ", Stations: []string{"a", "b"}},
		"one station":   {TrainID: "1", Stations: []string{"a"}},
		"blank station": {TrainID: "1", Stations: []string{"a", " "}},
		"bad state":     {TrainID: "1", Stations: []string{"a", "b"}, Seats: SeatMap{{2}}},
	}
	for name, tr := range bad {
		if err := tr.Validate(); err == nil {
			t.Errorf("%s: accepted", name)
		}
	}
}

func TestTrainNormalizedDoesNotAlias(t *testing.T) {
	tr := Train{TrainID: " X1 ", Stations: []string{"Delhi", "AJMER"}, Seats: NewSeatMap(1, 1)}
	n := tr.Normalized()
	if n.TrainID != "X1" || n.Stations[0] != "delhi" || n.Stations[1] != "ajmer" {
		t.Fatalf("normalized = %+v", n)
	}
	if tr.Stations[0] != "Delhi" {
		t.Fatal("Normalized modified the receiver")
	}
	if !SameTrainID("x1", n.TrainID) {
		t.Fatal("SameTrainID should ignore case")
	}
}

func TestSameTrainIDMatchesNormalizedForm(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"S1", "s1", true},
		{" s1 ", "S1", true},
		{"\u017f1", "S1", false},
		{"\u017f1", "s1", false},
		{"K1", "\u212a1", false},
	}
	for _, c := range cases {
		got := SameTrainID(c.a, c.b)
		if got != c.want {
			t.Errorf("SameTrainID(%q, %q) = %v, want %v", c.a, c.b, got, c.want)
		}
		if keyed := NormalizeTrainID(c.a) == NormalizeTrainID(c.b); keyed != got {
			t.Errorf("%q/%q: SameTrainID = %v but normalized ids equal = %v", c.a, c.b, got, keyed)
		}
	}
}

func TestUserTicketIndexAndClone(t *testing.T) {
	u := User{UserName: "alice", Tickets: []Ticket{{TicketID: "a"}, {TicketID: "b"}}}
	if u.TicketIndex("b") != 1 || u.TicketIndex("z") != -1 {
		t.Fatal("TicketIndex")
	}
	c := u.Clone()
	c.Tickets[0].TicketID = "changed"
	if u.Tickets[0].TicketID != "a" {
		t.Fatal("clone shares tickets")
	}
	if u.EffectiveRole() != RoleCustomer {
		t.Fatalf("role = %q", u.EffectiveRole())
	}
}

func TestUserCloneKeepsEmptyTicketList(t *testing.T) {
	empty := User{UserName: "bob", Tickets: []Ticket{}}
	if c := empty.Clone(); c.Tickets == nil || len(c.Tickets) != 0 {
		t.Fatalf("clone of empty list = %#v", c.Tickets)
	}
	if c := (User{UserName: "carol"}).Clone(); c.Tickets != nil {
		t.Fatalf("clone of nil list = %#v", c.Tickets)
	}
}
