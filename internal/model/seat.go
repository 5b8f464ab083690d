package model

import "errors"

// SeatState is the booking state of a single seat. The integer values are
// the ones stored in trains.json (0 = available, 1 = booked).
type SeatState int

const (
	SeatAvailable SeatState = 0
	SeatBooked    SeatState = 1
)

// String returns the label used in API responses and logs.
func (s SeatState) String() string {
	switch s {
	case SeatAvailable:
		return "AVAILABLE"
	case SeatBooked:
		return "BOOKED"
	default:
		return "UNKNOWN"
	}
}

var (
	// ErrOutOfRange is returned when a (row, seat) coordinate does not
	// exist in the seat map.
	ErrOutOfRange = errors.New("seat coordinate out of range")
	// ErrAlreadyBooked is returned when booking a seat that is not available.
	ErrAlreadyBooked = errors.New("seat already booked")
	// ErrNotBooked is returned when releasing a seat that is not booked.
	ErrNotBooked = errors.New("seat not booked")
)

// SeatMap is the seat grid of one train, indexed as [row][seat]. Rows may
// hold a different number of seats. The only mutators are Book and Release,
// so a seat can only move Available -> Booked -> Available.
type SeatMap [][]SeatState

// NewSeatMap builds a rectangular seat map with every seat available.
func NewSeatMap(rows, cols int) SeatMap {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	m := make(SeatMap, rows)
	for r := range m {
		m[r] = make([]SeatState, cols)
	}
	return m
}

// Rows returns the number of rows.
func (m SeatMap) Rows() int { return len(m) }

// Columns returns the number of seats in row, or 0 if the row does not exist.
func (m SeatMap) Columns(row int) int {
	if row < 0 || row >= len(m) {
		return 0
	}
	return len(m[row])
}

// IsValidCoordinate reports whether 0 <= row < Rows() and 0 <= col < Columns(row).
func (m SeatMap) IsValidCoordinate(row, col int) bool {
	return row >= 0 && row < len(m) && col >= 0 && col < len(m[row])
}

// StateAt returns the state of a seat or ErrOutOfRange.
func (m SeatMap) StateAt(row, col int) (SeatState, error) {
	if !m.IsValidCoordinate(row, col) {
		return SeatAvailable, ErrOutOfRange
	}
	return m[row][col], nil
}

// Book marks an available seat as booked. Nothing changes on error.
func (m SeatMap) Book(row, col int) error {
	if !m.IsValidCoordinate(row, col) {
		return ErrOutOfRange
	}
	if m[row][col] != SeatAvailable {
		return ErrAlreadyBooked
	}
	m[row][col] = SeatBooked
	return nil
}

// Release marks a booked seat as available again. Nothing changes on error.
func (m SeatMap) Release(row, col int) error {
	if !m.IsValidCoordinate(row, col) {
		return ErrOutOfRange
	}
	if m[row][col] != SeatBooked {
		return ErrNotBooked
	}
	m[row][col] = SeatAvailable
	return nil
}

// AvailableCount counts seats in the Available state.
func (m SeatMap) AvailableCount() int {
	n := 0
	for _, row := range m {
		for _, s := range row {
			if s == SeatAvailable {
				n++
			}
		}
	}
	return n
}

// SameLayout reports whether other has the same row count and the same
// number of seats in every row.
func (m SeatMap) SameLayout(other SeatMap) bool {
	if len(m) != len(other) {
		return false
	}
	for r := range m {
		if len(m[r]) != len(other[r]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy; mutating the copy never touches m.
func (m SeatMap) Clone() SeatMap {
	if m == nil {
		return nil
	}
	out := make(SeatMap, len(m))
	for r, row := range m {
		out[r] = append([]SeatState(nil), row...)
	}
	return out
}

// validStates reports whether every cell holds a known state.
func (m SeatMap) validStates() bool {
	for _, row := range m {
		for _, s := range row {
			if s != SeatAvailable && s != SeatBooked {
				return false
			}
		}
	}
	return true
}
