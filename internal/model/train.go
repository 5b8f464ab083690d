package model

import (
	"errors"
	"strings"
)

// Train is a registered train as stored in trains.json. Stations lists the
// station codes in route order; the order is the schedule, so a train
// serves source -> destination only when source comes first. Station codes
// and the identifier are compared case-insensitively.
//
// Fields:
//  TrainID  – unique identifier (e.g. "12952").
//  Stations – lowercased station codes in route order, at least two.
//  Seats    – seat grid; its dimensions never change after creation.
type Train struct {
	TrainID  string   `json:"trainId" yaml:"trainId"`
	Stations []string `json:"stations" yaml:"stations"`
	Seats    SeatMap  `json:"seats" yaml:"seats"`
}

// NormalizeStation lowercases and trims a station code.
func NormalizeStation(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// NormalizeTrainID lowercases and trims a train identifier. Catalog lookups
// and per-train locks both key on this form.
func NormalizeTrainID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// SameTrainID compares two train identifiers ignoring case.
func SameTrainID(a, b string) bool {
	return NormalizeTrainID(a) == NormalizeTrainID(b)
}

// StationIndex returns the position of code on the route or -1.
func (t Train) StationIndex(code string) int {
	code = NormalizeStation(code)
	for i, s := range t.Stations {
		if NormalizeStation(s) == code {
			return i
		}
	}
	return -1
}

// Serves reports whether both stations are on the route with source
// strictly before destination. There is no wraparound.
func (t Train) Serves(source, destination string) bool {
	si := t.StationIndex(source)
	di := t.StationIndex(destination)
	return si != -1 && di != -1 && si < di
}

// Normalized returns a copy with trimmed id and lowercased station codes.
func (t Train) Normalized() Train {
	out := t.Clone()
	out.TrainID = strings.TrimSpace(out.TrainID)
	for i, s := range out.Stations {
		out.Stations[i] = NormalizeStation(s)
	}
	return out
}

// Validate checks the structural invariants of a train.
func (t Train) Validate() error {
	if strings.TrimSpace(t.TrainID) == "" {
		return errors.New("train id is required")
	}
	if len(t.Stations) < 2 {
		return errors.New("a train needs at least two stations")
	}
	for _, s := range t.Stations {
		if NormalizeStation(s) == "" {
			return errors.New("station code must not be empty")
		}
	}
	if !t.Seats.validStates() {
		return errors.New("seat states must be 0 (available) or 1 (booked)")
	}
	return nil
}

// Clone returns a deep copy of the train.
func (t Train) Clone() Train {
	return Train{
		TrainID:  t.TrainID,
		Stations: append([]string(nil), t.Stations...),
		Seats:    t.Seats.Clone(),
	}
}
