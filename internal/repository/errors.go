// Package repository holds the train catalog, the user directory and the
// record stores they persist through. The sentinel errors below let higher
// layers such as the reservation service and the HTTP handlers tell
// failure scenarios apart with errors.Is. Contextual errors wrap them with
// %w, so the message carries detail while the kind stays matchable.
package repository

import "errors"

// ErrPersistenceFailed is returned when a collection could not be written
// to its backing store. The in-memory state has already been restored when
// a caller sees it. Handlers should translate this into an HTTP 503.
var ErrPersistenceFailed = errors.New("persistence failed")

// ErrTrainNotFound is returned when no train has the requested identifier.
var ErrTrainNotFound = errors.New("train not found")

// ErrInvalidTrain is returned when an upsert would break a train
// invariant: missing id, fewer than two stations, unknown seat states or a
// changed seat layout.
var ErrInvalidTrain = errors.New("invalid train")

// ErrUserNotFound is returned when no user has the requested name.
var ErrUserNotFound = errors.New("user not found")

// ErrUserExists is returned when registering a name that is taken.
var ErrUserExists = errors.New("user already exists")

// ErrInvalidCredentials is returned by Verify for an unknown user or a
// wrong password. The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrTicketNotFound is returned when the user owns no ticket with the id.
var ErrTicketNotFound = errors.New("ticket not found")
