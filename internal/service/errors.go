package service

import "errors"

// ErrNotAuthenticated is returned when an operation is called without a
// user identity. Handlers should translate this into an HTTP 401.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrInvalidRoute is returned when the requested source and destination
// are not both on the train's route in travel order.
var ErrInvalidRoute = errors.New("train does not serve this route")
