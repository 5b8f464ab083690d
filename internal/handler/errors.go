package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-seat-reservation/internal/model"
	"github.com/iliyamo/train-seat-reservation/internal/repository"
	"github.com/iliyamo/train-seat-reservation/internal/service"
)

// errorStatus maps a domain error to an HTTP status and a stable error code
// for the JSON body.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		return http.StatusUnauthorized, "not_authenticated"
	case errors.Is(err, repository.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, repository.ErrTrainNotFound):
		return http.StatusNotFound, "train_not_found"
	case errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound, "user_not_found"
	case errors.Is(err, repository.ErrTicketNotFound):
		return http.StatusNotFound, "ticket_not_found"
	case errors.Is(err, model.ErrOutOfRange):
		return http.StatusBadRequest, "out_of_range"
	case errors.Is(err, service.ErrInvalidRoute):
		return http.StatusBadRequest, "invalid_route"
	case errors.Is(err, repository.ErrInvalidTrain):
		return http.StatusBadRequest, "invalid_train"
	case errors.Is(err, model.ErrAlreadyBooked):
		return http.StatusConflict, "already_booked"
	case errors.Is(err, repository.ErrUserExists):
		return http.StatusConflict, "user_exists"
	case errors.Is(err, repository.ErrPersistenceFailed):
		return http.StatusServiceUnavailable, "persistence_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError renders err as {"error": code, "message": ...}. Internal
// errors are logged and their text is not sent to the client.
func writeError(c echo.Context, err error) error {
	status, code := errorStatus(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
		if status == http.StatusInternalServerError {
			msg = "internal error"
		}
	}
	return c.JSON(status, echo.Map{"error": code, "message": msg})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad_request", "message": msg})
}
