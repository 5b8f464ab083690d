package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-seat-reservation/internal/middleware"
	"github.com/iliyamo/train-seat-reservation/internal/model"
	"github.com/iliyamo/train-seat-reservation/internal/service"
)

// Reservations is what the ticket endpoints need from the reservation
// service.
type Reservations interface {
	Book(ctx context.Context, userID, trainID string, row, col int, source, destination string) (model.Ticket, error)
	Cancel(ctx context.Context, userID, ticketID string) (service.CancelResult, error)
	Tickets(ctx context.Context, userID string) ([]model.Ticket, error)
}

// TicketHandler serves booking and cancellation for the signed-in user.
type TicketHandler struct {
	Reservations Reservations
}

func NewTicketHandler(r Reservations) *TicketHandler {
	return &TicketHandler{Reservations: r}
}

type bookReq struct {
	Row         *int   `json:"row"`
	Seat        *int   `json:"seat"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

type cancelResp struct {
	Ticket       model.Ticket `json:"ticket"`
	TrainMissing bool         `json:"train_missing"`
	SeatWasFree  bool         `json:"seat_was_free"`
}

// Book reserves one seat on the train in the path.
func (h *TicketHandler) Book(c echo.Context) error {
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Row == nil || req.Seat == nil {
		return badRequest(c, "row and seat are required")
	}
	if req.Source == "" || req.Destination == "" {
		return badRequest(c, "source and destination are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Reservations.Book(ctx, middleware.UserID(c), c.Param("id"), *req.Row, *req.Seat, req.Source, req.Destination)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// List returns the user's tickets in booking order.
func (h *TicketHandler) List(c echo.Context) error {
	tickets, err := h.Reservations.Tickets(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": tickets})
}

// Cancel removes one of the user's tickets and frees its seat.
func (h *TicketHandler) Cancel(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.Cancel(ctx, middleware.UserID(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cancelResp{
		Ticket:       res.Ticket,
		TrainMissing: res.TrainMissing,
		SeatWasFree:  res.SeatWasFree,
	})
}
