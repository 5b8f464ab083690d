package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-seat-reservation/internal/model"
	"github.com/iliyamo/train-seat-reservation/internal/repository"
)

// Trains is what the train endpoints need from the reservation service.
type Trains interface {
	Search(source, destination string) []model.Train
	Train(trainID string) (model.Train, bool)
	UpsertTrain(ctx context.Context, train model.Train) error
}

// TrainHandler serves train search, details and the admin upsert.
type TrainHandler struct {
	Trains Trains
}

func NewTrainHandler(t Trains) *TrainHandler {
	return &TrainHandler{Trains: t}
}

type trainSummary struct {
	TrainID        string   `json:"train_id"`
	Stations       []string `json:"stations"`
	Rows           int      `json:"rows"`
	AvailableSeats int      `json:"available_seats"`
}

type trainDetail struct {
	trainSummary
	Seats model.SeatMap `json:"seats"`
}

func summarize(t model.Train) trainSummary {
	return trainSummary{
		TrainID:        t.TrainID,
		Stations:       t.Stations,
		Rows:           t.Seats.Rows(),
		AvailableSeats: t.Seats.AvailableCount(),
	}
}

// Search lists trains that stop at source before destination. Both query
// parameters are required; results keep catalog order.
func (h *TrainHandler) Search(c echo.Context) error {
	source := strings.TrimSpace(c.QueryParam("source"))
	destination := strings.TrimSpace(c.QueryParam("destination"))
	if source == "" || destination == "" {
		return badRequest(c, "source and destination are required")
	}
	trains := h.Trains.Search(source, destination)
	items := make([]trainSummary, 0, len(trains))
	for _, t := range trains {
		items = append(items, summarize(t))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"source":      model.NormalizeStation(source),
		"destination": model.NormalizeStation(destination),
		"items":       items,
	})
}

// Get returns one train with its seat grid (0 = available, 1 = booked).
func (h *TrainHandler) Get(c echo.Context) error {
	t, ok := h.Trains.Train(c.Param("id"))
	if !ok {
		return writeError(c, repository.ErrTrainNotFound)
	}
	return c.JSON(http.StatusOK, trainDetail{trainSummary: summarize(t), Seats: t.Seats})
}

// Upsert adds a train or replaces one with the same id. The body uses the
// persisted train shape: {"trainId", "stations", "seats"}.
func (h *TrainHandler) Upsert(c echo.Context) error {
	var t model.Train
	if err := c.Bind(&t); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Trains.UpsertTrain(ctx, t); err != nil {
		return writeError(c, err)
	}
	saved, ok := h.Trains.Train(t.TrainID)
	if !ok {
		return writeError(c, repository.ErrTrainNotFound)
	}
	return c.JSON(http.StatusOK, trainDetail{trainSummary: summarize(saved), Seats: saved.Seats})
}
