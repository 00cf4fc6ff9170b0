package handlers

import (
	"log/slog"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/simdate"
)

type DateHandler struct {
	logger *slog.Logger
}

func NewDateHandler(logger *slog.Logger) *DateHandler {
	return &DateHandler{logger: logger}
}

func (d *DateHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, simdate.FromContext(r.Context()).View())
}

type setDateBody struct {
	Date *string `json:"date"`
}

// Set replaces the simulated date; null or "" clears it.
func (d *DateHandler) Set(w http.ResponseWriter, r *http.Request) {
	var body setDateBody
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if body.Date != nil && *body.Date != "" {
		norm, err := simdate.Parse(*body.Date)
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		body.Date = &norm
	}

	s := simdate.FromContext(r.Context())
	if err := s.Set(r.Context(), body.Date); err != nil {
		d.logger.Error("Store simulated date", "error", err)
		WriteError(w, r, http.StatusInternalServerError, "failed to store date")
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

func (d *DateHandler) Reset(w http.ResponseWriter, r *http.Request) {
	s := simdate.FromContext(r.Context())
	if err := s.ResetToToday(r.Context()); err != nil {
		d.logger.Error("Reset simulated date", "error", err)
		WriteError(w, r, http.StatusInternalServerError, "failed to store date")
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}
