package handler

import (
	"errors"
	"io"
	"net/http"

	"bistro/internal/model"
	"bistro/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// ReservationHandler handles table reservation HTTP requests.
type ReservationHandler struct {
	service service.ReservationService
	logger  zerolog.Logger
}

// NewReservationHandler creates a new reservation handler.
func NewReservationHandler(service service.ReservationService, logger zerolog.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		logger:  logger.With().Str("handler", "reservation").Logger(),
	}
}

// RegisterRoutes mounts the reservation routes on r.
func (h *ReservationHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/reservations", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/api/reservations", h.List).Methods(http.MethodGet)
	r.HandleFunc("/api/reservations/{id}", h.GetByID).Methods(http.MethodGet)
	r.HandleFunc("/api/reservations/{id}/status", h.UpdateStatus).Methods(http.MethodPost)
	r.HandleFunc("/api/reservations/{id}/cancel", h.Cancel).Methods(http.MethodPost)
	r.HandleFunc("/api/reservations/{id}/history", h.History).Methods(http.MethodGet)
}

// Create handles POST /api/reservations requests.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ReservationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	if req.ReservationDateTime.IsZero() {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "reservationDateTime is required", h.logger)
		return
	}

	res, err := h.service.CreateReservation(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Location", "/api/reservations/"+res.ID.String())
	writeJSON(w, http.StatusCreated, res)
}

// List handles GET /api/reservations requests.
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := pageParams(w, r, h.logger)
	if !ok {
		return
	}
	from, to, ok := rangeParams(w, r, h.logger)
	if !ok {
		return
	}

	q := r.URL.Query()
	list, err := h.service.List(r.Context(), model.ReservationFilter{
		CustomerID: q.Get("customerId"),
		Status:     model.ReservationStatus(q.Get("status")),
		From:       from,
		To:         to,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// GetByID handles GET /api/reservations/{id} requests.
func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reservationID(w, r)
	if !ok {
		return
	}

	res, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// UpdateStatus handles POST /api/reservations/{id}/status requests from staff.
func (h *ReservationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reservationID(w, r)
	if !ok {
		return
	}

	var req model.StatusChangeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	if req.Status == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "status is required", h.logger)
		return
	}

	res, err := h.service.Transition(r.Context(), id, req.Status, req.ChangedBy)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// Cancel handles POST /api/reservations/{id}/cancel requests from guests.
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reservationID(w, r)
	if !ok {
		return
	}

	var req model.CancelRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	res, err := h.service.Cancel(r.Context(), id, req.RequestedBy)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// History handles GET /api/reservations/{id}/history requests.
func (h *ReservationHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reservationID(w, r)
	if !ok {
		return
	}

	changes, err := h.service.History(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, changes)
}

func (h *ReservationHandler) reservationID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidID, "invalid reservation ID format", h.logger)
		return uuid.Nil, false
	}
	return id, true
}
