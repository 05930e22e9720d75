package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"bistro/internal/model"
	"bistro/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// IdempotencyKeyHeader deduplicates repeated checkout submissions.
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLen = 255

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	qr      service.QRGenerator
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, qr service.QRGenerator, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		qr:      qr,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// RegisterRoutes mounts the order routes on r.
func (h *OrderHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/orders", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/api/orders", h.List).Methods(http.MethodGet)
	r.HandleFunc("/api/orders/{id}", h.GetByID).Methods(http.MethodGet)
	r.HandleFunc("/api/orders/{id}/status", h.UpdateStatus).Methods(http.MethodPost)
	r.HandleFunc("/api/orders/{id}/cancel", h.Cancel).Methods(http.MethodPost)
	r.HandleFunc("/api/orders/{id}/history", h.History).Methods(http.MethodGet)
	r.HandleFunc("/api/orders/{id}/qr", h.QRCode).Methods(http.MethodGet)
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	if len(key) > maxIdempotencyKeyLen {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidParameter, "idempotency key is too long", h.logger)
		return
	}
	req.IdempotencyKey = key

	order, err := h.service.CreateOrder(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Location", "/api/orders/"+order.ID.String())
	writeJSON(w, http.StatusCreated, order)
}

// List handles GET /api/orders requests filtered by customer, status and creation time.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := pageParams(w, r, h.logger)
	if !ok {
		return
	}
	from, to, ok := rangeParams(w, r, h.logger)
	if !ok {
		return
	}

	q := r.URL.Query()
	orders, err := h.service.List(r.Context(), model.OrderFilter{
		CustomerID: q.Get("customerId"),
		Status:     model.OrderStatus(q.Get("status")),
		From:       from,
		To:         to,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	order, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus handles POST /api/orders/{id}/status requests.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
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

	order, err := h.service.Transition(r.Context(), id, req.Status, req.ChangedBy)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Cancel handles POST /api/orders/{id}/cancel requests. The body is optional.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	var req model.CancelRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	order, err := h.service.Cancel(r.Context(), id, req.RequestedBy)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// History handles GET /api/orders/{id}/history requests.
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
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

// QRCode handles GET /api/orders/{id}/qr requests with a PNG of the tracking link.
func (h *OrderHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	if _, err := h.service.GetByID(r.Context(), id); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	png, err := h.qr.Generate(id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *OrderHandler) orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidID, "invalid order ID format", h.logger)
		return uuid.Nil, false
	}
	return id, true
}
