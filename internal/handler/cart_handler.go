package handler

import (
	"net/http"

	"bistro/internal/model"
	"bistro/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// CartHandler prices carts without placing orders.
type CartHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.OrderService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// RegisterRoutes mounts the cart routes on r.
func (h *CartHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/cart/quote", h.Quote).Methods(http.MethodPost)
}

// Quote handles POST /api/cart/quote requests.
func (h *CartHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req model.CartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	quote, err := h.service.Quote(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}
