package handler

import (
	"net/http"

	"bistro/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// MenuHandler handles menu-related HTTP requests.
type MenuHandler struct {
	service service.MenuService
	logger  zerolog.Logger
}

// NewMenuHandler creates a new menu handler.
func NewMenuHandler(service service.MenuService, logger zerolog.Logger) *MenuHandler {
	return &MenuHandler{
		service: service,
		logger:  logger.With().Str("handler", "menu").Logger(),
	}
}

// RegisterRoutes mounts the menu routes on r.
func (h *MenuHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/menu", h.GetAll).Methods(http.MethodGet)
	r.HandleFunc("/api/menu/{id}", h.GetByID).Methods(http.MethodGet)
}

// GetAll handles GET /api/menu requests with an optional category and pagination.
func (h *MenuHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := pageParams(w, r, h.logger)
	if !ok {
		return
	}

	items, err := h.service.GetAll(r.Context(), r.URL.Query().Get("category"), limit, offset)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// GetByID handles GET /api/menu/{id} requests.
func (h *MenuHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, item)
}
