// Package router assembles the HTTP routes and middleware chain.
package router

import (
	"net/http"

	"bistro/internal/handler"
	"bistro/internal/middleware"
	"bistro/internal/model"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Handlers groups the resource handlers mounted by New.
type Handlers struct {
	Health       *handler.HealthHandler
	Menu         *handler.MenuHandler
	Cart         *handler.CartHandler
	Orders       *handler.OrderHandler
	Reservations *handler.ReservationHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, apiKey string, allowedOrigins []string, logger zerolog.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check endpoint (no authentication required)
	r.HandleFunc("/health", h.Health.Check).Methods(http.MethodGet)

	h.Menu.RegisterRoutes(r)
	h.Cart.RegisterRoutes(r)
	h.Orders.RegisterRoutes(r)
	h.Reservations.RegisterRoutes(r)

	r.NotFoundHandler = jsonStatus(http.StatusNotFound, model.ErrCodeNotFound, "route not found")
	r.MethodNotAllowedHandler = jsonStatus(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-API-Key", handler.IdempotencyKeyHeader, middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "Location"},
		MaxAge:         600,
	})

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS -> APIKeyAuth
	var chain http.Handler = r
	chain = middleware.APIKeyAuth(apiKey, logger)(chain)
	chain = c.Handler(chain)
	chain = middleware.Logging(logger)(chain)
	chain = middleware.RequestID(chain)
	chain = middleware.Recovery(logger)(chain)

	return chain
}

func jsonStatus(status int, code, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, status, code, message)
	})
}
