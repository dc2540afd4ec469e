// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"net/http"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/hotel-pricing-engine/backend/internal/api/handlers"
	"github.com/hotel-pricing-engine/backend/internal/api/middleware"
	"github.com/hotel-pricing-engine/backend/internal/engine"
	"github.com/hotel-pricing-engine/backend/internal/storage"
	"github.com/hotel-pricing-engine/backend/internal/websocket"
)

// Services are the dependencies the routes are built from.
type Services struct {
	DB     *storage.DB
	Engine *engine.Engine
	Hub    *websocket.Hub
	// CORSOrigins lists allowed browser origins. Empty allows any origin.
	CORSOrigins []string
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(s Services) http.Handler {
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	var events *websocket.EventBroadcaster
	if s.Hub != nil {
		events = websocket.NewEventBroadcaster(s.Hub)
	}

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", handlers.HealthCheck(s.DB, s.Hub)).Methods("GET")
	if s.Hub != nil {
		api.HandleFunc("/ws", handlers.WebSocketUpgrade(s.Hub)).Methods("GET")
	}

	// Pricing
	api.HandleFunc("/pricing/calculate", handlers.CalculatePrice(s.Engine, events)).Methods("POST")
	api.HandleFunc("/rooms/{id}/pricing-trends", handlers.PricingTrends(s.Engine)).Methods("GET")

	// Availability and occupancy
	api.HandleFunc("/availability/check", handlers.CheckAvailability(s.Engine)).Methods("POST")
	api.HandleFunc("/availability/rooms", handlers.AvailableRooms(s.Engine)).Methods("GET")
	api.HandleFunc("/occupancy/calendar", handlers.OccupancyCalendar(s.Engine)).Methods("GET")

	// Revenue management
	api.HandleFunc("/overbooking", handlers.OverbookingOpportunity(s.Engine, events)).Methods("GET")
	api.HandleFunc("/forecast", handlers.Forecast(s.Engine)).Methods("GET")

	// Cache administration
	api.HandleFunc("/cache/stats", handlers.CacheStats(s.Engine)).Methods("GET")
	api.HandleFunc("/cache", handlers.ClearCache(s.Engine, events)).Methods("DELETE")

	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Route not found")
	})

	origins := s.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(origins),
		gorillaHandlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", "Traceparent"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
	)(r)
}
