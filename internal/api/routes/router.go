package routes

import (
	"net/http"

	"github.com/reservenow/backend/internal/api/handlers"
	"github.com/reservenow/backend/internal/api/middleware"
	"github.com/reservenow/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	restaurantHandler  *handlers.RestaurantHandler
	favoritesHandler   *handlers.FavoritesHandler
	reservationHandler *handlers.ReservationHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
	allowedOrigins  []string
}

// NewRouter creates a new router. cacheMiddleware and metrics may be nil.
func NewRouter(
	restaurantHandler *handlers.RestaurantHandler,
	favoritesHandler *handlers.FavoritesHandler,
	reservationHandler *handlers.ReservationHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
	allowedOrigins []string,
) *Router {
	return &Router{
		mux:                http.NewServeMux(),
		restaurantHandler:  restaurantHandler,
		favoritesHandler:   favoritesHandler,
		reservationHandler: reservationHandler,
		cacheMiddleware:    cacheMiddleware,
		metrics:            metrics,
		allowedOrigins:     allowedOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Catalog endpoints
	r.mux.HandleFunc("GET /api/restaurants", r.restaurantHandler.ListRestaurants)
	r.mux.HandleFunc("GET /api/restaurants/featured", r.restaurantHandler.GetFeatured)
	r.mux.HandleFunc("GET /api/restaurants/{id}", r.restaurantHandler.GetRestaurant)
	r.mux.HandleFunc("GET /api/cuisines", r.restaurantHandler.ListCuisines)
	r.mux.HandleFunc("GET /api/cuisines/{cuisine}/restaurants", r.restaurantHandler.ListByCuisine)
	r.mux.HandleFunc("GET /api/cities", r.restaurantHandler.ListCities)
	r.mux.HandleFunc("GET /api/districts", r.restaurantHandler.ListDistricts)

	// Favorites endpoints
	r.mux.HandleFunc("GET /api/favorites", r.favoritesHandler.ListFavorites)
	r.mux.HandleFunc("DELETE /api/favorites", r.favoritesHandler.ClearFavorites)
	r.mux.HandleFunc("PUT /api/favorites/{id}", r.favoritesHandler.AddFavorite)
	r.mux.HandleFunc("DELETE /api/favorites/{id}", r.favoritesHandler.RemoveFavorite)
	r.mux.HandleFunc("POST /api/favorites/{id}/toggle", r.favoritesHandler.ToggleFavorite)

	// Reservation endpoints
	r.mux.HandleFunc("GET /api/reservations/time-slots", r.reservationHandler.TimeSlots)
	r.mux.HandleFunc("POST /api/restaurants/{id}/reservations/preview", r.reservationHandler.PreviewReservation)
	r.mux.HandleFunc("POST /api/restaurants/{id}/reservations", r.reservationHandler.SubmitReservation)

	// Apply middleware in reverse order (last middleware wraps first).
	// The cache sits inside compression so stored bodies stay uncompressed.
	var handler http.Handler = r.mux

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ResponseOptimization(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
