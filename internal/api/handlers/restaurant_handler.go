package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/reservenow/backend/internal/application/services"
	"github.com/reservenow/backend/internal/domain/entities"
	"github.com/reservenow/backend/internal/infrastructure/observability"
)

// CatalogReader is the read side of the restaurant catalog
type CatalogReader interface {
	GetByID(id string) (*entities.Restaurant, error)
	ByCuisine(cuisine string) []*entities.Restaurant
	Query(criteria entities.Criteria, key entities.SortKey) []*entities.Restaurant
	Featured(n int) []*entities.Restaurant
	Cuisines() []string
	Cities() []string
	Districts() []string
}

// FavoriteChecker reports favorite membership
type FavoriteChecker interface {
	Refresh(ctx context.Context)
	IsFavorite(id string) bool
}

// RestaurantHandler serves the restaurant directory
type RestaurantHandler struct {
	catalog   CatalogReader
	favorites FavoriteChecker
	location  *time.Location
	now       func() time.Time
}

// NewRestaurantHandler creates a restaurant handler. Opening hours are
// evaluated in loc.
func NewRestaurantHandler(catalog CatalogReader, favorites FavoriteChecker, loc *time.Location) *RestaurantHandler {
	return &RestaurantHandler{
		catalog:   catalog,
		favorites: favorites,
		location:  loc,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for the open state
func (h *RestaurantHandler) WithClock(now func() time.Time) *RestaurantHandler {
	h.now = now
	return h
}

type restaurantList struct {
	Restaurants []*entities.Restaurant `json:"restaurants"`
	Count       int                    `json:"count"`
}

func newRestaurantList(restaurants []*entities.Restaurant) restaurantList {
	if restaurants == nil {
		restaurants = []*entities.Restaurant{}
	}
	return restaurantList{Restaurants: restaurants, Count: len(restaurants)}
}

// ListRestaurants handles GET /api/restaurants
func (h *RestaurantHandler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	criteria := entities.Criteria{
		Cuisines:    splitList(query.Get("cuisines")),
		Locations:   splitList(query.Get("locations")),
		SearchQuery: query.Get("q"),
	}
	for _, p := range splitList(query.Get("price")) {
		price, err := entities.ParsePriceRange(p)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		criteria.PriceRanges = append(criteria.PriceRanges, price)
	}

	key, err := entities.ParseSortKey(query.Get("sort"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, newRestaurantList(h.catalog.Query(criteria, key)))
}

// GetFeatured handles GET /api/restaurants/featured
func (h *RestaurantHandler) GetFeatured(w http.ResponseWriter, r *http.Request) {
	limit := services.DefaultFeaturedLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			respondWithError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	respondWithJSON(w, http.StatusOK, newRestaurantList(h.catalog.Featured(limit)))
}

// GetRestaurant handles GET /api/restaurants/{id}
func (h *RestaurantHandler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	restaurant, err := h.catalog.GetByID(r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, observability.LoggerFromContext(r.Context()), err)
		return
	}
	h.favorites.Refresh(r.Context())

	respondWithJSON(w, http.StatusOK, entities.RestaurantDetail{
		Restaurant: restaurant,
		IsOpen:     services.IsOpen(restaurant, h.now().In(h.location)),
		IsFavorite: h.favorites.IsFavorite(restaurant.ID),
	})
}

// ListByCuisine handles GET /api/cuisines/{cuisine}/restaurants
func (h *RestaurantHandler) ListByCuisine(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, newRestaurantList(h.catalog.ByCuisine(r.PathValue("cuisine"))))
}

// ListCuisines handles GET /api/cuisines
func (h *RestaurantHandler) ListCuisines(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string][]string{"cuisines": h.catalog.Cuisines()})
}

// ListCities handles GET /api/cities
func (h *RestaurantHandler) ListCities(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string][]string{"cities": h.catalog.Cities()})
}

// ListDistricts handles GET /api/districts
func (h *RestaurantHandler) ListDistricts(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string][]string{"districts": h.catalog.Districts()})
}
