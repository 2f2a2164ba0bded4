package handlers

import (
	"context"
	"net/http"

	"github.com/reservenow/backend/internal/domain/entities"
	"github.com/reservenow/backend/internal/infrastructure/observability"
	apperrors "github.com/reservenow/backend/pkg/errors"
)

// FavoritesStore is the favorites set shared by every client of this backend
type FavoritesStore interface {
	Refresh(ctx context.Context)
	IsFavorite(id string) bool
	IDs() []string
	Set() map[string]struct{}
	Add(ctx context.Context, id string) error
	Remove(ctx context.Context, id string) error
	Toggle(ctx context.Context, id string) (bool, error)
	Clear(ctx context.Context) error
}

// RestaurantPicker selects catalog records by id
type RestaurantPicker interface {
	Contains(id string) bool
	Pick(ids map[string]struct{}) []*entities.Restaurant
}

// FavoritesHandler serves the favorites list
type FavoritesHandler struct {
	favorites FavoritesStore
	catalog   RestaurantPicker
}

// NewFavoritesHandler creates a favorites handler
func NewFavoritesHandler(favorites FavoritesStore, catalog RestaurantPicker) *FavoritesHandler {
	return &FavoritesHandler{favorites: favorites, catalog: catalog}
}

type favoritesResponse struct {
	IDs         []string               `json:"ids"`
	Restaurants []*entities.Restaurant `json:"restaurants"`
}

type favoriteState struct {
	ID       string `json:"id"`
	Favorite bool   `json:"favorite"`
}

// ListFavorites handles GET /api/favorites. Restaurants come back in catalog
// order; ids no longer in the catalog are listed but have no record.
func (h *FavoritesHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	h.favorites.Refresh(r.Context())
	restaurants := h.catalog.Pick(h.favorites.Set())
	if restaurants == nil {
		restaurants = []*entities.Restaurant{}
	}
	respondWithJSON(w, http.StatusOK, favoritesResponse{
		IDs:         h.favorites.IDs(),
		Restaurants: restaurants,
	})
}

// AddFavorite handles PUT /api/favorites/{id}
func (h *FavoritesHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.catalog.Contains(id) {
		h.fail(w, r, apperrors.NewNotFoundError("restaurant not found"))
		return
	}
	if err := h.favorites.Add(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, favoriteState{ID: id, Favorite: true})
}

// RemoveFavorite handles DELETE /api/favorites/{id}
func (h *FavoritesHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.favorites.Remove(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, favoriteState{ID: id, Favorite: false})
}

// ToggleFavorite handles POST /api/favorites/{id}/toggle
func (h *FavoritesHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.catalog.Contains(id) && !h.favorites.IsFavorite(id) {
		h.fail(w, r, apperrors.NewNotFoundError("restaurant not found"))
		return
	}
	favorite, err := h.favorites.Toggle(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, favoriteState{ID: id, Favorite: favorite})
}

// ClearFavorites handles DELETE /api/favorites
func (h *FavoritesHandler) ClearFavorites(w http.ResponseWriter, r *http.Request) {
	if err := h.favorites.Clear(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FavoritesHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	respondWithAppError(w, observability.LoggerFromContext(r.Context()), err)
}
