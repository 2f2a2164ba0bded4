package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservenow/backend/internal/api/handlers"
)

type listResponse struct {
	Restaurants []struct {
		ID string `json:"id"`
	} `json:"restaurants"`
	Count int `json:"count"`
}

func (l listResponse) ids() []string {
	out := make([]string, len(l.Restaurants))
	for i, r := range l.Restaurants {
		out[i] = r.ID
	}
	return out
}

func newRestaurantMux(t *testing.T, f *fixture) *http.ServeMux {
	t.Helper()
	h := handlers.NewRestaurantHandler(f.catalog, f.favorites, kualaLumpur).
		WithClock(func() time.Time { return fixedNow })

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/restaurants", h.ListRestaurants)
	mux.HandleFunc("GET /api/restaurants/featured", h.GetFeatured)
	mux.HandleFunc("GET /api/restaurants/{id}", h.GetRestaurant)
	mux.HandleFunc("GET /api/cuisines", h.ListCuisines)
	mux.HandleFunc("GET /api/cities", h.ListCities)
	mux.HandleFunc("GET /api/districts", h.ListDistricts)
	mux.HandleFunc("GET /api/cuisines/{cuisine}/restaurants", h.ListByCuisine)
	return mux
}

func get(t *testing.T, mux http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) listResponse {
	t.Helper()
	var resp listResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestRestaurantHandler_ListRestaurants(t *testing.T) {
	mux := newRestaurantMux(t, newFixture(t))

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{"default sorts by name", "/api/restaurants", []string{"ember-grill", "nasi-kandar-corner", "sushi-zen"}},
		{"popular", "/api/restaurants?sort=popular", []string{"sushi-zen", "nasi-kandar-corner", "ember-grill"}},
		{"recent reverses catalog order", "/api/restaurants?sort=recent", []string{"ember-grill", "sushi-zen", "nasi-kandar-corner"}},
		{"search", "/api/restaurants?q=SUSHI", []string{"sushi-zen"}},
		{"cuisines OR", "/api/restaurants?cuisines=Japanese,Western", []string{"ember-grill", "sushi-zen"}},
		{"location matches district", "/api/restaurants?locations=Damansara", []string{"ember-grill"}},
		{"price and location AND", "/api/restaurants?price=fine-dining&locations=Kuala%20Lumpur", []string{"sushi-zen"}},
		{"no match", "/api/restaurants?q=pizza", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, mux, tt.target)
			require.Equal(t, http.StatusOK, w.Code)

			resp := decodeList(t, w)
			assert.Equal(t, tt.want, resp.ids())
			assert.Equal(t, len(tt.want), resp.Count)
		})
	}
}

func TestRestaurantHandler_ListRestaurants_BadParams(t *testing.T) {
	mux := newRestaurantMux(t, newFixture(t))

	assert.Equal(t, http.StatusBadRequest, get(t, mux, "/api/restaurants?sort=rating").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, mux, "/api/restaurants?price=cheap").Code)
}

func TestRestaurantHandler_GetFeatured(t *testing.T) {
	mux := newRestaurantMux(t, newFixture(t))

	w := get(t, mux, "/api/restaurants/featured?limit=2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"sushi-zen", "nasi-kandar-corner"}, decodeList(t, w).ids())

	w = get(t, mux, "/api/restaurants/featured")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decodeList(t, w).Count)

	assert.Equal(t, http.StatusBadRequest, get(t, mux, "/api/restaurants/featured?limit=0").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, mux, "/api/restaurants/featured?limit=abc").Code)
}

func TestRestaurantHandler_GetRestaurant(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.favorites.Add(t.Context(), "sushi-zen"))
	mux := newRestaurantMux(t, f)

	tests := []struct {
		id       string
		open     bool
		favorite bool
	}{
		{"nasi-kandar-corner", true, false},
		{"sushi-zen", true, true},
		{"ember-grill", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			w := get(t, mux, "/api/restaurants/"+tt.id)
			require.Equal(t, http.StatusOK, w.Code)

			var detail map[string]interface{}
			require.NoError(t, json.NewDecoder(w.Body).Decode(&detail))
			assert.Equal(t, tt.id, detail["id"])
			assert.Equal(t, tt.open, detail["isOpen"])
			assert.Equal(t, tt.favorite, detail["isFavorite"])
		})
	}
}

func TestRestaurantHandler_GetRestaurant_NotFound(t *testing.T) {
	mux := newRestaurantMux(t, newFixture(t))

	w := get(t, mux, "/api/restaurants/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.NotEmpty(t, body["error"])
}

func TestRestaurantHandler_Facets(t *testing.T) {
	mux := newRestaurantMux(t, newFixture(t))

	var cuisines map[string][]string
	require.NoError(t, json.NewDecoder(get(t, mux, "/api/cuisines").Body).Decode(&cuisines))
	assert.Equal(t, []string{"Indian", "Japanese", "Malay", "Western"}, cuisines["cuisines"])

	var cities map[string][]string
	require.NoError(t, json.NewDecoder(get(t, mux, "/api/cities").Body).Decode(&cities))
	assert.Equal(t, []string{"Kuala Lumpur", "Petaling Jaya"}, cities["cities"])

	var districts map[string][]string
	require.NoError(t, json.NewDecoder(get(t, mux, "/api/districts").Body).Decode(&districts))
	assert.Equal(t, []string{"Bukit Bintang", "Damansara", "Mont Kiara"}, districts["districts"])

	w := get(t, mux, "/api/cuisines/Malay/restaurants")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"nasi-kandar-corner"}, decodeList(t, w).ids())
}
