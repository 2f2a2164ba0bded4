package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/reservenow/backend/internal/domain/entities"
	"github.com/reservenow/backend/internal/domain/repositories"
	"github.com/reservenow/backend/internal/infrastructure/observability"
	apperrors "github.com/reservenow/backend/pkg/errors"
)

// DefaultFeaturedLimit is the number of restaurants on the home page
const DefaultFeaturedLimit = 6

// Search returns the restaurants whose name, any cuisine tag or district
// contains query, ignoring case. A blank query returns the catalog as is.
func Search(query string, catalog []*entities.Restaurant) []*entities.Restaurant {
	if strings.TrimSpace(query) == "" {
		return slices.Clone(catalog)
	}

	needle := strings.ToLower(query)
	results := make([]*entities.Restaurant, 0, len(catalog))
	for _, r := range catalog {
		if matchesQuery(r, needle) {
			results = append(results, r)
		}
	}
	return results
}

func matchesQuery(r *entities.Restaurant, needle string) bool {
	if strings.Contains(strings.ToLower(r.Name), needle) {
		return true
	}
	for _, cuisine := range r.CuisineTypes {
		if strings.Contains(strings.ToLower(cuisine), needle) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(r.LocationDistrict), needle)
}

// Filter applies cuisine, location and price constraints in that order, then
// keeps only restaurants that also match the search query. The result
// follows the filtered order.
func Filter(criteria entities.Criteria, catalog []*entities.Restaurant) []*entities.Restaurant {
	results := slices.Clone(catalog)
	if criteria.IsEmpty() {
		return results
	}

	if len(criteria.Cuisines) > 0 {
		results = slices.DeleteFunc(results, func(r *entities.Restaurant) bool {
			return !slices.ContainsFunc(r.CuisineTypes, func(c string) bool {
				return slices.Contains(criteria.Cuisines, c)
			})
		})
	}

	if len(criteria.Locations) > 0 {
		results = slices.DeleteFunc(results, func(r *entities.Restaurant) bool {
			return !slices.Contains(criteria.Locations, r.City) && !slices.Contains(criteria.Locations, r.LocationDistrict)
		})
	}

	if len(criteria.PriceRanges) > 0 {
		results = slices.DeleteFunc(results, func(r *entities.Restaurant) bool {
			return !slices.Contains(criteria.PriceRanges, r.PriceRange)
		})
	}

	if criteria.SearchQuery != "" {
		matched := make(map[string]struct{})
		for _, r := range Search(criteria.SearchQuery, catalog) {
			matched[r.ID] = struct{}{}
		}
		results = slices.DeleteFunc(results, func(r *entities.Restaurant) bool {
			_, ok := matched[r.ID]
			return !ok
		})
	}

	return results
}

// Sort returns a sorted copy of restaurants. Every key is stable.
func Sort(restaurants []*entities.Restaurant, key entities.SortKey) []*entities.Restaurant {
	sorted := slices.Clone(restaurants)

	switch key {
	case entities.SortByName:
		// collators keep internal buffers, so each sort gets its own
		c := collate.New(language.English)
		slices.SortStableFunc(sorted, func(a, b *entities.Restaurant) int {
			return c.CompareString(a.Name, b.Name)
		})
	case entities.SortByPopular:
		slices.SortStableFunc(sorted, func(a, b *entities.Restaurant) int {
			return b.ReservationCount - a.ReservationCount
		})
	case entities.SortByRecent:
		slices.Reverse(sorted)
	}

	return sorted
}

// DistinctCuisines lists every cuisine tag once, sorted
func DistinctCuisines(catalog []*entities.Restaurant) []string {
	var tags []string
	for _, r := range catalog {
		tags = append(tags, r.CuisineTypes...)
	}
	return distinctSorted(tags)
}

// DistinctDistricts lists every district once, sorted
func DistinctDistricts(catalog []*entities.Restaurant) []string {
	districts := make([]string, 0, len(catalog))
	for _, r := range catalog {
		districts = append(districts, r.LocationDistrict)
	}
	return distinctSorted(districts)
}

// DistinctCities lists every city once, sorted
func DistinctCities(catalog []*entities.Restaurant) []string {
	cities := make([]string, 0, len(catalog))
	for _, r := range catalog {
		cities = append(cities, r.City)
	}
	return distinctSorted(cities)
}

func distinctSorted(values []string) []string {
	out := slices.Clone(values)
	slices.Sort(out)
	out = slices.Compact(out)
	if out == nil {
		out = []string{}
	}
	return out
}

// Featured returns the n most reserved restaurants
func Featured(catalog []*entities.Restaurant, n int) []*entities.Restaurant {
	if n < 0 {
		n = 0
	}
	popular := Sort(catalog, entities.SortByPopular)
	if n < len(popular) {
		popular = popular[:n]
	}
	return popular
}

// CatalogService serves queries over the catalog loaded at startup. The
// loaded slice is never modified, so the service is safe for concurrent use.
type CatalogService struct {
	restaurants []*entities.Restaurant
	byID        map[string]*entities.Restaurant
}

// NewCatalogService loads the catalog from source
func NewCatalogService(ctx context.Context, source repositories.CatalogSource) (*CatalogService, error) {
	ctx, span := observability.StartSpan(ctx, "CatalogService.Load")
	defer span.End()

	restaurants, err := source.LoadAll(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	byID := make(map[string]*entities.Restaurant, len(restaurants))
	for _, r := range restaurants {
		if _, dup := byID[r.ID]; dup {
			return nil, fmt.Errorf("duplicate restaurant id %q in catalog", r.ID)
		}
		byID[r.ID] = r
	}

	observability.LoggerFromContext(ctx).Info().
		Int("restaurants", len(restaurants)).
		Msg("catalog loaded")

	return &CatalogService{
		restaurants: slices.Clip(restaurants),
		byID:        byID,
	}, nil
}

// All returns the catalog in source order
func (s *CatalogService) All() []*entities.Restaurant {
	return slices.Clone(s.restaurants)
}

// GetByID returns a NOT_FOUND error for unknown ids
func (s *CatalogService) GetByID(id string) (*entities.Restaurant, error) {
	r, ok := s.byID[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("restaurant %q not found", id))
	}
	return r, nil
}

// Contains reports whether id is in the catalog
func (s *CatalogService) Contains(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// ByCuisine returns restaurants tagged with exactly cuisine
func (s *CatalogService) ByCuisine(cuisine string) []*entities.Restaurant {
	results := make([]*entities.Restaurant, 0)
	for _, r := range s.restaurants {
		if r.HasCuisine(cuisine) {
			results = append(results, r)
		}
	}
	return results
}

// Query filters then sorts the catalog
func (s *CatalogService) Query(criteria entities.Criteria, key entities.SortKey) []*entities.Restaurant {
	return Sort(Filter(criteria, s.restaurants), key)
}

// Featured returns the n most reserved restaurants
func (s *CatalogService) Featured(n int) []*entities.Restaurant {
	return Featured(s.restaurants, n)
}

// Cuisines lists the catalog's cuisine tags
func (s *CatalogService) Cuisines() []string {
	return DistinctCuisines(s.restaurants)
}

// Cities lists the catalog's cities
func (s *CatalogService) Cities() []string {
	return DistinctCities(s.restaurants)
}

// Districts lists the catalog's districts
func (s *CatalogService) Districts() []string {
	return DistinctDistricts(s.restaurants)
}

// Pick returns the restaurants for ids that exist, in catalog order
func (s *CatalogService) Pick(ids map[string]struct{}) []*entities.Restaurant {
	results := make([]*entities.Restaurant, 0, len(ids))
	for _, r := range s.restaurants {
		if _, ok := ids[r.ID]; ok {
			results = append(results, r)
		}
	}
	return results
}
