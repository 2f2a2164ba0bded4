package services_test

import (
	"context"

	"github.com/reservenow/backend/internal/domain/entities"
)

type stubCatalogSource struct {
	restaurants []*entities.Restaurant
	err         error
}

func (s *stubCatalogSource) LoadAll(ctx context.Context) ([]*entities.Restaurant, error) {
	return s.restaurants, s.err
}

func fixtureCatalog() []*entities.Restaurant {
	return []*entities.Restaurant{
		{
			ID:               "nasi-kandar-corner",
			Name:             "Nasi Kandar Corner",
			CuisineTypes:     []string{"Malay", "Indian"},
			City:             "Kuala Lumpur",
			LocationDistrict: "Bukit Bintang",
			PriceRange:       entities.PriceRangeBudget,
			ReservationCount: 120,
			WhatsAppNumber:   "0123456789",
		},
		{
			ID:               "sushi-zen",
			Name:             "Sushi Zen",
			CuisineTypes:     []string{"Japanese"},
			City:             "Kuala Lumpur",
			LocationDistrict: "Mont Kiara",
			PriceRange:       entities.PriceRangeFineDining,
			ReservationCount: 250,
			WhatsAppNumber:   "+60 12-987 6543",
		},
		{
			ID:               "dim-sum-house",
			Name:             "dim sum house",
			CuisineTypes:     []string{"Chinese"},
			City:             "Petaling Jaya",
			LocationDistrict: "SS2",
			PriceRange:       entities.PriceRangeMidRange,
			ReservationCount: 120,
			WhatsAppNumber:   "0167778888",
		},
		{
			ID:               "banana-leaf-bangsar",
			Name:             "Banana Leaf Bangsar",
			CuisineTypes:     []string{"Indian"},
			City:             "Kuala Lumpur",
			LocationDistrict: "Bangsar",
			PriceRange:       entities.PriceRangeBudget,
			ReservationCount: 80,
			WhatsAppNumber:   "0191112222",
		},
		{
			ID:               "ember-grill",
			Name:             "Ember Grill",
			CuisineTypes:     []string{"Western", "Steakhouse"},
			City:             "Petaling Jaya",
			LocationDistrict: "Damansara",
			PriceRange:       entities.PriceRangeFineDining,
			ReservationCount: 120,
			WhatsAppNumber:   "0135554444",
		},
	}
}

func ids(restaurants []*entities.Restaurant) []string {
	out := make([]string, len(restaurants))
	for i, r := range restaurants {
		out[i] = r.ID
	}
	return out
}
