package handlers_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reservenow/backend/internal/adapters/storage"
	"github.com/reservenow/backend/internal/application/services"
	"github.com/reservenow/backend/internal/domain/entities"
	"github.com/reservenow/backend/internal/infrastructure/notifications"
	"github.com/reservenow/backend/pkg/utils"
)

var kualaLumpur = time.FixedZone("MYT", 8*60*60)

// Thursday 2026-10-15 19:00 in Kuala Lumpur
var fixedNow = time.Date(2026, time.October, 15, 11, 0, 0, 0, time.UTC)

type staticSource []*entities.Restaurant

func (s staticSource) LoadAll(ctx context.Context) ([]*entities.Restaurant, error) {
	return s, nil
}

func fixtureRestaurants() []*entities.Restaurant {
	return []*entities.Restaurant{
		{
			ID:               "nasi-kandar-corner",
			Name:             "Nasi Kandar Corner",
			CuisineTypes:     []string{"Malay", "Indian"},
			City:             "Kuala Lumpur",
			LocationDistrict: "Bukit Bintang",
			PriceRange:       entities.PriceRangeBudget,
			OperatingHours:   entities.OperatingHours{"thursday": entities.ScheduleAlwaysOpen},
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
			OperatingHours:   entities.OperatingHours{"thursday": "12:00-14:30, 18:00-22:30"},
			ReservationCount: 250,
			WhatsAppNumber:   "+60 12-987 6543",
		},
		{
			ID:               "ember-grill",
			Name:             "Ember Grill",
			CuisineTypes:     []string{"Western"},
			City:             "Petaling Jaya",
			LocationDistrict: "Damansara",
			PriceRange:       entities.PriceRangeFineDining,
			OperatingHours:   entities.OperatingHours{"thursday": entities.ScheduleClosed},
			ReservationCount: 80,
			WhatsAppNumber:   "0135554444",
		},
	}
}

type fixture struct {
	catalog      *services.CatalogService
	favorites    *services.FavoritesService
	reservations *services.ReservationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	catalog, err := services.NewCatalogService(ctx, staticSource(fixtureRestaurants()))
	require.NoError(t, err)

	clock := func() time.Time { return fixedNow }
	validator := services.NewReservationValidator(utils.MalaysianMobile, kualaLumpur, 90).WithClock(clock)

	return &fixture{
		catalog:   catalog,
		favorites: services.NewFavoritesService(ctx, storage.NewMemorySlot()),
		reservations: services.NewReservationService(
			catalog,
			validator,
			services.NewMessageBuilder(""),
			notifications.NewWhatsAppLinkBuilder("", utils.MalaysianMobile),
			services.WithClock(clock),
		),
	}
}
