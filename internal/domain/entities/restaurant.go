package entities

import (
	"fmt"
	"strings"
)

// PriceRange is a restaurant's price tier
type PriceRange string

const (
	PriceRangeBudget     PriceRange = "budget"
	PriceRangeMidRange   PriceRange = "mid-range"
	PriceRangeFineDining PriceRange = "fine-dining"
)

// PriceRanges lists the tiers in ascending order
var PriceRanges = []PriceRange{PriceRangeBudget, PriceRangeMidRange, PriceRangeFineDining}

// ParsePriceRange parses a tier name
func ParsePriceRange(s string) (PriceRange, error) {
	p := PriceRange(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range PriceRanges {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown price range %q", s)
}

// Schedule strings with special meaning
const (
	ScheduleClosed     = "Closed"
	ScheduleAlwaysOpen = "00:00-23:59"
)

// Weekdays are the operating-hours keys, indexed by time.Weekday
var Weekdays = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// OperatingHours maps a lowercase weekday name to "Closed", "00:00-23:59"
// or one or more comma-separated "HH:MM-HH:MM" ranges.
type OperatingHours map[string]string

// Restaurant is a catalog record. Records are never mutated after load.
type Restaurant struct {
	ID               string         `json:"id" db:"id"`
	Name             string         `json:"name" db:"name"`
	CuisineTypes     []string       `json:"cuisineTypes" db:"cuisine_types"`
	City             string         `json:"city" db:"city"`
	LocationDistrict string         `json:"locationDistrict" db:"location_district"`
	PriceRange       PriceRange     `json:"priceRange" db:"price_range"`
	OperatingHours   OperatingHours `json:"operatingHours" db:"operating_hours"`
	ReservationCount int            `json:"reservationCount" db:"reservation_count"`
	WhatsAppNumber   string         `json:"whatsappNumber" db:"whatsapp_number"`
	Address          string         `json:"address" db:"address"`
	Description      string         `json:"description" db:"description"`
	HeroImage        string         `json:"heroImage" db:"hero_image"`
}

// HasCuisine reports whether tag is one of the restaurant's cuisines
func (r *Restaurant) HasCuisine(tag string) bool {
	for _, c := range r.CuisineTypes {
		if c == tag {
			return true
		}
	}
	return false
}

// RestaurantDetail is a restaurant together with its live open state
type RestaurantDetail struct {
	*Restaurant
	IsOpen     bool `json:"isOpen"`
	IsFavorite bool `json:"isFavorite"`
}
