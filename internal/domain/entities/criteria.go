package entities

import (
	"fmt"
	"strings"
)

// Criteria narrows the catalog. An empty field imposes no constraint;
// fields combine with AND, values within a field with OR.
type Criteria struct {
	Cuisines    []string     `json:"cuisines"`
	Locations   []string     `json:"locations"`
	PriceRanges []PriceRange `json:"priceRange"`
	SearchQuery string       `json:"searchQuery"`
}

// IsEmpty reports whether the criteria constrain nothing
func (c Criteria) IsEmpty() bool {
	return len(c.Cuisines) == 0 && len(c.Locations) == 0 && len(c.PriceRanges) == 0 && c.SearchQuery == ""
}

// SortKey selects a listing order
type SortKey int

const (
	// SortByName orders by display name, locale-aware ascending
	SortByName SortKey = iota
	// SortByPopular orders by reservation count descending, ties kept stable
	SortByPopular
	// SortByRecent reverses catalog order. The catalog carries no timestamp,
	// so this assumes newer records were appended last.
	SortByRecent
)

var sortKeyNames = [...]string{
	SortByName:    "name",
	SortByPopular: "popular",
	SortByRecent:  "recent",
}

func (k SortKey) String() string {
	if int(k) < len(sortKeyNames) {
		return sortKeyNames[k]
	}
	return fmt.Sprintf("SortKey(%d)", int(k))
}

// ParseSortKey parses "name", "popular" or "recent". An empty string is
// SortByName.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "name":
		return SortByName, nil
	case "popular":
		return SortByPopular, nil
	case "recent":
		return SortByRecent, nil
	default:
		return SortByName, fmt.Errorf("unknown sort key %q", s)
	}
}
