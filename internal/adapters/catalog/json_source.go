package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/reservenow/backend/internal/domain/entities"
	"github.com/reservenow/backend/internal/domain/repositories"
)

//go:embed data/restaurants.json
var bundled []byte

// Bundled returns a copy of the catalog shipped with the binary
func Bundled() []byte {
	return bytes.Clone(bundled)
}

// JSONSource reads the catalog from a JSON array of restaurant records
type JSONSource struct {
	path string
}

// NewJSONSource creates a catalog source. An empty path reads the bundled catalog.
func NewJSONSource(path string) repositories.CatalogSource {
	return &JSONSource{path: path}
}

// LoadAll decodes every record and checks the fields the query engine relies on
func (s *JSONSource) LoadAll(ctx context.Context) ([]*entities.Restaurant, error) {
	data := bundled
	if s.path != "" {
		var err error
		if data, err = os.ReadFile(s.path); err != nil {
			return nil, fmt.Errorf("failed to read catalog %s: %w", s.path, err)
		}
	}
	return Decode(data)
}

// Decode parses a catalog document
func Decode(data []byte) ([]*entities.Restaurant, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var restaurants []*entities.Restaurant
	if err := dec.Decode(&restaurants); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	for i, r := range restaurants {
		if r == nil || r.ID == "" {
			return nil, fmt.Errorf("catalog record %d has no id", i)
		}
		if r.Name == "" {
			return nil, fmt.Errorf("catalog record %q has no name", r.ID)
		}
		if _, err := entities.ParsePriceRange(string(r.PriceRange)); err != nil {
			return nil, fmt.Errorf("catalog record %q: %w", r.ID, err)
		}
		if r.CuisineTypes == nil {
			r.CuisineTypes = []string{}
		}
	}
	return restaurants, nil
}
