package repositories

import (
	"context"

	"github.com/reservenow/backend/internal/domain/entities"
)

// CatalogSource loads the restaurant catalog. It is read once at startup.
type CatalogSource interface {
	LoadAll(ctx context.Context) ([]*entities.Restaurant, error)
}

// CatalogWriter replaces the stored catalog, used by the seeding command
type CatalogWriter interface {
	Upsert(ctx context.Context, restaurants []*entities.Restaurant) (int, error)
}
