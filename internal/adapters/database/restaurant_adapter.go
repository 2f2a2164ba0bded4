package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/reservenow/backend/internal/domain/entities"
	"github.com/reservenow/backend/internal/infrastructure/clients/postgres"
	"github.com/reservenow/backend/internal/infrastructure/observability"
	apperrors "github.com/reservenow/backend/pkg/errors"
)

const restaurantsTable = "restaurants"

const restaurantsSchema = `
CREATE TABLE IF NOT EXISTS restaurants (
	id                TEXT PRIMARY KEY,
	position          INTEGER NOT NULL DEFAULT 0,
	name              TEXT NOT NULL,
	cuisine_types     TEXT[] NOT NULL DEFAULT '{}',
	city              TEXT NOT NULL DEFAULT '',
	location_district TEXT NOT NULL DEFAULT '',
	price_range       TEXT NOT NULL,
	operating_hours   JSONB NOT NULL DEFAULT '{}',
	reservation_count INTEGER NOT NULL DEFAULT 0,
	whatsapp_number   TEXT NOT NULL DEFAULT '',
	address           TEXT NOT NULL DEFAULT '',
	description       TEXT NOT NULL DEFAULT '',
	hero_image        TEXT NOT NULL DEFAULT '',
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

var restaurantColumns = []interface{}{
	"id", "name", "cuisine_types", "city", "location_district", "price_range",
	"operating_hours", "reservation_count", "whatsapp_number", "address",
	"description", "hero_image",
}

// restaurantRow is the column layout of the restaurants table
type restaurantRow struct {
	ID               string         `db:"id"`
	Name             string         `db:"name"`
	CuisineTypes     pq.StringArray `db:"cuisine_types"`
	City             string         `db:"city"`
	LocationDistrict string         `db:"location_district"`
	PriceRange       string         `db:"price_range"`
	OperatingHours   []byte         `db:"operating_hours"`
	ReservationCount int            `db:"reservation_count"`
	WhatsAppNumber   string         `db:"whatsapp_number"`
	Address          string         `db:"address"`
	Description      string         `db:"description"`
	HeroImage        string         `db:"hero_image"`
}

func (r *restaurantRow) toEntity() (*entities.Restaurant, error) {
	price, err := entities.ParsePriceRange(r.PriceRange)
	if err != nil {
		return nil, err
	}

	hours := entities.OperatingHours{}
	if len(r.OperatingHours) > 0 {
		if err := json.Unmarshal(r.OperatingHours, &hours); err != nil {
			return nil, fmt.Errorf("invalid operating hours: %w", err)
		}
	}

	cuisines := []string(r.CuisineTypes)
	if cuisines == nil {
		cuisines = []string{}
	}

	return &entities.Restaurant{
		ID:               r.ID,
		Name:             r.Name,
		CuisineTypes:     cuisines,
		City:             r.City,
		LocationDistrict: r.LocationDistrict,
		PriceRange:       price,
		OperatingHours:   hours,
		ReservationCount: r.ReservationCount,
		WhatsAppNumber:   r.WhatsAppNumber,
		Address:          r.Address,
		Description:      r.Description,
		HeroImage:        r.HeroImage,
	}, nil
}

// RestaurantAdapter reads and seeds the catalog in PostgreSQL
type RestaurantAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	sqlx    *sqlx.DB
	metrics *observability.Metrics
}

// NewRestaurantAdapter creates a new restaurant adapter. metrics may be nil.
func NewRestaurantAdapter(client *postgres.Client, metrics *observability.Metrics) *RestaurantAdapter {
	return &RestaurantAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		sqlx:    sqlx.NewDb(client.DB(), "postgres"),
		metrics: metrics,
	}
}

// EnsureSchema creates the restaurants table when it does not exist
func (a *RestaurantAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := a.client.DB().ExecContext(ctx, restaurantsSchema); err != nil {
		return apperrors.NewInternalError("failed to create restaurants table", err)
	}
	return nil
}

// LoadAll returns every restaurant in insertion order
func (a *RestaurantAdapter) LoadAll(ctx context.Context) ([]*entities.Restaurant, error) {
	start := time.Now()
	defer a.observe(ctx, "select_restaurants", start)

	query, args, err := a.db.From(restaurantsTable).
		Select(restaurantColumns...).
		Order(goqu.I("position").Asc(), goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var rows []restaurantRow
	if err := a.sqlx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to load restaurants", err)
	}

	restaurants := make([]*entities.Restaurant, 0, len(rows))
	for i := range rows {
		r, err := rows[i].toEntity()
		if err != nil {
			return nil, apperrors.NewInternalError(fmt.Sprintf("invalid restaurant %s", rows[i].ID), err)
		}
		restaurants = append(restaurants, r)
	}
	return restaurants, nil
}

// Upsert writes restaurants in one transaction, replacing rows with the same id.
// Slice order is stored as position so LoadAll keeps the catalog order.
func (a *RestaurantAdapter) Upsert(ctx context.Context, restaurants []*entities.Restaurant) (int, error) {
	if len(restaurants) == 0 {
		return 0, nil
	}

	start := time.Now()
	defer a.observe(ctx, "upsert_restaurants", start)

	records := make([]interface{}, 0, len(restaurants))
	for i, r := range restaurants {
		hours, err := json.Marshal(r.OperatingHours)
		if err != nil {
			return 0, apperrors.NewInternalError(fmt.Sprintf("failed to encode hours for %s", r.ID), err)
		}
		records = append(records, goqu.Record{
			"id":                r.ID,
			"position":          i,
			"name":              r.Name,
			"cuisine_types":     pq.Array(r.CuisineTypes),
			"city":              r.City,
			"location_district": r.LocationDistrict,
			"price_range":       string(r.PriceRange),
			"operating_hours":   string(hours),
			"reservation_count": r.ReservationCount,
			"whatsapp_number":   r.WhatsAppNumber,
			"address":           r.Address,
			"description":       r.Description,
			"hero_image":        r.HeroImage,
		})
	}

	query, args, err := a.db.Insert(restaurantsTable).
		Prepared(true).
		Rows(records...).
		OnConflict(goqu.DoUpdate("id", goqu.Record{
			"position":          goqu.L("EXCLUDED.position"),
			"name":              goqu.L("EXCLUDED.name"),
			"cuisine_types":     goqu.L("EXCLUDED.cuisine_types"),
			"city":              goqu.L("EXCLUDED.city"),
			"location_district": goqu.L("EXCLUDED.location_district"),
			"price_range":       goqu.L("EXCLUDED.price_range"),
			"operating_hours":   goqu.L("EXCLUDED.operating_hours"),
			"reservation_count": goqu.L("EXCLUDED.reservation_count"),
			"whatsapp_number":   goqu.L("EXCLUDED.whatsapp_number"),
			"address":           goqu.L("EXCLUDED.address"),
			"description":       goqu.L("EXCLUDED.description"),
			"hero_image":        goqu.L("EXCLUDED.hero_image"),
			"updated_at":        goqu.L("NOW()"),
		})).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build upsert query", err)
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to upsert restaurants", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, apperrors.NewInternalError("failed to commit restaurants", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return len(restaurants), nil
	}
	return int(affected), nil
}

func (a *RestaurantAdapter) observe(ctx context.Context, operation string, start time.Time) {
	if a.metrics != nil {
		observability.RecordDBMetric(ctx, a.metrics, operation, time.Since(start))
	}
}
