// Package catalog persists the product/variant catalog and the saved
// mapping profiles, behind a Store interface with Postgres and SQLite
// backends.
package catalog

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/summitfloors/pricebook/internal/model"
)

// Sentinel errors the API layer maps to response codes.
var (
	ErrProfileNotFound      = eris.New("catalog: profile not found")
	ErrManufacturerNotFound = eris.New("catalog: manufacturer not found")
)

// Store defines persistence for the import pipeline.
//
// Snapshot is the read side: preview runs entirely against it and never
// mutates the catalog. Apply is the write side: the whole plan commits in a
// single transaction or not at all.
type Store interface {
	// Mapping profiles
	ListProfiles(ctx context.Context) ([]model.MappingProfile, error)
	GetProfile(ctx context.Context, name string) (*model.MappingProfile, error)
	SaveProfile(ctx context.Context, name string, rules model.MappingRules) (*model.MappingProfile, error)

	// Vendor directory
	ListManufacturers(ctx context.Context) ([]model.Manufacturer, error)
	GetManufacturer(ctx context.Context, id int64) (*model.Manufacturer, error)
	AddManufacturer(ctx context.Context, name, defaultProductType string) (*model.Manufacturer, error)

	// Import pipeline
	Snapshot(ctx context.Context) (*Snapshot, error)
	Apply(ctx context.Context, plan *Plan) (model.ExecuteSummary, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "postgres":
		return NewPostgres(ctx, dsn)
	case "sqlite":
		return NewSQLite(dsn)
	default:
		return nil, eris.Errorf("catalog: unknown store driver %q (valid: postgres, sqlite)", driver)
	}
}
