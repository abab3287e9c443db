package main

import (
	"context"

	"github.com/summitfloors/pricebook/internal/catalog"
)

// initStore opens the configured catalog store. Callers own Close.
func initStore(ctx context.Context, mode string) (catalog.Store, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}
	return catalog.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
}
